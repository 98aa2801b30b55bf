package model

import "time"

// EmailAttempt is the DB entity persisted in the contents table before each send.
type EmailAttempt struct {
	ID          string      `db:"id"           json:"id"` // ULID
	ContentType ContentType `db:"content_type" json:"content_type"`
	ToEmail     string      `db:"to_email"     json:"to_email"`
	Subject     string      `db:"subject"      json:"subject"`
	Body        string      `db:"content"      json:"body"`
	CreatedAt   time.Time   `db:"created_at"   json:"created_at"`
}

// Email is what a mail provider delivers.
type Email struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}
