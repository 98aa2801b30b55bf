package model

import "time"

type NewsHeadline struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
}

// NewsRow is the ClickHouse entity persisted in the news table.
type NewsRow struct {
	Category    string    `db:"category"     json:"category"`
	Title       string    `db:"title"        json:"title"`
	URL         string    `db:"url"          json:"url"`
	PublishedAt string    `db:"published_at" json:"published_at"`
	Source      string    `db:"source"       json:"source"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}
