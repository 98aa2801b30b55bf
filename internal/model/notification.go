package model

import "time"

// NotificationRequest is the /send-email body and the payload published to
// the notify topic by the gateway.
type NotificationRequest struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"` // joke | news | webpage
	Setup string `json:"setup"`
	To    string `json:"to"`
}

type ServiceStatus struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checked_at"`
}
