package model

import (
	"encoding/json"
	"time"
)

type JokeSource string

const (
	JokeSourcePrimary  JokeSource = "primary_api"
	JokeSourceFallback JokeSource = "fallback_library"
)

func (s JokeSource) String() string { return string(s) }

// JokeRecord is the normalized joke returned by the fallback tier.
type JokeRecord struct {
	Category string     `json:"category"`
	Setup    string     `json:"setup"`
	Delivery string     `json:"delivery,omitempty"`
	Source   JokeSource `json:"source"`
}

// Text is the single free-text form persisted for the joke: the setup, or the
// whole body for single-part jokes.
func (j JokeRecord) Text() string {
	return j.Setup
}

// JokeRow is the DB entity persisted in the jokes table.
type JokeRow struct {
	ID        int64     `db:"id" json:"id"`
	Category  string    `db:"category" json:"category"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// JokeResult is what a resolution hands back to the caller. Primary hits carry
// the upstream payload verbatim in Raw; fallback hits carry Record.
type JokeResult struct {
	Source JokeSource
	Raw    json.RawMessage
	Record *JokeRecord
}

// Payload returns the body to serve for this result.
func (r JokeResult) Payload() any {
	if r.Source == JokeSourcePrimary {
		return r.Raw
	}
	return r.Record
}
