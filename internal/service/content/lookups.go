package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmehdipour/content-gateway/internal/errs"
)

type EmailValidator interface {
	Validate(ctx context.Context, email string) (json.RawMessage, error)
}

type Paraphraser interface {
	Rewrite(ctx context.Context, text string) (json.RawMessage, error)
}

type Scraper interface {
	Scrape(ctx context.Context, target string) (json.RawMessage, error)
}

// Lookups are single-shot pass-throughs; only input presence is checked.
type Lookups struct {
	email   EmailValidator
	para    Paraphraser
	scraper Scraper
}

func NewLookups(email EmailValidator, para Paraphraser, scraper Scraper) *Lookups {
	return &Lookups{email: email, para: para, scraper: scraper}
}

func (l *Lookups) ValidateEmail(ctx context.Context, email string) (json.RawMessage, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", errs.ErrValidation)
	}
	return l.email.Validate(ctx, email)
}

func (l *Lookups) Paraphrase(ctx context.Context, text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required: %w", errs.ErrValidation)
	}
	return l.para.Rewrite(ctx, text)
}

func (l *Lookups) Scrape(ctx context.Context, target string) (json.RawMessage, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("url is required: %w", errs.ErrValidation)
	}
	return l.scraper.Scrape(ctx, target)
}
