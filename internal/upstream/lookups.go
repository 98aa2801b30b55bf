package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/errs"
)

// EmailCheck validates an address; the input goes on the query string.
type EmailCheck struct{ c client }

func NewEmailCheck(ep config.EndpointConfig, hc *http.Client) *EmailCheck {
	return &EmailCheck{c: newClient("email_check", ep, hc)}
}

func (e *EmailCheck) Validate(ctx context.Context, email string) (json.RawMessage, error) {
	u := e.c.url(e.c.path) + "?" + url.Values{"email": {email}}.Encode()
	b, err := e.c.do(ctx, http.MethodGet, u, "", nil)
	if err != nil {
		return nil, err
	}
	return asJSON(e.c.name, b)
}

// Paraphraser rewrites text; the input goes as a form body.
type Paraphraser struct{ c client }

func NewParaphraser(ep config.EndpointConfig, hc *http.Client) *Paraphraser {
	return &Paraphraser{c: newClient("paraphrase", ep, hc)}
}

func (p *Paraphraser) Rewrite(ctx context.Context, text string) (json.RawMessage, error) {
	form := url.Values{"text": {text}}.Encode()
	b, err := p.c.do(ctx, http.MethodPost, p.c.url(p.c.path), "application/x-www-form-urlencoded", strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	return asJSON(p.c.name, b)
}

// Scraper fetches and parses a web page; the input goes as a JSON body.
type Scraper struct{ c client }

func NewScraper(ep config.EndpointConfig, hc *http.Client) *Scraper {
	return &Scraper{c: newClient("scrape", ep, hc)}
}

func (s *Scraper) Scrape(ctx context.Context, target string) (json.RawMessage, error) {
	body, _ := json.Marshal(map[string]string{"url": target})
	b, err := s.c.do(ctx, http.MethodPost, s.c.url(s.c.path), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return asJSON(s.c.name, b)
}

func asJSON(name string, b []byte) (json.RawMessage, error) {
	if !json.Valid(b) {
		return nil, fmt.Errorf("%s: %w: body is not JSON", name, errs.ErrMalformedResponse)
	}
	return json.RawMessage(b), nil
}
