package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/model"
)

// JokeFilters are the content filters applied to every primary request.
type JokeFilters struct {
	BlacklistFlags []string
	IDRange        string
	Contains       string
}

// JokeAPI is the keyed primary joke source.
type JokeAPI struct {
	c       client
	filters JokeFilters
}

func NewJokeAPI(ep config.EndpointConfig, filters JokeFilters, hc *http.Client) *JokeAPI {
	return &JokeAPI{c: newClient("joke_api", ep, hc), filters: filters}
}

// Fetch returns the raw upstream payload for category, unparsed.
func (a *JokeAPI) Fetch(ctx context.Context, category string) ([]byte, error) {
	if category == "" {
		category = "Any"
	}

	q := url.Values{}
	if len(a.filters.BlacklistFlags) > 0 {
		q.Set("blacklistFlags", strings.Join(a.filters.BlacklistFlags, ","))
	}
	if a.filters.IDRange != "" {
		q.Set("idRange", a.filters.IDRange)
	}
	if a.filters.Contains != "" {
		q.Set("contains", a.filters.Contains)
	}

	u := a.c.url(a.c.path + "/" + url.PathEscape(category))
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	return a.c.do(ctx, http.MethodGet, u, "", nil)
}

// Categories lists the categories the primary source accepts.
func (a *JokeAPI) Categories(ctx context.Context) ([]string, error) {
	b, err := a.c.do(ctx, http.MethodGet, a.c.url("/categories"), "", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Error      bool     `json:"error"`
		Message    string   `json:"message"`
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("joke_api categories: %w: %v", errs.ErrMalformedResponse, err)
	}
	if out.Error {
		return nil, fmt.Errorf("joke_api categories: %w: %s", errs.ErrUpstreamError, out.Message)
	}
	return out.Categories, nil
}

// FallbackJokes is the secondary source. It has no category support and
// always draws from the unscoped pool.
type FallbackJokes struct {
	c client
}

func NewFallbackJokes(ep config.EndpointConfig, hc *http.Client) *FallbackJokes {
	return &FallbackJokes{c: newClient("fallback_jokes", ep, hc)}
}

// fallbackJoke accepts both the two-part/single JokeAPI shape and the
// setup/punchline shape.
type fallbackJoke struct {
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	Joke      string `json:"joke"`
	Setup     string `json:"setup"`
	Delivery  string `json:"delivery"`
	Punchline string `json:"punchline"`
}

// Random returns one joke from the unscoped pool.
func (f *FallbackJokes) Random(ctx context.Context) (model.JokeRecord, error) {
	b, err := f.c.do(ctx, http.MethodGet, f.c.url(f.c.path), "", nil)
	if err != nil {
		return model.JokeRecord{}, err
	}

	var j fallbackJoke
	if err := json.Unmarshal(b, &j); err != nil {
		return model.JokeRecord{}, fmt.Errorf("fallback_jokes: %w: %v", errs.ErrMalformedResponse, err)
	}
	if j.Error {
		return model.JokeRecord{}, fmt.Errorf("fallback_jokes: %w: %s", errs.ErrUpstreamError, j.Message)
	}

	rec := model.JokeRecord{
		Category: j.Category,
		Setup:    j.Setup,
		Delivery: j.Delivery,
		Source:   model.JokeSourceFallback,
	}
	if rec.Setup == "" {
		rec.Setup = j.Joke
	}
	if rec.Delivery == "" {
		rec.Delivery = j.Punchline
	}
	if rec.Category == "" {
		rec.Category = "Any"
	}
	if rec.Setup == "" {
		return model.JokeRecord{}, fmt.Errorf("fallback_jokes: %w: no joke text", errs.ErrMalformedResponse)
	}

	return rec, nil
}
