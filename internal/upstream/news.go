package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/errs"
)

// NewsQuery is the fixed request body sent to the search API.
type NewsQuery struct {
	Query      string `json:"query"`
	Region     string `json:"region,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// NewsAPI is the upstream news search API.
type NewsAPI struct {
	c client
}

func NewNewsAPI(ep config.EndpointConfig, hc *http.Client) *NewsAPI {
	return &NewsAPI{c: newClient("news", ep, hc)}
}

// Search POSTs q to path and returns the entries listed under field, in
// upstream order. Entries are left untyped; a missing field yields an empty list.
func (n *NewsAPI) Search(ctx context.Context, path, field string, q NewsQuery) ([]map[string]any, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	b, err := n.c.do(ctx, http.MethodPost, n.c.url(path), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(b, &envelope); err != nil {
		return nil, fmt.Errorf("news: %w: %v", errs.ErrMalformedResponse, err)
	}

	raw, ok := envelope[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return []map[string]any{}, nil
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("news: %w: field %q: %v", errs.ErrMalformedResponse, field, err)
	}
	return entries, nil
}
