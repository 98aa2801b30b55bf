package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/errs"
)

// ServiceClient talks to one of our own services (content or notifier).
// ep.APIKey is sent as X-API-Key, the header our services check.
type ServiceClient struct{ c client }

func NewServiceClient(name string, ep config.EndpointConfig, hc *http.Client) *ServiceClient {
	c := newClient(name, ep, hc)
	c.keyHeader = "X-API-Key"
	return &ServiceClient{c: c}
}

func (s *ServiceClient) Name() string { return s.c.name }

// FetchJoke calls GET /fetch-joke and returns the payload as served.
func (s *ServiceClient) FetchJoke(ctx context.Context) (json.RawMessage, error) {
	b, err := s.c.do(ctx, http.MethodGet, s.c.url("/fetch-joke"), "", nil)
	if err != nil {
		return nil, err
	}
	return asJSON(s.c.name, b)
}

// Health calls GET /health and returns its status string.
func (s *ServiceClient) Health(ctx context.Context) (string, error) {
	b, err := s.c.do(ctx, http.MethodGet, s.c.url("/health"), "", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("%s health: %w: %v", s.c.name, errs.ErrMalformedResponse, err)
	}
	return out.Status, nil
}
