// Package upstream holds thin HTTP clients for the third-party content APIs.
// Clients never interpret payloads beyond the fields the services read; they
// classify transport problems as errs.ErrUpstreamUnavailable.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/jmehdipour/content-gateway/internal/metrics"
)

const maxBody = 4 << 20

// client is shared plumbing: base URL, RapidAPI-style key headers, a bounded
// timeout and outcome metrics.
type client struct {
	name      string
	baseURL   string
	path      string
	apiKey    string
	keyHeader string
	apiHost   string
	timeout   time.Duration
	http      *http.Client
}

func newClient(name string, ep config.EndpointConfig, hc *http.Client) client {
	if hc == nil {
		hc = &http.Client{Timeout: ep.Timeout()}
	}
	return client{
		name:      name,
		baseURL:   strings.TrimRight(ep.BaseURL, "/"),
		path:      ep.Path,
		apiKey:    ep.APIKey,
		keyHeader: "X-RapidAPI-Key",
		apiHost:   ep.APIHost,
		timeout:   ep.Timeout(),
		http:      hc,
	}
}

func (c client) url(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// do executes req and returns the body of a 2xx response.
func (c client) do(ctx context.Context, method, url, contentType string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}
	if c.apiHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}

	res, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues(c.name, "unavailable").Inc()
		return nil, fmt.Errorf("%s: %w: %v", c.name, errs.ErrUpstreamUnavailable, err)
	}

	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues(c.name, "unavailable").Inc()
		return nil, fmt.Errorf("%s: %w: read body: %v", c.name, errs.ErrUpstreamUnavailable, err)
	}

	if res.StatusCode/100 != 2 {
		metrics.UpstreamCalls.WithLabelValues(c.name, "error").Inc()
		return nil, fmt.Errorf("%s: %w: status=%d", c.name, errs.ErrUpstreamUnavailable, res.StatusCode)
	}

	metrics.UpstreamCalls.WithLabelValues(c.name, "ok").Inc()
	return b, nil
}
