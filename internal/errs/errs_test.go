package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("missing to: %w", ErrValidation), http.StatusBadRequest},
		{"upstream down", fmt.Errorf("jokeapi: %w", ErrUpstreamUnavailable), http.StatusBadGateway},
		{"upstream flagged", fmt.Errorf("jokeapi: %w", ErrUpstreamError), http.StatusBadGateway},
		{"malformed", fmt.Errorf("news: %w", ErrMalformedResponse), http.StatusBadGateway},
		{"transport", fmt.Errorf("sendgrid: %w", ErrTransport), http.StatusBadGateway},
		{"persistence", fmt.Errorf("insert: %w", ErrPersistence), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
