// Package errs holds the error kinds shared by the content, notifier and
// gateway services. Call sites wrap them with fmt.Errorf("...: %w", kind)
// and handlers classify with errors.Is.
package errs

import (
	"errors"
	"net/http"
)

var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamError       = errors.New("upstream error")
	ErrMalformedResponse   = errors.New("malformed upstream response")
	ErrValidation          = errors.New("validation error")
	ErrTransport           = errors.New("transport failure")
	ErrPersistence         = errors.New("persistence failure")
)

// HTTPStatus maps an error kind to the status code returned to callers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstreamUnavailable),
		errors.Is(err, ErrUpstreamError),
		errors.Is(err, ErrMalformedResponse),
		errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
