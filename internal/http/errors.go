package http

import (
	"errors"
	"net/http"

	"github.com/jmehdipour/content-gateway/internal/errs"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	return c.JSON(errs.HTTPStatus(err), errorResponse{Error: true, Message: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: true, Message: msg})
}

// jsonErrorHandler keeps router-level failures (404, 405, recovered panics)
// in the same {"error": true, "message": ...} shape as handler errors.
func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if jerr := c.JSON(code, errorResponse{Error: true, Message: msg}); jerr != nil {
		c.Logger().Errorf("write error response: %v", jerr)
	}
}
