package http

import (
	"context"
	"net/http"

	"github.com/jmehdipour/content-gateway/internal/model"
	echo "github.com/labstack/echo/v4"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req model.NotificationRequest) (model.EmailAttempt, error)
}

// NewNotifierServer exposes the synchronous /send-email path.
func NewNotifierServer(o Options, d Dispatcher) *Server {
	if o.Service == "" {
		o.Service = "notifier"
	}
	if o.Label == "" {
		o.Label = "Notifier service"
	}
	s, g := newServer(o)

	g.POST("/send-email", sendEmailHandler(d))

	return s
}

func sendEmailHandler(d Dispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req model.NotificationRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid json body")
		}
		// attempt ids are minted server side
		req.ID = ""

		attempt, err := d.Dispatch(c.Request().Context(), req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status": "Email sent successfully",
			"id":     attempt.ID,
		})
	}
}
