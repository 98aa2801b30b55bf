package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmehdipour/content-gateway/internal/service/gateway"
	echo "github.com/labstack/echo/v4"
)

type GatewayService interface {
	Subscribe(ctx context.Context, email string) (string, bool, error)
	Unsubscribe(ctx context.Context, email string) (string, bool, error)
	Subscribers(ctx context.Context) ([]string, error)
	FetchAndSend(ctx context.Context) (gateway.FanOut, error)
	Statuses() []model.ServiceStatus
}

// NewGatewayServer exposes subscriber management and the joke fan-out.
func NewGatewayServer(o Options, gw GatewayService) *Server {
	if o.Service == "" {
		o.Service = "gateway"
	}
	if o.Label == "" {
		o.Label = "Gateway"
	}
	s, g := newServer(o)

	g.POST("/subscribe", subscribeHandler(gw))
	g.POST("/unsubscribe", unsubscribeHandler(gw))
	g.GET("/subscribers", listSubscribersHandler(gw))
	g.POST("/fetch-and-send-joke", fetchAndSendHandler(gw))
	g.GET("/service-statuses", serviceStatusesHandler(gw))

	return s
}

func subscribeHandler(gw GatewayService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in emailBody
		if err := c.Bind(&in); err != nil {
			return badRequest(c, "invalid json body")
		}
		if in.Email == "" {
			return badRequest(c, "Email is required for subscription")
		}
		if _, _, err := gw.Subscribe(c.Request().Context(), in.Email); err != nil {
			return writeError(c, err)
		}
		return subscribersResponse(c, gw)
	}
}

func unsubscribeHandler(gw GatewayService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in emailBody
		if err := c.Bind(&in); err != nil {
			return badRequest(c, "invalid json body")
		}
		if in.Email == "" {
			return badRequest(c, "Email is required to unsubscribe")
		}
		if _, _, err := gw.Unsubscribe(c.Request().Context(), in.Email); err != nil {
			return writeError(c, err)
		}
		return subscribersResponse(c, gw)
	}
}

func listSubscribersHandler(gw GatewayService) echo.HandlerFunc {
	return func(c echo.Context) error {
		return subscribersResponse(c, gw)
	}
}

func subscribersResponse(c echo.Context, gw GatewayService) error {
	subs, err := gw.Subscribers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"subscribed_users": subs})
}

func fetchAndSendHandler(gw GatewayService) echo.HandlerFunc {
	return func(c echo.Context) error {
		out, err := gw.FetchAndSend(c.Request().Context())
		if errors.Is(err, gateway.ErrNoSubscribers) {
			return c.JSON(http.StatusOK, map[string]any{"status": "No subscribers", "published": 0})
		}
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":    "Joke sent to subscribers",
			"joke":      out.Joke,
			"published": out.Published,
			"failed":    out.Failed,
		})
	}
}

func serviceStatusesHandler(gw GatewayService) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"services": gw.Statuses()})
	}
}
