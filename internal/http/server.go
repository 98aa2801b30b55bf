package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/http/middleware"
	"github.com/jmehdipour/content-gateway/internal/metrics"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options is the wiring shared by every service's server.
type Options struct {
	Service   string // content | notifier | gateway
	Label     string // human name used in /health and /status
	APIKeys   []string
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Log       *zap.Logger
}

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

// newServer builds the echo instance with the common routes and returns the
// group business routes are registered on.
func newServer(o Options) (*Server, *echo.Group) {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Label == "" {
		o.Label = o.Service
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.INFO)
	e.HTTPErrorHandler = jsonErrorHandler
	e.Use(echoMid.Recover(), echoMid.Logger(), echoMid.CORS())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": o.Label + " is healthy"})
	})
	e.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": o.Label + " is up and running"})
	})

	authMW := middleware.APIKeyMiddleware(o.APIKeys)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          o.Redis,
		RPS:            o.RateLimit.RPS,
		Burst:          o.RateLimit.Burst,
		KeyPrefix:      "rl:" + o.Service + ":",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	g := e.Group("", countRequests(o.Service), authMW, rlMW)
	return &Server{e: e, log: o.Log.Named(o.Service)}, g
}

func countRequests(service string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics.RequestsTotal.WithLabelValues(service).Inc()
			return next(c)
		}
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	s.log.Info("http listening", zap.String("addr", addr))
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
