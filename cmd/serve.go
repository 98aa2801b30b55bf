package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/db"
	httpSrv "github.com/jmehdipour/content-gateway/internal/http"
	"github.com/jmehdipour/content-gateway/internal/kafka"
	"github.com/jmehdipour/content-gateway/internal/logger"
	"github.com/jmehdipour/content-gateway/internal/mailer"
	"github.com/jmehdipour/content-gateway/internal/repository"
	"github.com/jmehdipour/content-gateway/internal/service/content"
	"github.com/jmehdipour/content-gateway/internal/service/gateway"
	"github.com/jmehdipour/content-gateway/internal/service/notify"
	"github.com/jmehdipour/content-gateway/internal/upstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP service (content | notifier | gateway)",
}

var serveContentCmd = &cobra.Command{
	Use:   "content",
	Short: "Serve jokes, news and lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.Named("content")

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		chDB, err := db.NewClickHouseConnection(cfg.ClickHouse)
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() { _ = chDB.Close() }()

		rds := optionalRedis(cfg.Redis, log)
		if rds != nil {
			defer func() { _ = rds.Close() }()
		}

		// one pooled transport; each client bounds its calls with its own timeout
		hc := &http.Client{}
		up := cfg.Upstream

		resolver := content.NewResolver(
			upstream.NewJokeAPI(up.JokeAPI, upstream.JokeFilters{
				BlacklistFlags: cfg.Jokes.BlacklistFlags,
				IDRange:        cfg.Jokes.IDRange,
				Contains:       cfg.Jokes.Contains,
			}, hc),
			upstream.NewFallbackJokes(up.FallbackJokes, hc),
			repository.NewJokesRepository(mysqlDB),
			log.Named("resolver"),
			content.WithDefaultCategory(cfg.Jokes.DefaultCategory),
			content.WithStrictPrimaryParse(cfg.Jokes.StrictPrimaryParse),
		)
		news := content.NewNews(
			upstream.NewNewsAPI(up.News, hc),
			repository.NewNewsRepository(chDB),
			content.NewsOptions{
				DefaultCategory: cfg.News.DefaultCategory,
				GeneralPath:     cfg.News.GeneralPath,
				CategoryPath:    cfg.News.CategoryPath,
				Region:          cfg.News.Region,
				MaxResults:      cfg.News.MaxResults,
			},
			log.Named("news"),
		)
		lookups := content.NewLookups(
			upstream.NewEmailCheck(up.EmailCheck, hc),
			upstream.NewParaphraser(up.Paraphrase, hc),
			upstream.NewScraper(up.Scrape, hc),
		)

		server := httpSrv.NewContentServer(serverOptions(cfg, "content", rds), resolver, news, lookups)
		return runServer(server, cfg.HTTP.ContentAddr, nil)
	},
}

var serveNotifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Serve the synchronous /send-email endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.Named("notifier")

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		rds := optionalRedis(cfg.Redis, log)
		if rds != nil {
			defer func() { _ = rds.Close() }()
		}

		m, err := mailer.FromConfig(cfg.Mail, log.Named("mailer"))
		if err != nil {
			return err
		}
		svc := notify.New(repository.NewEmailsRepository(mysqlDB), m, log)

		server := httpSrv.NewNotifierServer(serverOptions(cfg, "notifier", rds), svc)
		return runServer(server, cfg.HTTP.NotifierAddr, nil)
	},
}

var serveGatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Serve subscriber management and the periodic joke broadcast",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.Named("gateway")

		rds, err := db.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = rds.Close() }()

		producer := kafka.NewProducer(kafka.ConfigFrom(cfg.Kafka))
		defer func() { _ = producer.Close() }()

		hc := &http.Client{}
		contentSvc := upstream.NewServiceClient("content", cfg.Upstream.Content, hc)
		notifierSvc := upstream.NewServiceClient("notifier", cfg.Upstream.Notifier, hc)

		gw := gateway.New(
			repository.NewSubscribersRepository(rds, cfg.Gateway.SubscribersKey),
			contentSvc,
			producer,
			[]gateway.HealthChecker{contentSvc, notifierSvc},
			log,
		)

		server := httpSrv.NewGatewayServer(serverOptions(cfg, "gateway", rds), gw)
		return runServer(server, cfg.HTTP.GatewayAddr, func(ctx context.Context) {
			go gw.RunStatusPoller(ctx, cfg.Gateway.StatusInterval)
			go gw.RunBroadcast(ctx, cfg.Gateway.BroadcastInterval)
		})
	},
}

func init() {
	serveCmd.AddCommand(serveContentCmd)
	serveCmd.AddCommand(serveNotifierCmd)
	serveCmd.AddCommand(serveGatewayCmd)
}

func serverOptions(cfg config.Config, service string, rds *redis.Client) httpSrv.Options {
	return httpSrv.Options{
		Service:   service,
		APIKeys:   cfg.Auth.APIKeys,
		RateLimit: cfg.RateLimit,
		Redis:     rds,
		Log:       logger.Log,
	}
}

// optionalRedis connects for rate limiting; without it requests are not limited.
func optionalRedis(cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	rds, err := db.NewRedisClient(cfg)
	if err != nil {
		log.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		return nil
	}
	return rds
}

// runServer starts background jobs bound to the server's lifetime, serves
// until SIGINT/SIGTERM or a listener error, then shuts down gracefully.
func runServer(server *httpSrv.Server, addr string, background func(ctx context.Context)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if background != nil {
		background(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Log.Info("signal received, shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Log.Error("http server exited", zap.Error(err))
			runErr = err
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	return runErr
}
