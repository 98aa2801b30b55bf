package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmehdipour/content-gateway/internal/config"
	"github.com/jmehdipour/content-gateway/internal/db"
	"github.com/jmehdipour/content-gateway/internal/kafka"
	"github.com/jmehdipour/content-gateway/internal/logger"
	"github.com/jmehdipour/content-gateway/internal/mailer"
	"github.com/jmehdipour/content-gateway/internal/metrics"
	"github.com/jmehdipour/content-gateway/internal/repository"
	"github.com/jmehdipour/content-gateway/internal/service/notify"
	"github.com/jmehdipour/content-gateway/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Consume notify.email and send each request as one email",
	RunE:  runNotifier,
}

func runNotifier(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Encoding)
	log := logger.Named("notifier-worker")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) DB connection (MySQL)
	dbx, err := db.NewMySQLConnection(cfg.MySQL)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	// 3) mail transport
	m, err := mailer.FromConfig(cfg.Mail, log.Named("mailer"))
	if err != nil {
		return err
	}
	svc := notify.New(repository.NewEmailsRepository(dbx), m, log)

	// 4) kafka consumer
	kc := kafka.ConfigFrom(cfg.Kafka)
	consumer := kafka.NewConsumer(kc)
	defer consumer.Close()

	w := worker.NewNotifier(consumer, svc, log)
	if cfg.Worker.Count > 0 {
		w.Workers = cfg.Worker.Count
	}

	// 5) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("notifier worker started",
		zap.String("topic", kc.Topic),
		zap.String("group", kc.GroupID),
		zap.Int("workers", w.Workers),
		zap.Int("providers", m.Len()))

	return w.Run(ctx)
}
