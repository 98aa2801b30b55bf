package cmd

import (
	"fmt"

	"github.com/jmehdipour/content-gateway/internal/db"
	"github.com/jmehdipour/content-gateway/internal/logger"
	"github.com/jmehdipour/content-gateway/internal/repository"
	"github.com/jmehdipour/content-gateway/internal/service/gateway"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedEmails []string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the gateway with demo subscribers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		rds, err := db.NewRedisClient(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = rds.Close() }()

		gw := gateway.New(repository.NewSubscribersRepository(rds, cfg.Gateway.SubscribersKey), nil, nil, nil, logger.Log)

		added := 0
		for _, e := range seedEmails {
			email, isNew, err := gw.Subscribe(cmd.Context(), e)
			if err != nil {
				return fmt.Errorf("subscribe %q: %w", e, err)
			}
			if isNew {
				added++
			}
			logger.Log.Info("seeded subscriber", zap.String("email", email), zap.Bool("new", isNew))
		}

		logger.Log.Info("seed completed", zap.Int("added", added), zap.Int("total", len(seedEmails)))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringSliceVar(&seedEmails, "emails",
		[]string{"alice@example.com", "bob@example.com", "carol@example.com"},
		"subscriber addresses to add")
}
