package main

import (
	"candle_feed/internal/modules/config"
	"candle_feed/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "feedctl",
	Short: "Operator tool for the candle feed",
	Long: `feedctl talks to the same Redis, NATS and Postgres as the feed service.

It can:
- store a new symbol set and notify the running feed to resubscribe
- print the latest cached candle for a symbol`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewConfig()
		if err != nil {
			return err
		}
		logger.SetServiceName("feedctl")
		log, err = logger.New(cfg.LogLevel)
		return err
	},
}
