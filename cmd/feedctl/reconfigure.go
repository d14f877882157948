package main

import (
	"candle_feed/internal/models"
	"candle_feed/internal/modules/config"
	globalconfig "candle_feed/internal/modules/globalconfig/service"
	pubsub "candle_feed/internal/modules/pubsub/service"
	"candle_feed/pkg/db"
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reconfigureCmd сохраняет символы (если задан DATABASE_DSN) и шлёт
// уведомление в канал переконфигурации.
var reconfigureCmd = &cobra.Command{
	Use:   "reconfigure",
	Short: "Notify the feed that the symbol set changed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		symbols, save := requestedSymbols(cmd)
		if save {
			if err := saveSymbols(ctx, symbols); err != nil {
				return err
			}
		}

		bus, closeBus, err := openBus()
		if err != nil {
			return err
		}
		defer closeBus()

		if err := bus.Publish(ctx, cfg.Feed.Channel, strings.Join(symbols, ",")); err != nil {
			return err
		}
		log.Info("configuration change published",
			zap.String("channel", cfg.Feed.Channel),
			zap.Strings("symbols", symbols),
		)
		return nil
	},
}

func init() {
	reconfigureCmd.Flags().StringSlice("symbols", nil, "new symbol set, e.g. BTCUSDT,ETHUSDT; --symbols= stores an empty set")
	rootCmd.AddCommand(reconfigureCmd)
}

// requestedSymbols: сохранять, только если флаг передан явно.
// Пустой набор допустим.
func requestedSymbols(cmd *cobra.Command) ([]string, bool) {
	if !cmd.Flags().Changed("symbols") {
		return nil, false
	}
	raw, _ := cmd.Flags().GetStringSlice("symbols")
	return models.NormalizeSymbols(raw), true
}

func saveSymbols(ctx context.Context, symbols []string) error {
	if cfg.DB == "" {
		return fmt.Errorf("--symbols requires DATABASE_DSN")
	}
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	tx := db.NewPgTxManager(pool)
	defer tx.Close()

	return globalconfig.NewRepository(tx).SaveSymbols(ctx, symbols)
}

func openBus() (pubsub.Bus, func(), error) {
	switch cfg.PubSub.Driver {
	case config.DriverRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return pubsub.NewRedisBus(rdb, log), func() { _ = rdb.Close() }, nil
	case config.DriverNats:
		bus, err := pubsub.NewNatsBus(cfg.PubSub.NatsURL, "feedctl", log)
		if err != nil {
			return nil, nil, err
		}
		return bus, func() { _ = bus.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("driver %q is not reachable from outside the feed process", cfg.PubSub.Driver)
	}
}
