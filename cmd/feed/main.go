package main

import (
	"candle_feed/internal/modules/binance_websocket"
	"candle_feed/internal/modules/bootstrap"
	"candle_feed/internal/modules/cache"
	"candle_feed/internal/modules/config"
	"candle_feed/internal/modules/feed"
	"candle_feed/internal/modules/globalconfig"
	"candle_feed/internal/modules/health"
	"candle_feed/internal/modules/postgres"
	"candle_feed/internal/modules/pubsub"
	"candle_feed/internal/modules/redis"
	telegram "candle_feed/internal/modules/telegram_bot"
	"candle_feed/pkg/logger"
	"candle_feed/pkg/tracing"
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const serviceName = "candle-feed"

func main() {
	app := fx.New(
		config.Module(),
		fx.Provide(
			func(cfg *config.Config) (*zap.Logger, error) {
				logger.SetServiceName(serviceName)
				return logger.New(cfg.LogLevel)
			},
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		redis.Module(),
		postgres.Module(),
		pubsub.Module(),
		cache.Module(),
		globalconfig.Module(),
		binance_websocket.Module(),
		telegram.Module(),
		feed.Module(),
		bootstrap.Module(),
		health.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	tracing.SetServiceName(serviceName)
	_, closer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}
