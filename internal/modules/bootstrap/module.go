package bootstrap

import (
	bootstrap "candle_feed/internal/modules/bootstrap/service"
	"candle_feed/internal/modules/config"
	feed "candle_feed/internal/modules/feed/service"
	"candle_feed/internal/notify"
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module — прогрев кэша при старте, только для live-режима и по флагу feed.warmup.
func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(p *feed.Poller, n notify.Notifier, log *zap.Logger) *bootstrap.Warmuper {
				return bootstrap.NewWarmuper(p, n, log)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, wu *bootstrap.Warmuper, log *zap.Logger) {
			if !cfg.Feed.Warmup || !cfg.Live() {
				return
			}
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						if err := wu.Warmup(ctx); err != nil {
							log.Error("[BOOT] warmup error", zap.Error(err))
						}
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
