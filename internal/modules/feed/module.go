package feed

import (
	binance "candle_feed/internal/modules/binance_websocket/service"
	cache "candle_feed/internal/modules/cache/service"
	"candle_feed/internal/modules/config"
	"candle_feed/internal/modules/feed/service"
	globalconfig "candle_feed/internal/modules/globalconfig/service"
	health "candle_feed/internal/modules/health/service"
	pubsub "candle_feed/internal/modules/pubsub/service"
	"candle_feed/internal/notify"
	"context"
	"strings"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("feed",
		fx.Provide(
			clock.New,
			func(clk clock.Clock) *service.Heartbeat {
				return service.NewHeartbeat(clk.Now())
			},
			func(
				src *globalconfig.Source,
				client *binance.Client,
				cc *cache.CandleCache,
				hb *service.Heartbeat,
				clk clock.Clock,
				cfg *config.Config,
				log *zap.Logger,
			) *service.Manager {
				return service.NewManager(src, client, cc, hb, clk, cfg.Feed.Interval, log)
			},
			func(bus pubsub.Bus, m *service.Manager, cfg *config.Config, log *zap.Logger) *service.Listener {
				return service.NewListener(bus, m, cfg.Feed.Channel, log)
			},
			func(
				hb *service.Heartbeat,
				l *service.Listener,
				toggles *config.Toggles,
				n notify.Notifier,
				clk clock.Clock,
				cfg *config.Config,
				log *zap.Logger,
			) *service.Monitor {
				return service.NewMonitor(hb, l, toggles, n, clk, cfg.Feed.HeartbeatPeriod, cfg.Feed.StaleAfter, log)
			},
			func(
				src *globalconfig.Source,
				client *binance.Client,
				cc *cache.CandleCache,
				clk clock.Clock,
				cfg *config.Config,
				log *zap.Logger,
			) *service.Poller {
				return service.NewPoller(src, client, cc, clk, cfg.Feed.PollPeriod, log)
			},
			func(toggles *config.Toggles, l *service.Listener, mon *service.Monitor, p *service.Poller, log *zap.Logger) *service.Supervisor {
				return service.NewSupervisor(toggles, l, mon, p, log)
			},
			func(m *service.Manager) health.FeedProbe { return m },
		),
		fx.Invoke(
			RunSupervisor,
			PublishSymbolChanges,
		),
	)
}

// RunSupervisor запускает фид на всё время жизни приложения.
func RunSupervisor(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	sup *service.Supervisor,
	m *service.Manager,
	l *service.Listener,
	log *zap.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := sup.Run(ctx); err != nil {
					log.Error("feed supervisor stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			l.Stop()
			m.Close()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// PublishSymbolChanges: правка symbols в конфиге рассылает уведомление
// в канал переконфигурации, как это делает сохранение настроек.
func PublishSymbolChanges(toggles *config.Toggles, bus pubsub.Bus, cfg *config.Config, log *zap.Logger) {
	toggles.OnSymbolsChanged(func(symbols []string) {
		if err := bus.Publish(context.Background(), cfg.Feed.Channel, strings.Join(symbols, ",")); err != nil {
			log.Error("publish configuration changed", zap.Error(err))
		}
	})
}
