package telegram

import (
	"candle_feed/internal/modules/config"
	health "candle_feed/internal/modules/health/service"
	"candle_feed/internal/notify"
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// Notifier: если TELEGRAM_* нет — используем stdout
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
					if err == nil {
						return tg
					}
					log.Warn("telegram disabled", zap.Error(err))
				}
				return notify.NewStdout(log)
			},
		),
		// Запуск long-polling команд через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, n notify.Notifier, state *health.State, log *zap.Logger) {
				tg, ok := n.(*notify.Telegram)
				if !ok {
					return
				}
				tg.Handle("status", func(context.Context) string {
					return StatusText(state)
				})

				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						// ctx хука живёт только на время старта
						if err := tg.Start(context.Background()); err != nil {
							return err
						}
						log.Info("telegram started")
						return nil
					},
					OnStop: func(ctx context.Context) error {
						tg.Stop()
						return nil
					},
				})
			},
		),
	)
}

// StatusText — ответ на /status.
func StatusText(state *health.State) string {
	if !state.Live() {
		return fmt.Sprintf("📈 poll mode, uptime %s", state.Uptime().Truncate(time.Second))
	}
	last := "never"
	if t := state.LastTick(); !t.IsZero() {
		last = humanize.RelTime(t, state.Now(), "ago", "from now")
	}
	return fmt.Sprintf("📈 live mode, websocket=%t, stale=%t, last candle %s", state.WSConnected(), state.Stale(), last)
}
