package binance_websocket

import (
	"candle_feed/internal/modules/binance_websocket/service"
	"candle_feed/internal/modules/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module поднимает клиент Binance: стрим свечей + REST-цены.
func Module() fx.Option {
	return fx.Module("binance_websocket",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) *service.Client {
				ws, rest := cfg.ExchangeURLs()
				return service.NewClient(ws, rest, log)
			},
		),
	)
}
