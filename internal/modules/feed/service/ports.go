package service

import (
	"candle_feed/internal/models"
	"context"

	"github.com/shopspring/decimal"
)

type ConfigurationSource interface {
	GlobalConfiguration(ctx context.Context) (*models.GlobalConfiguration, error)
}

// CandleStream — push-подписка на свечи. Подписка живёт, пока не закрыт
// хэндл или не отменён ctx.
type CandleStream interface {
	SubscribeCandles(ctx context.Context, symbols []string, interval string, onCandle models.OnCandle) (models.FeedHandle, error)
}

type PriceSource interface {
	FetchAllPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

type CandleCache interface {
	Write(ctx context.Context, scope, key string, sample models.Sample) error
}

type ChangeChannel interface {
	Subscribe(ctx context.Context, channel string, handler func(channel, payload string)) (func(), error)
}

type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Toggles читаются на каждой точке принятия решения.
type Toggles interface {
	Mode() string
	NotifyDebug() bool
}
