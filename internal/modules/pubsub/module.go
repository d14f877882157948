package pubsub

import (
	"candle_feed/internal/modules/config"
	"candle_feed/internal/modules/pubsub/service"
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewBus выбирает транспорт канала переконфигурации по pubsub.driver.
func NewBus(lc fx.Lifecycle, cfg *config.Config, rdb *goredis.Client, log *zap.Logger) (service.Bus, error) {
	var bus service.Bus
	switch cfg.PubSub.Driver {
	case config.DriverRedis:
		bus = service.NewRedisBus(rdb, log)
	case config.DriverNats:
		nb, err := service.NewNatsBus(cfg.PubSub.NatsURL, "candle-feed", log)
		if err != nil {
			return nil, err
		}
		bus = nb
	case config.DriverMemory:
		bus = service.NewMemoryBus()
	default:
		return nil, fmt.Errorf("unknown pubsub driver %q", cfg.PubSub.Driver)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return bus.Close()
		},
	})
	return bus, nil
}

func Module() fx.Option {
	return fx.Module("pubsub",
		fx.Provide(NewBus),
	)
}
