package cache

import (
	"candle_feed/internal/modules/cache/service"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("cache",
		fx.Provide(
			func(rdb *goredis.Client) *service.CandleCache {
				return service.NewCandleCache(rdb)
			},
		),
	)
}
