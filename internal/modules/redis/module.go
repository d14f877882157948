package redis

import (
	"candle_feed/internal/modules/config"
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Module — общий клиент Redis для кэша свечей и pub/sub.
func Module() fx.Option {
	return fx.Module("redis",
		fx.Provide(
			func(lc fx.Lifecycle, cfg *config.Config) (*goredis.Client, error) {
				client := goredis.NewClient(&goredis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})

				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						if err := client.Ping(ctx).Err(); err != nil {
							return fmt.Errorf("failed to ping redis %s: %w", cfg.Redis.Addr, err)
						}
						return nil
					},
					OnStop: func(ctx context.Context) error {
						return client.Close()
					},
				})
				return client, nil
			},
		),
	)
}
