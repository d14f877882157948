package postgres

import (
	"candle_feed/internal/modules/config"
	"candle_feed/pkg/db"
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module — пул Postgres. Без DATABASE_DSN отдаёт nil: глобальная
// конфигурация тогда берётся из yaml.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					log.Info("postgres disabled: no dsn")
					return nil, nil
				}

				poolMaster, err := db.NewPool(context.Background(), db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}
				manager := db.NewPgTxManager(poolMaster)

				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return poolMaster.Ping(ctx)
					},
					OnStop: func(ctx context.Context) error {
						manager.Close()
						return nil
					},
				})
				return manager, nil
			},
		),
	)
}
