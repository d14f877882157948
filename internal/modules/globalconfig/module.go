package globalconfig

import (
	"candle_feed/internal/modules/config"
	"candle_feed/internal/modules/globalconfig/service"
	"candle_feed/pkg/db"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("globalconfig",
		fx.Provide(
			func(tx *db.PgTxManager) *service.Repository {
				if tx == nil {
					return nil
				}
				return service.NewRepository(tx)
			},
			func(repo *service.Repository, toggles *config.Toggles, log *zap.Logger) *service.Source {
				if repo == nil {
					return service.NewSource(nil, toggles, log)
				}
				return service.NewSource(repo, toggles, log)
			},
		),
	)
}
