package config

import "go.uber.org/fx"

// Module — конфиг из файла и горячие тумблеры поверх него.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
			NewToggles,
		),
	)
}
