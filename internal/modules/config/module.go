package config

import "go.uber.org/fx"

// Module: сам *Config кладётся в граф через fx.Supply в main,
// тут только то, что из него выводится.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewAlerts,
		),
	)
}
