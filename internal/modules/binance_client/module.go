package binance_client

import (
	"rsi_bot/internal/modules/binance_client/service"

	"go.uber.org/fx"
)

// Module поднимает REST-клиент Binance spot.
func Module() fx.Option {
	return fx.Module("binance_client",
		fx.Provide(
			service.NewClientFromConfig,
		),
	)
}
