package runner

import (
	"context"

	binance "rsi_bot/internal/modules/binance_client/service"
	ws "rsi_bot/internal/modules/binance_websocket/service"
	"rsi_bot/internal/modules/config"
	health "rsi_bot/internal/modules/health/service"
	metrics "rsi_bot/internal/modules/metrics/service"

	"go.uber.org/fx"
)

type RegistryIn struct {
	fx.In

	Ctx      context.Context
	Cfg      *config.Config
	Alerts   config.Alerts
	History  *binance.Client
	Feeds    *ws.Factory
	Executor Executor
	Store    StatusStore
	Notifier Notifier
	Metrics  *metrics.Metrics
	Health   *health.State
}

func NewRegistryFx(in RegistryIn) *Registry {
	return NewRegistry(in.Ctx, Deps{
		History:  in.History,
		Feeds:    func(symbol, interval string) Feed { return in.Feeds.New(symbol, interval) },
		Executor: in.Executor,
		Store:    in.Store,
		Notifier: in.Notifier,
		Metrics:  in.Metrics,
		Health:   in.Health,

		SeedMargin: in.Cfg.SeedMargin,
	}, in.Cfg.Rsi, in.Alerts)
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewRegistryFx,
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Registry) {
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					r.StopAll()
					return nil
				},
			})
		}),
	)
}
