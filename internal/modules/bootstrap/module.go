package bootstrap

import (
	"context"

	bootstrap "rsi_bot/internal/modules/bootstrap/service"
	"rsi_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			bootstrap.NewWarmuper,
		),
		// app-контекст, а не OnStart: прогрев длиннее таймаута старта
		fx.Invoke(func(lc fx.Lifecycle, ctx context.Context, wu *bootstrap.Warmuper) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						started, failed := wu.Warmup(ctx)
						logger.Info("[BOOT] warmup done: started=%d failed=%d", started, len(failed))
					}()
					return nil
				},
			})
		}),
	)
}
