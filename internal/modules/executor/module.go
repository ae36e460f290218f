package executor

import (
	binance "rsi_bot/internal/modules/binance_client/service"
	"rsi_bot/internal/modules/config"
	"rsi_bot/internal/modules/executor/service"
	"rsi_bot/internal/runner"
	"rsi_bot/pkg/logger"

	"go.uber.org/fx"
)

// Module: режим исполнения выбирается конфигом на весь процесс.
func Module() fx.Option {
	return fx.Module("executor",
		fx.Provide(
			service.NewSenderFromConfig,
			service.NewWebhookExecutor,
			func(c *binance.Client) *service.BalanceCache {
				return service.NewBalanceCache(c)
			},
			func(c *binance.Client, b *service.BalanceCache, cfg *config.Config) *service.DirectExecutor {
				return service.NewDirectExecutor(c, b, cfg.Trading.MinQuoteBalance)
			},
			func(cfg *config.Config, w *service.WebhookExecutor, d *service.DirectExecutor) runner.Executor {
				if cfg.Mode == config.ModeDirect {
					logger.Info("[BOOT] execution mode: direct orders")
					return d
				}
				logger.Info("[BOOT] execution mode: webhook")
				return w
			},
		),
	)
}
