package telegram

import (
	"context"

	"rsi_bot/internal/modules/config"
	"rsi_bot/internal/modules/telegram_bot/service"
	"rsi_bot/internal/notify"
	"rsi_bot/internal/runner"
	"rsi_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// без токена бота нет, уведомления уходят в лог
		fx.Provide(
			func(cfg *config.Config) (*service.Telegram, error) {
				if cfg.Telegram.Token == "" {
					logger.Warn("[BOOT] telegram token is empty, notifications go to log")
					return nil, nil
				}
				return service.NewTelegram(cfg)
			},
		),

		fx.Provide(
			func(t *service.Telegram) runner.Notifier {
				if t == nil {
					return notify.Log{}
				}
				return t
			},
		),

		// реестр отдаём в Start, иначе цикл Notifier -> Registry -> Telegram
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram, reg *runner.Registry) {
				if t == nil {
					return
				}
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						go t.Start(context.WithoutCancel(ctx), reg)
						return nil
					},
					OnStop: func(ctx context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
