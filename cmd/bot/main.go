package main

import (
	"context"
	"fmt"
	"os"

	"rsi_bot/internal/modules/api"
	binanceclient "rsi_bot/internal/modules/binance_client"
	binancews "rsi_bot/internal/modules/binance_websocket"
	"rsi_bot/internal/modules/bootstrap"
	"rsi_bot/internal/modules/config"
	"rsi_bot/internal/modules/executor"
	"rsi_bot/internal/modules/health"
	"rsi_bot/internal/modules/metrics"
	"rsi_bot/internal/modules/postgres"
	telegram "rsi_bot/internal/modules/telegram_bot"
	"rsi_bot/internal/runner"
	"rsi_bot/pkg/logger"
	"rsi_bot/pkg/tracing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const serviceName = "rsi-bot"

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err = logger.Init(cfg.Log.Level, cfg.Log.JSON); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	// живёт до остановки приложения: фиды и прогрев не привязаны к OnStart
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.InfoLogger}
		}),
		fx.Supply(cfg),
		fx.Provide(
			func() context.Context {
				return appCtx
			},
		),
		fx.Invoke(func(lc fx.Lifecycle) error {
			_, closer, err := tracing.InitTracer(tracing.Config{
				Enabled: cfg.Tracing.Enabled,
				Host:    cfg.Tracing.Host,
				Port:    cfg.Tracing.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					cancel()
					closer()
					return nil
				},
			})
			return nil
		}),
		config.Module(),
		metrics.Module(),
		postgres.Module(),
		telegram.Module(),
		binanceclient.Module(),
		binancews.Module(),
		executor.Module(),
		runner.Module(),
		health.Module(),
		api.Module(),
		bootstrap.Module(),
	)

	logger.Info("[BOOT] %s starting in %s mode on %s", serviceName, cfg.Mode, cfg.Addr())
	app.Run()
}
