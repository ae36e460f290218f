package postgres

import (
	"context"
	"fmt"

	"rsi_bot/internal/modules/config"
	"rsi_bot/internal/modules/postgres/service"
	"rsi_bot/internal/runner"
	"rsi_bot/migrations"
	"rsi_bot/pkg/db"
	"rsi_bot/pkg/logger"

	"go.uber.org/fx"
)

// Module: без db_dsn статусы не сохраняются, бот работает без базы.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config) (runner.StatusStore, error) {
				if cfg.DB == "" {
					logger.Warn("[BOOT] db_dsn is empty, symbol status is not persisted")
					return service.Noop{}, nil
				}

				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				if err = poolMaster.Ping(ctx); err != nil {
					poolMaster.Close()
					return nil, err
				}

				tm := db.NewPgTxManager(poolMaster)
				if err = db.Migrate(ctx, tm, migrations.FS); err != nil {
					tm.Close()
					return nil, err
				}
				lc.Append(fx.Hook{
					OnStop: func(_ context.Context) error {
						tm.Close()
						return nil
					},
				})
				return service.NewSymbolStatus(tm), nil
			},
		),
	)
}
