package db

import (
	"context"
	"fmt"
	"io/fs"

	"rsi_bot/pkg/logger"
)

// Migrate накатывает *.sql из fsys по порядку имён в одной транзакции.
// Файлы должны быть идемпотентными (IF NOT EXISTS): журнала версий нет.
func Migrate(ctx context.Context, tm TxManager, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	return tm.RunMaster(ctx, func(ctxTx context.Context, tx Transaction) error {
		for _, name := range files {
			body, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("read migration %s: %w", name, err)
			}
			if _, err = tx.Exec(ctxTx, string(body)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			logger.Info("[DB] migration %s applied", name)
		}
		return nil
	})
}
