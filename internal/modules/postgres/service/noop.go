package service

import (
	"context"

	"rsi_bot/internal/models"
)

// Noop - когда db_dsn не задан: статус живёт только в памяти мониторов.
type Noop struct{}

func (Noop) Upsert(context.Context, models.SymbolStatus) error { return nil }

func (Noop) Get(context.Context, string) (models.SymbolStatus, bool, error) {
	return models.SymbolStatus{}, false, nil
}
