package runner

import (
	"context"

	"rsi_bot/internal/models"
	health "rsi_bot/internal/modules/health/service"
	metrics "rsi_bot/internal/modules/metrics/service"
)

// Notifier - операторские уведомления (Telegram или лог).
type Notifier interface {
	SendService(ctx context.Context, format string, args ...any)
}

// Executor исполняет пересечение. nil - позиция сменилась,
// ошибка - позицию не трогаем.
type Executor interface {
	Execute(ctx context.Context, sig models.Signal) error
}

// HistorySource - исторические закрытые свечи для прогрева.
type HistorySource interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]models.CandleTick, error)
}

// Feed - живой поток закрытых свечей одного символа.
type Feed interface {
	Start(ctx context.Context) <-chan models.CandleTick
	Stop()
	Err() error
}

type FeedFactory func(symbol, interval string) Feed

// StatusStore - запись crypto_symbol_status; на горячем пути не читается.
type StatusStore interface {
	Upsert(ctx context.Context, st models.SymbolStatus) error
	Get(ctx context.Context, symbol string) (models.SymbolStatus, bool, error)
}

type Deps struct {
	History  HistorySource
	Feeds    FeedFactory
	Executor Executor

	// опциональные
	Store    StatusStore
	Notifier Notifier
	Metrics  *metrics.Metrics
	Health   *health.State

	// SeedMargin - свечей сверх периода на прогрев
	SeedMargin int
}
