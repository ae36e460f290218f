package service

import (
	"context"
	"strings"

	"rsi_bot/internal/models"
	"rsi_bot/internal/modules/config"
	health "rsi_bot/internal/modules/health/service"
	"rsi_bot/internal/runner"
	"rsi_bot/pkg/logger"
)

// Registrar - часть реестра, нужная на старте.
type Registrar interface {
	Register(ctx context.Context, p models.SymbolParams) (*runner.Monitor, error)
	Recover(ctx context.Context, symbol string) (models.SymbolStatus, bool)
}

// Warmuper поднимает символы из конфига: по одному, чтобы не словить rate limit на klines.
type Warmuper struct {
	reg     Registrar
	n       runner.Notifier
	health  *health.State
	symbols []config.SymbolConfig
}

func NewWarmuper(reg *runner.Registry, n runner.Notifier, h *health.State, cfg *config.Config) *Warmuper {
	return newWarmuper(reg, n, h, cfg.Symbols)
}

func newWarmuper(reg Registrar, n runner.Notifier, h *health.State, symbols []config.SymbolConfig) *Warmuper {
	return &Warmuper{
		reg:     reg,
		n:       n,
		health:  h,
		symbols: symbols,
	}
}

// Warmup не падает на ошибке символа: логируем и идём дальше.
// В конце сервис помечается готовым.
func (w *Warmuper) Warmup(ctx context.Context) (started int, failed []string) {
	defer w.health.SetReady(true)

	if len(w.symbols) == 0 {
		logger.Info("[BOOT] no default symbols configured")
		return 0, nil
	}

	for _, sc := range w.symbols {
		if ctx.Err() != nil {
			break
		}
		p := w.params(ctx, sc)
		if _, err := w.reg.Register(ctx, p); err != nil {
			logger.Error("[BOOT] %s %s: %v", sc.Symbol, sc.Interval, err)
			failed = append(failed, strings.ToUpper(sc.Symbol))
			continue
		}
		started++
	}

	if len(failed) > 0 {
		w.notify(ctx, "⚠️ Старт: поднято %d из %d символов, ошибки: %s", started, len(w.symbols), strings.Join(failed, ", "))
	} else {
		w.notify(ctx, "✅ Старт: поднято %d символов", started)
	}
	return started, failed
}

// params: in_long из конфига, иначе последний сохранённый статус.
func (w *Warmuper) params(ctx context.Context, sc config.SymbolConfig) models.SymbolParams {
	p := models.SymbolParams{
		Symbol:   sc.Symbol,
		Interval: sc.Interval,
		InLong:   sc.InLong,
		BuyLimit: sc.BuyLimit,
		Rsi:      sc.Rsi,
	}
	if p.InLong != nil {
		return p
	}
	st, ok := w.reg.Recover(ctx, sc.Symbol)
	if !ok || st.Status == models.StatusRemoved {
		return p
	}
	inLong := st.InLong
	p.InLong = &inLong
	logger.Info("[BOOT] %s recovered inLong=%t from status %q", sc.Symbol, inLong, st.Status)
	return p
}

func (w *Warmuper) notify(ctx context.Context, format string, args ...any) {
	if w.n == nil {
		return
	}
	w.n.SendService(ctx, format, args...)
}
