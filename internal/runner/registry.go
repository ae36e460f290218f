package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"
	"rsi_bot/internal/modules/config"
	"rsi_bot/pkg/logger"
)

// Registry - символ -> монитор, не больше одного живого монитора на символ.
type Registry struct {
	deps   *Deps
	alerts config.Alerts
	// base - контекст жизни фидов
	base context.Context

	mu       sync.Mutex
	monitors map[string]*Monitor
	pending  map[string]struct{} // символы в SEEDING

	defaultsMu sync.RWMutex
	defaults   models.RsiConfig
}

func NewRegistry(base context.Context, deps Deps, defaults models.RsiConfig, alerts config.Alerts) *Registry {
	if alerts == nil {
		alerts = config.Alerts{}
	}
	return &Registry{
		deps:     &deps,
		alerts:   alerts,
		base:     base,
		monitors: make(map[string]*Monitor),
		pending:  make(map[string]struct{}),
		defaults: defaults,
	}
}

// Register прогревает и запускает монитор. Вызывающий ждёт конца SEEDING.
// Монитор в FAILED можно заменить повторной регистрацией.
func (r *Registry) Register(ctx context.Context, p models.SymbolParams) (*Monitor, error) {
	key := helper.NormSymbol(p.Symbol)
	if key == "" || strings.TrimSpace(p.Interval) == "" {
		return nil, fmt.Errorf("%w: symbol and interval are required", models.ErrValidation)
	}
	interval := helper.NormTF(p.Interval)
	if !helper.ValidInterval(interval) {
		return nil, fmt.Errorf("%w: unsupported interval %q", models.ErrValidation, p.Interval)
	}
	if p.BuyLimit != nil && *p.BuyLimit <= 0 {
		return nil, fmt.Errorf("%w: buyLimit must be a positive number", models.ErrValidation)
	}

	cfg := r.Defaults()
	if p.Rsi != nil {
		if err := p.Rsi.Validate(); err != nil {
			return nil, err
		}
		cfg = p.Rsi.Apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	stale, exists := r.monitors[key]
	if exists && stale.State() != models.StateFailed {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrConflict, key)
	}
	if _, busy := r.pending[key]; busy {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s is being registered", ErrConflict, key)
	}
	r.pending[key] = struct{}{}
	r.mu.Unlock()

	entry, exit := r.messages(key, interval, p)
	m := newMonitor(monitorParams{
		symbol:   key,
		interval: interval,
		cfg:      cfg,
		inLong:   p.InLong != nil && *p.InLong,
		buyLimit: p.BuyLimit,
		entryMsg: entry,
		exitMsg:  exit,
	}, r.deps)

	err := m.Start(ctx, r.base)

	r.mu.Lock()
	delete(r.pending, key)
	if err != nil {
		r.mu.Unlock()
		logger.Error("[SEED] %s: %v", key, err)
		return nil, err
	}
	r.monitors[key] = m
	n := len(r.monitors)
	r.mu.Unlock()

	if stale != nil {
		stale.Stop()
	}
	r.gauges(n)

	m.persist(models.SymbolStatus{
		Symbol:    key,
		Status:    models.StatusActive,
		InLong:    m.InLong(),
		UpdatedAt: time.Now().UTC(),
	})
	logger.Info("[REG] %s registered: interval=%s inLong=%t rsi=%+v", key, interval, m.InLong(), cfg)
	return m, nil
}

// messages: тело запроса > файл алертов > сгенерированный токен.
func (r *Registry) messages(key, interval string, p models.SymbolParams) (entry, exit string) {
	fromFile, _ := r.alerts.For(key)

	entry = firstNonEmpty(p.EntryMessage, fromFile.Entry, defaultMessage(models.CrossEnter, key, interval))
	exit = firstNonEmpty(p.ExitMessage, fromFile.Exit, defaultMessage(models.CrossExit, key, interval))
	return entry, exit
}

func defaultMessage(c models.Crossing, symbol, interval string) string {
	return fmt.Sprintf("%s_BINANCE_%s_%s", c.AlertType(), strings.ToUpper(symbol), strings.ToUpper(interval))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Unregister останавливает и удаляет монитор; false - символа не было.
func (r *Registry) Unregister(symbol string) bool {
	key := helper.NormSymbol(symbol)

	r.mu.Lock()
	m, ok := r.monitors[key]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.monitors, key)
	n := len(r.monitors)
	r.mu.Unlock()

	m.Stop()
	r.gauges(n)
	r.deps.Metrics.Forget(key)

	m.persist(models.SymbolStatus{
		Symbol:    key,
		Status:    models.StatusRemoved,
		InLong:    m.InLong(),
		UpdatedAt: time.Now().UTC(),
	})
	logger.Info("[REG] %s removed", key)
	return true
}

func (r *Registry) Get(symbol string) (*Monitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.monitors[helper.NormSymbol(symbol)]
	return m, ok
}

func (r *Registry) List() []models.SymbolSummary {
	r.mu.Lock()
	ms := make([]*Monitor, 0, len(r.monitors))
	for _, m := range r.monitors {
		ms = append(ms, m)
	}
	r.mu.Unlock()

	out := make([]models.SymbolSummary, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.monitors)
}

// UpdateStatus - частичная правка inLong/buyLimit.
func (r *Registry) UpdateStatus(symbol string, patch models.StatusPatch) (models.SymbolSummary, error) {
	if patch.InLong == nil && patch.BuyLimit == nil {
		return models.SymbolSummary{}, fmt.Errorf("%w: nothing to update, expected inLong or buyLimit", models.ErrValidation)
	}
	if patch.BuyLimit != nil && *patch.BuyLimit <= 0 {
		return models.SymbolSummary{}, fmt.Errorf("%w: buyLimit must be a positive number", models.ErrValidation)
	}

	m, ok := r.Get(symbol)
	if !ok {
		return models.SymbolSummary{}, fmt.Errorf("%w: %s", ErrNotFound, helper.NormSymbol(symbol))
	}
	m.SetStatus(patch)
	return m.Summary(), nil
}

// UpdateRsiConfig - пороги символа; смена периода пересевает монитор.
func (r *Registry) UpdateRsiConfig(ctx context.Context, symbol string, patch models.RsiConfigPatch) (models.SymbolSummary, error) {
	if patch.IsEmpty() {
		return models.SymbolSummary{}, fmt.Errorf("%w: nothing to update, expected entry, exit or period", models.ErrValidation)
	}
	if err := patch.Validate(); err != nil {
		return models.SymbolSummary{}, err
	}

	m, ok := r.Get(symbol)
	if !ok {
		return models.SymbolSummary{}, fmt.Errorf("%w: %s", ErrNotFound, helper.NormSymbol(symbol))
	}
	if _, err := m.UpdateRsiConfig(ctx, patch); err != nil {
		return models.SymbolSummary{}, err
	}
	return m.Summary(), nil
}

// Defaults - глобальные пороги для новых мониторов.
func (r *Registry) Defaults() models.RsiConfig {
	r.defaultsMu.RLock()
	defer r.defaultsMu.RUnlock()
	return r.defaults
}

// PatchDefaults меняет только глобальные пороги, живые мониторы не трогает.
func (r *Registry) PatchDefaults(patch models.RsiConfigPatch) (models.RsiConfig, error) {
	if patch.IsEmpty() {
		return models.RsiConfig{}, fmt.Errorf("%w: nothing to update, expected entry, exit or period", models.ErrValidation)
	}
	if err := patch.Validate(); err != nil {
		return models.RsiConfig{}, err
	}

	r.defaultsMu.Lock()
	defer r.defaultsMu.Unlock()
	r.defaults = patch.Apply(r.defaults)
	logger.Info("[REG] default rsi config updated: %+v", r.defaults)
	return r.defaults, nil
}

// StopAll - на остановке процесса. Статус removed не пишем,
// иначе после рестарта нечего восстанавливать.
func (r *Registry) StopAll() {
	r.mu.Lock()
	ms := make([]*Monitor, 0, len(r.monitors))
	for k, m := range r.monitors {
		ms = append(ms, m)
		delete(r.monitors, k)
	}
	r.mu.Unlock()

	for _, m := range ms {
		m.Stop()
	}
	r.gauges(0)
}

// Recover - последний сохранённый статус символа, если он есть.
func (r *Registry) Recover(ctx context.Context, symbol string) (models.SymbolStatus, bool) {
	if r.deps.Store == nil {
		return models.SymbolStatus{}, false
	}
	st, ok, err := r.deps.Store.Get(ctx, helper.NormSymbol(symbol))
	if err != nil {
		logger.Warn("[REG] %s recover status: %v", symbol, err)
		return models.SymbolStatus{}, false
	}
	return st, ok
}

func (r *Registry) gauges(n int) {
	r.deps.Metrics.Monitors(n)
	r.deps.Health.SetMonitors(n)
}
