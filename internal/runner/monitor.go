package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"rsi_bot/internal/models"
	strategy "rsi_bot/internal/modules/strategy/service"
	"rsi_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

// Monitor - один символ: прогрев, живой фид, RSI, детектор, исполнение.
// Свечи обрабатываются строго по одной (procMu); поля под mu читаются
// из API без ожидания ордера.
type Monitor struct {
	symbol   string
	interval string
	deps     *Deps

	procMu sync.Mutex

	mu       sync.RWMutex
	state    models.MonitorState
	cfg      models.RsiConfig
	inLong   bool
	buyLimit *float64
	entryMsg string
	exitMsg  string
	rsi      *strategy.RSI
	prev     strategy.Reading
	curr     strategy.Reading
	window   []float64
	seeded   time.Time
	feed     Feed
	cancel   context.CancelFunc
	lastErr  error

	done chan struct{}
}

type monitorParams struct {
	symbol   string
	interval string
	cfg      models.RsiConfig
	inLong   bool
	buyLimit *float64
	entryMsg string
	exitMsg  string
}

func newMonitor(p monitorParams, deps *Deps) *Monitor {
	return &Monitor{
		symbol:   p.symbol,
		interval: p.interval,
		deps:     deps,
		state:    models.StateCreated,
		cfg:      p.cfg,
		inLong:   p.inLong,
		buyLimit: copyFloat(p.buyLimit),
		entryMsg: p.entryMsg,
		exitMsg:  p.exitMsg,
		done:     make(chan struct{}),
	}
}

type seedResult struct {
	rsi    *strategy.RSI
	prev   strategy.Reading
	curr   strategy.Reading
	window []float64
	until  time.Time // начало последней свечи истории
}

// seed тянет period+margin закрытых свечей (+1 на незакрытую) и прогоняет их через RSI.
func (m *Monitor) seed(ctx context.Context, period int) (res seedResult, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "monitor.seed")
	span.SetTag("symbol", m.symbol)
	span.SetTag("period", period)
	started := time.Now()
	defer func() {
		if err != nil {
			span.SetTag("error", true)
		}
		span.Finish()
	}()

	need := period + m.deps.SeedMargin
	ticks, err := m.deps.History.Klines(ctx, m.symbol, m.interval, need+1)
	if err != nil {
		return seedResult{}, fmt.Errorf("%w: %s %s: %v", ErrSeeding, m.symbol, m.interval, err)
	}
	if len(ticks) < need {
		return seedResult{}, fmt.Errorf("%w: %s %s: got %d closes, need %d", ErrSeeding, m.symbol, m.interval, len(ticks), need)
	}

	closes := make([]float64, 0, len(ticks))
	for _, t := range ticks {
		closes = append(closes, t.Close)
	}

	res.rsi = strategy.NewRSI(period)
	values := res.rsi.Seed(closes)
	if n := len(values); n > 0 {
		res.curr = strategy.ValueOf(values[n-1], true)
		if n > 1 {
			res.prev = strategy.ValueOf(values[n-2], true)
		}
	}
	res.window = tail(closes, need)
	res.until = ticks[len(ticks)-1].Start

	m.deps.Metrics.Seeded(time.Since(started).Seconds())
	logger.Info("[SEED] %s %s: closes=%d period=%d rsi=%s", m.symbol, m.interval, len(closes), period, fmtReading(res.curr))
	return res, nil
}

// Start: SEEDING синхронно, потом LIVE. Ошибка прогрева - монитор выбрасываем.
// base - контекст жизни фида, он переживает HTTP-запрос с ctx.
func (m *Monitor) Start(ctx, base context.Context) error {
	m.mu.Lock()
	if m.state != models.StateCreated {
		m.mu.Unlock()
		return errors.Errorf("monitor %s already started", m.symbol)
	}
	m.state = models.StateSeeding
	period := m.cfg.Period
	m.mu.Unlock()

	res, err := m.seed(ctx, period)
	if err != nil {
		m.mu.Lock()
		m.state = models.StateStopped
		m.mu.Unlock()
		close(m.done)
		return err
	}

	runCtx, cancel := context.WithCancel(base)
	feed := m.deps.Feeds(m.symbol, m.interval)

	m.mu.Lock()
	if m.state == models.StateStopped {
		m.mu.Unlock()
		cancel()
		close(m.done)
		return errors.Errorf("monitor %s stopped during seeding", m.symbol)
	}
	m.install(res)
	m.feed = feed
	m.cancel = cancel
	m.state = models.StateLive
	m.mu.Unlock()

	ch := feed.Start(runCtx)
	go m.run(runCtx, feed, ch)
	return nil
}

// install под mu.
func (m *Monitor) install(res seedResult) {
	m.rsi = res.rsi
	m.prev = res.prev
	m.curr = res.curr
	m.window = res.window
	m.seeded = res.until
}

func (m *Monitor) run(ctx context.Context, feed Feed, ch <-chan models.CandleTick) {
	defer close(m.done)

	for tick := range ch {
		m.handleCandle(ctx, tick)
	}

	err := feed.Err()
	if err == nil {
		return
	}

	m.mu.Lock()
	if m.state == models.StateStopped {
		m.mu.Unlock()
		return
	}
	m.state = models.StateFailed
	m.lastErr = err
	m.mu.Unlock()

	logger.Error("[WS] %s feed failed, monitor needs re-registration: %v", m.symbol, err)
	m.notify(ctx, "⛔️ %s: поток свечей упал окончательно (%v). Нужна повторная регистрация.", strings.ToUpper(m.symbol), err)
}

func (m *Monitor) handleCandle(ctx context.Context, tick models.CandleTick) {
	if !tick.Closed {
		return
	}

	m.procMu.Lock()
	defer m.procMu.Unlock()

	m.mu.Lock()
	if m.state != models.StateLive {
		m.mu.Unlock()
		return
	}
	if !tick.Start.After(m.seeded) {
		seeded := m.seeded
		m.mu.Unlock()
		logger.Debug("[WS] %s candle %s already in history (seeded until %s), skip", m.symbol,
			tick.Start.Format(time.RFC3339), seeded.Format(time.RFC3339))
		return
	}
	v, ok := m.rsi.Next(tick.Close)
	m.prev, m.curr = m.curr, strategy.ValueOf(v, ok)
	m.window = appendBounded(m.window, tick.Close, m.cfg.Period+m.deps.SeedMargin)

	prev, curr := m.prev, m.curr
	th := m.cfg
	inLong := m.inLong
	sig := models.Signal{
		Symbol:   m.symbol,
		Interval: m.interval,
		Price:    tick.Close,
		RSI:      v,
		Time:     tick.Start,
	}
	if m.buyLimit != nil {
		sig.BuyLimit = *m.buyLimit
	}
	entryMsg, exitMsg := m.entryMsg, m.exitMsg
	m.mu.Unlock()

	m.deps.Metrics.Candle(m.symbol, v, ok)
	m.deps.Health.TouchCandle(tick.End)
	logger.Debug("[WS] %s close=%.8f rsi=%s", m.symbol, tick.Close, fmtReading(curr))

	cross := strategy.Evaluate(prev, curr, th, inLong)
	if cross == models.CrossNone {
		return
	}

	sig.Crossing = cross
	sig.Comment = entryMsg
	if cross == models.CrossExit {
		sig.Comment = exitMsg
	}
	logger.Info("[SIG] %s %s rsi %.2f -> %.2f price=%.8f", m.symbol, cross, prev.Value, curr.Value, tick.Close)
	m.deps.Metrics.Signal(m.symbol, cross.String())

	// ордер, начатый до Stop, доводим до конца
	err := m.deps.Executor.Execute(context.WithoutCancel(ctx), sig)
	m.deps.Metrics.Order(m.symbol, string(cross.Side()), err)
	if err != nil {
		logger.Error("[ORDER] %s %s failed, position unchanged: %v", m.symbol, cross, err)
		m.notify(ctx, "❌ %s %s не исполнен: %v", strings.ToUpper(m.symbol), cross.AlertType(), err)
		return
	}

	m.mu.Lock()
	if m.state == models.StateStopped {
		m.mu.Unlock()
		logger.Warn("[ORDER] %s %s completed after stop, state not updated", m.symbol, cross)
		return
	}
	m.inLong = cross == models.CrossEnter
	m.mu.Unlock()

	now := time.Now().UTC()
	st := models.SymbolStatus{Symbol: m.symbol, InLong: cross == models.CrossEnter, UpdatedAt: now}
	if cross == models.CrossEnter {
		st.Status = models.StatusLong
		st.BuyTime = &now
	} else {
		st.Status = models.StatusFlat
		st.SellTime = &now
	}
	m.persist(st)
	m.notify(ctx, "✅ %s %s @ %.8f (RSI %.2f)", strings.ToUpper(m.symbol), cross.AlertType(), tick.Close, curr.Value)
}

// Stop идемпотентен. После возврата ни одна свеча состояние не меняет;
// ордер в полёте доработает и только залогируется.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state == models.StateStopped {
		m.mu.Unlock()
		return
	}
	m.state = models.StateStopped
	feed, cancel := m.feed, m.cancel
	m.feed, m.cancel = nil, nil
	m.window = nil
	m.prev, m.curr = strategy.Reading{}, strategy.Reading{}
	m.mu.Unlock()

	if feed != nil {
		feed.Stop()
	}
	if cancel != nil {
		cancel()
	}
	logger.Info("[REG] %s monitor stopped", m.symbol)
}

// Done закрывается, когда цикл свечей завершился.
func (m *Monitor) Done() <-chan struct{} { return m.done }

func (m *Monitor) Symbol() string { return m.symbol }

func (m *Monitor) State() models.MonitorState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Monitor) InLong() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inLong
}

func (m *Monitor) RsiConfig() models.RsiConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Messages - comment-токены входа и выхода.
func (m *Monitor) Messages() (entry, exit string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entryMsg, m.exitMsg
}

// Err - почему фид умер (FAILED), иначе nil.
func (m *Monitor) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Monitor) Summary() models.SymbolSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := models.SymbolSummary{
		Symbol:       m.symbol,
		Interval:     m.interval,
		InLong:       m.inLong,
		BuyLimit:     copyFloat(m.buyLimit),
		RsiConfig:    m.cfg,
		State:        m.state,
		EntryMessage: m.entryMsg,
		ExitMessage:  m.exitMsg,
	}
	if m.curr.Valid {
		v := m.curr.Value
		s.RSI = &v
	}
	return s
}

// SetStatus - ручная правка inLong/buyLimit без пересоздания монитора.
func (m *Monitor) SetStatus(patch models.StatusPatch) {
	m.mu.Lock()
	changed := false
	if patch.InLong != nil && *patch.InLong != m.inLong {
		m.inLong = *patch.InLong
		changed = true
	}
	if patch.BuyLimit != nil {
		m.buyLimit = copyFloat(patch.BuyLimit)
	}
	inLong := m.inLong
	m.mu.Unlock()

	if !changed {
		return
	}
	st := models.SymbolStatus{Symbol: m.symbol, Status: models.StatusFlat, InLong: inLong, UpdatedAt: time.Now().UTC()}
	if inLong {
		st.Status = models.StatusLong
	}
	m.persist(st)
}

// UpdateRsiConfig применяет патч порогов. Смена периода - пересев:
// аккумулятор RSI от периода зависит. Ошибка пересева оставляет старый конфиг.
func (m *Monitor) UpdateRsiConfig(ctx context.Context, patch models.RsiConfigPatch) (models.RsiConfig, error) {
	if err := patch.Validate(); err != nil {
		return models.RsiConfig{}, err
	}

	m.mu.Lock()
	next := patch.Apply(m.cfg)
	if next.Period == m.cfg.Period {
		m.cfg = next
		m.mu.Unlock()
		logger.Info("[REG] %s thresholds updated: entry=%.2f exit=%.2f", m.symbol, next.Entry, next.Exit)
		return next, nil
	}
	m.mu.Unlock()

	// свечи ждут, пока пересеемся
	m.procMu.Lock()
	defer m.procMu.Unlock()

	m.mu.Lock()
	if m.state == models.StateStopped {
		m.mu.Unlock()
		return models.RsiConfig{}, errors.Wrapf(ErrNotFound, "%s stopped", m.symbol)
	}
	prevState := m.state
	m.state = models.StateSeeding
	m.mu.Unlock()

	res, err := m.seed(ctx, next.Period)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == models.StateStopped {
		return models.RsiConfig{}, errors.Wrapf(ErrNotFound, "%s stopped", m.symbol)
	}
	// фид мог упасть, пока тянули историю: FAILED не перетираем
	if m.state == models.StateSeeding {
		m.state = prevState
	}
	if err != nil {
		return models.RsiConfig{}, err
	}
	m.install(res)
	m.cfg = patch.Apply(m.cfg)
	logger.Info("[SEED] %s reseeded for period %d", m.symbol, m.cfg.Period)
	return m.cfg, nil
}

func (m *Monitor) persist(st models.SymbolStatus) {
	if m.deps.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.deps.Store.Upsert(ctx, st); err != nil {
		logger.Warn("[REG] %s persist status %s: %v", m.symbol, st.Status, err)
	}
}

func (m *Monitor) notify(ctx context.Context, format string, args ...any) {
	if m.deps.Notifier == nil {
		return
	}
	m.deps.Notifier.SendService(context.WithoutCancel(ctx), format, args...)
}

func fmtReading(r strategy.Reading) string {
	if !r.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

func appendBounded(w []float64, v float64, limit int) []float64 {
	w = append(w, v)
	if limit > 0 && len(w) > limit {
		w = append(w[:0:0], w[len(w)-limit:]...)
	}
	return w
}

func tail(xs []float64, n int) []float64 {
	if n <= 0 || len(xs) <= n {
		return append([]float64(nil), xs...)
	}
	return append([]float64(nil), xs[len(xs)-n:]...)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
