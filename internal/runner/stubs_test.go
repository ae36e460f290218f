package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rsi_bot/internal/models"
	"rsi_bot/internal/modules/config"
)

// historyStart - начало первой свечи, которую отдаёт stubHistory
var historyStart = time.Unix(1700000000, 0)

type stubHistory struct {
	mu     sync.Mutex
	closes []float64
	err    error
	limits []int
	block  chan struct{}
}

func (h *stubHistory) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.CandleTick, error) {
	h.mu.Lock()
	h.limits = append(h.limits, limit)
	closes := append([]float64(nil), h.closes...)
	err := h.err
	block := h.block
	h.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if len(closes) > limit {
		closes = closes[len(closes)-limit:]
	}
	out := make([]models.CandleTick, 0, len(closes))
	start := historyStart
	for i, c := range closes {
		out = append(out, models.CandleTick{
			Symbol: symbol, Interval: interval, Close: c, Closed: true,
			Start: start.Add(time.Duration(i) * time.Minute),
			End:   start.Add(time.Duration(i+1) * time.Minute),
		})
	}
	return out, nil
}

func (h *stubHistory) calls() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.limits...)
}

// hold: следующие Klines ждут, пока канал не закроют
func (h *stubHistory) hold() chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.block = make(chan struct{})
	return h.block
}

// waitCalls ждёт n-й запрос истории
func (h *stubHistory) waitCalls(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for len(h.calls()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("history calls = %d, want %d", len(h.calls()), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (h *stubHistory) set(closes []float64, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closes, h.err = closes, err
}

type stubFeed struct {
	ch    chan models.CandleTick
	once  sync.Once
	stops atomic.Int32
	err   error
}

func newStubFeed() *stubFeed {
	return &stubFeed{ch: make(chan models.CandleTick)}
}

func (f *stubFeed) Start(ctx context.Context) <-chan models.CandleTick { return f.ch }

func (f *stubFeed) Stop() {
	f.stops.Add(1)
	f.once.Do(func() { close(f.ch) })
}

func (f *stubFeed) Err() error { return f.err }

// fail - как будто фид исчерпал реконнекты
func (f *stubFeed) fail(err error) {
	f.err = err
	f.once.Do(func() { close(f.ch) })
}

type stubExecutor struct {
	mu   sync.Mutex
	sigs []models.Signal
	err  error

	entered chan struct{}
	release chan struct{}
}

func (e *stubExecutor) Execute(ctx context.Context, sig models.Signal) error {
	e.mu.Lock()
	e.sigs = append(e.sigs, sig)
	err := e.err
	entered, release := e.entered, e.release
	e.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return err
}

func (e *stubExecutor) signals() []models.Signal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.Signal(nil), e.sigs...)
}

type memStore struct {
	mu   sync.Mutex
	data map[string]models.SymbolStatus
	log  []models.SymbolStatus
}

func newMemStore() *memStore {
	return &memStore{data: map[string]models.SymbolStatus{}}
}

func (s *memStore) Upsert(ctx context.Context, st models.SymbolStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[st.Symbol] = st
	s.log = append(s.log, st)
	return nil
}

func (s *memStore) Get(ctx context.Context, symbol string) (models.SymbolStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[symbol]
	return st, ok, nil
}

func (s *memStore) status(symbol string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[symbol].Status
}

type recNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recNotifier) SendService(ctx context.Context, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, fmt.Sprintf(format, args...))
}

func (n *recNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

type harness struct {
	t     *testing.T
	hist  *stubHistory
	exec  *stubExecutor
	store *memStore
	note  *recNotifier
	reg   *Registry

	mu    sync.Mutex
	feeds []*stubFeed
}

const testMargin = 10

// oscillating - RSI около 50 после прогрева
func oscillating(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(100 + i%2)
	}
	return out
}

func newHarness(t *testing.T, alerts config.Alerts) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		hist:  &stubHistory{closes: oscillating(7 + testMargin)},
		exec:  &stubExecutor{},
		store: newMemStore(),
		note:  &recNotifier{},
	}
	h.reg = NewRegistry(context.Background(), Deps{
		History: h.hist,
		Feeds: func(symbol, interval string) Feed {
			f := newStubFeed()
			h.mu.Lock()
			h.feeds = append(h.feeds, f)
			h.mu.Unlock()
			return f
		},
		Executor:   h.exec,
		Store:      h.store,
		Notifier:   h.note,
		SeedMargin: testMargin,
	}, models.RsiConfig{Period: 7, Entry: 65, Exit: 20}, alerts)
	t.Cleanup(h.reg.StopAll)
	return h
}

func (h *harness) feed(i int) *stubFeed {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.feeds[i]
}

func (h *harness) feedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds)
}

// push отдаёт свечу; возврат значит, что предыдущая уже обработана.
func (h *harness) push(f *stubFeed, closes ...float64) {
	h.t.Helper()
	for _, c := range closes {
		select {
		case f.ch <- models.CandleTick{Close: c, Closed: true, Start: time.Now(), End: time.Now()}:
		case <-time.After(5 * time.Second):
			h.t.Fatalf("monitor did not consume candle %v", c)
		}
	}
}

// flush - незакрытая свеча: гарантирует, что все закрытые до неё обработаны.
func (h *harness) flush(f *stubFeed) {
	h.t.Helper()
	select {
	case f.ch <- models.CandleTick{Close: 1, Closed: false}:
	case <-time.After(5 * time.Second):
		h.t.Fatal("monitor did not consume flush candle")
	}
}

func ptrBool(v bool) *bool        { return &v }
func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
