package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"rsi_bot/internal/models"
	"rsi_bot/internal/modules/config"
	health "rsi_bot/internal/modules/health/service"
	"rsi_bot/internal/runner"
)

type stubHistory struct {
	broken map[string]bool
}

func (h stubHistory) Klines(_ context.Context, symbol, interval string, limit int) ([]models.CandleTick, error) {
	if h.broken[symbol] {
		return nil, errors.New("invalid symbol")
	}
	out := make([]models.CandleTick, limit)
	for i := range out {
		out[i] = models.CandleTick{Close: float64(100 + i%2), Closed: true}
	}
	return out, nil
}

type stubFeed struct {
	ch   chan models.CandleTick
	once sync.Once
}

func (f *stubFeed) Start(context.Context) <-chan models.CandleTick { return f.ch }
func (f *stubFeed) Stop()                                          { f.once.Do(func() { close(f.ch) }) }
func (f *stubFeed) Err() error                                     { return nil }

type nopExecutor struct{}

func (nopExecutor) Execute(context.Context, models.Signal) error { return nil }

type memStore struct {
	mu   sync.Mutex
	data map[string]models.SymbolStatus
}

func (s *memStore) Upsert(_ context.Context, st models.SymbolStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[st.Symbol] = st
	return nil
}

func (s *memStore) Get(_ context.Context, symbol string) (models.SymbolStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[symbol]
	return st, ok, nil
}

type recNotifier struct{ msgs []string }

func (n *recNotifier) SendService(_ context.Context, format string, args ...any) {
	n.msgs = append(n.msgs, fmt.Sprintf(format, args...))
}

func newRegistry(t *testing.T, store runner.StatusStore, broken map[string]bool) *runner.Registry {
	t.Helper()
	reg := runner.NewRegistry(context.Background(), runner.Deps{
		History:    stubHistory{broken: broken},
		Feeds:      func(string, string) runner.Feed { return &stubFeed{ch: make(chan models.CandleTick)} },
		Executor:   nopExecutor{},
		Store:      store,
		SeedMargin: 10,
	}, models.RsiConfig{Period: 7, Entry: 65, Exit: 20}, nil)
	t.Cleanup(reg.StopAll)
	return reg
}

func boolPtr(v bool) *bool { return &v }

func TestWarmupRegistersConfiguredSymbols(t *testing.T) {
	store := &memStore{data: map[string]models.SymbolStatus{}}
	reg := newRegistry(t, store, map[string]bool{"xxxusdt": true})
	state := health.NewState()
	note := &recNotifier{}

	w := newWarmuper(reg, note, state, []config.SymbolConfig{
		{Symbol: "ethusdt", Interval: "5m"},
		{Symbol: "xxxusdt", Interval: "5m"},
		{Symbol: "btcusdt", Interval: "1h", InLong: boolPtr(true)},
	})
	started, failed := w.Warmup(context.Background())

	if started != 2 || len(failed) != 1 || failed[0] != "XXXUSDT" {
		t.Fatalf("started = %d failed = %v", started, failed)
	}
	if reg.Len() != 2 {
		t.Fatalf("registry len = %d", reg.Len())
	}
	if !state.Ready() {
		t.Fatal("service must be ready after warmup")
	}
	if len(note.msgs) != 1 {
		t.Fatalf("notifications = %v", note.msgs)
	}
	if m, _ := reg.Get("btcusdt"); !m.InLong() {
		t.Fatal("in_long from config must be applied")
	}
}

func TestWarmupRecoversPosition(t *testing.T) {
	store := &memStore{data: map[string]models.SymbolStatus{
		"ethusdt": {Symbol: "ethusdt", Status: models.StatusLong, InLong: true},
		"solusdt": {Symbol: "solusdt", Status: models.StatusRemoved, InLong: true},
		"adausdt": {Symbol: "adausdt", Status: models.StatusFlat, InLong: false},
	}}
	reg := newRegistry(t, store, nil)

	w := newWarmuper(reg, nil, nil, []config.SymbolConfig{
		{Symbol: "ethusdt", Interval: "5m"},
		{Symbol: "solusdt", Interval: "5m"},
		{Symbol: "adausdt", Interval: "5m", InLong: boolPtr(true)},
	})
	if started, _ := w.Warmup(context.Background()); started != 3 {
		t.Fatalf("started = %d", started)
	}

	want := map[string]bool{"ethusdt": true, "solusdt": false, "adausdt": true}
	for sym, inLong := range want {
		m, ok := reg.Get(sym)
		if !ok || m.InLong() != inLong {
			t.Fatalf("%s: inLong = %t, want %t", sym, ok && m.InLong(), inLong)
		}
	}
}

func TestWarmupEmpty(t *testing.T) {
	state := health.NewState()
	w := newWarmuper(newRegistry(t, nil, nil), nil, state, nil)
	if started, failed := w.Warmup(context.Background()); started != 0 || failed != nil {
		t.Fatalf("started = %d failed = %v", started, failed)
	}
	if !state.Ready() {
		t.Fatal("empty config is still ready")
	}
}
