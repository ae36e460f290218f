package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rsi_bot/internal/models"

	"github.com/gorilla/websocket"
)

func klineFrame(closep string, closed bool) string {
	return fmt.Sprintf(`{"e":"kline","E":1,"s":"ETHUSDT","k":{"t":1000,"T":60999,"s":"ETHUSDT","i":"1m",`+
		`"o":"1.0","c":"%s","h":"2.0","l":"0.5","v":"10","x":%t}}`, closep, closed)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

type failingDialer struct {
	dials atomic.Int32
}

func (d *failingDialer) DialContext(ctx context.Context, _ string, _ http.Header) (*websocket.Conn, *http.Response, error) {
	d.dials.Add(1)
	return nil, nil, errors.New("connection refused")
}

func recvTick(t *testing.T, ch <-chan models.CandleTick) models.CandleTick {
	t.Helper()
	select {
	case tick, ok := <-ch:
		if !ok {
			t.Fatal("feed channel closed unexpectedly")
		}
		return tick
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for candle")
	}
	return models.CandleTick{}
}

func waitClosed(t *testing.T, ch <-chan models.CandleTick) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("timeout waiting for feed to close")
		}
	}
}

func TestFeedForwardsOnlyClosedCandles(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/ethusdt@kline_1m" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range []string{
			klineFrame("100.5", false),
			`{"result":null,"id":1}`,
			klineFrame("101.5", true),
			klineFrame("102.0", false),
			klineFrame("103.5", true),
		} {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
		}
		// держим соединение, пока клиент не закроет
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	var mu sync.Mutex
	var states []State
	f := NewFeed("ETHUSDT", "1m", Config{
		BaseURL:     wsURL(srv) + "/ws",
		BaseDelay:   time.Millisecond,
		MaxAttempts: 5,
		ReadTimeout: 5 * time.Second,
	}, &websocket.Dialer{}, Hooks{
		OnState: func(_ string, _, to State) {
			mu.Lock()
			states = append(states, to)
			mu.Unlock()
		},
	})

	ch := f.Start(context.Background())
	first := recvTick(t, ch)
	second := recvTick(t, ch)
	if first.Close != 101.5 || second.Close != 103.5 {
		t.Fatalf("expected closes 101.5 and 103.5, got %v and %v", first.Close, second.Close)
	}
	if first.Symbol != "ethusdt" || first.Interval != "1m" || !first.Closed {
		t.Fatalf("unexpected tick %+v", first)
	}
	if f.State() != StateConnected {
		t.Fatalf("expected CONNECTED, got %s", f.State())
	}

	f.Stop()
	waitClosed(t, ch)
	if f.State() != StateStopped {
		t.Fatalf("expected STOPPED, got %s", f.State())
	}
	if f.Err() != nil {
		t.Fatalf("voluntary stop must not report an error, got %v", f.Err())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) < 3 || states[0] != StateConnecting || states[1] != StateConnected {
		t.Fatalf("unexpected state transitions %v", states)
	}
}

func TestFeedGivesUpAfterMaxReconnects(t *testing.T) {
	d := &failingDialer{}
	var reconnects []time.Duration
	f := NewFeed("btcusdt", "5m", Config{
		BaseURL:     "ws://127.0.0.1:1/ws",
		BaseDelay:   time.Millisecond,
		MaxAttempts: 5,
	}, d, Hooks{
		OnReconnect: func(_ string, attempt int, delay time.Duration) {
			reconnects = append(reconnects, delay)
		},
	})

	waitClosed(t, f.Start(context.Background()))

	if got := d.dials.Load(); got != 6 {
		t.Fatalf("expected 1 dial + 5 reconnects, got %d dials", got)
	}
	if f.State() != StateFailed {
		t.Fatalf("expected FAILED, got %s", f.State())
	}
	if !errors.Is(f.Err(), ErrReconnectExhausted) {
		t.Fatalf("expected ErrReconnectExhausted, got %v", f.Err())
	}
	for i, delay := range reconnects {
		if want := time.Duration(i+1) * time.Millisecond; delay != want {
			t.Fatalf("reconnect %d: expected linear delay %s, got %s", i+1, want, delay)
		}
	}
	if len(reconnects) != 5 {
		t.Fatalf("expected 5 scheduled reconnects, got %d", len(reconnects))
	}

	// Stop после FAILED - no-op
	f.Stop()
	if d.dials.Load() != 6 {
		t.Fatal("Stop must not trigger new dials")
	}
}

func TestFeedStopIsIdempotent(t *testing.T) {
	d := &failingDialer{}
	f := NewFeed("btcusdt", "5m", Config{
		BaseURL:     "ws://127.0.0.1:1/ws",
		BaseDelay:   time.Hour,
		MaxAttempts: 5,
	}, d, Hooks{})

	ch := f.Start(context.Background())
	deadline := time.Now().Add(5 * time.Second)
	for d.dials.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	f.Stop()
	f.Stop()
	waitClosed(t, ch)

	if got := d.dials.Load(); got != 1 {
		t.Fatalf("expected a single dial, got %d", got)
	}
	if f.State() != StateStopped {
		t.Fatalf("expected STOPPED, got %s", f.State())
	}
	if f.Err() != nil {
		t.Fatalf("unexpected error %v", f.Err())
	}

	// одноразовый
	waitClosed(t, f.Start(context.Background()))
	if d.dials.Load() != 1 {
		t.Fatal("Start after Stop must not dial")
	}
}

func TestFeedStopBeforeStart(t *testing.T) {
	d := &failingDialer{}
	f := NewFeed("btcusdt", "5m", Config{BaseURL: "ws://127.0.0.1:1/ws"}, d, Hooks{})
	f.Stop()
	f.Stop()
	select {
	case <-f.Done():
	default:
		t.Fatal("Done must be closed after Stop")
	}
	if f.State() != StateStopped {
		t.Fatalf("expected STOPPED, got %s", f.State())
	}
}

func TestFeedSuccessfulConnectResetsAttempts(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := conns.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(klineFrame(fmt.Sprintf("%d", 100+n), true)))
		// рвём соединение сразу после свечи
		_ = conn.Close()
	}))
	defer srv.Close()

	f := NewFeed("ethusdt", "1m", Config{
		BaseURL:     wsURL(srv),
		BaseDelay:   time.Millisecond,
		MaxAttempts: 1,
		ReadTimeout: 5 * time.Second,
	}, &websocket.Dialer{}, Hooks{})

	ch := f.Start(context.Background())
	// без сброса счётчика было бы не больше двух соединений
	for i := 0; i < 4; i++ {
		recvTick(t, ch)
	}
	f.Stop()
	waitClosed(t, ch)

	if f.State() != StateStopped {
		t.Fatalf("expected STOPPED, got %s", f.State())
	}
}

func TestFeedContextCancelStops(t *testing.T) {
	d := &failingDialer{}
	f := NewFeed("btcusdt", "5m", Config{
		BaseURL:     "ws://127.0.0.1:1/ws",
		BaseDelay:   time.Hour,
		MaxAttempts: 5,
	}, d, Hooks{})

	ctx, cancel := context.WithCancel(context.Background())
	ch := f.Start(ctx)
	cancel()
	waitClosed(t, ch)
	if f.State() != StateStopped {
		t.Fatalf("expected STOPPED, got %s", f.State())
	}
}

func TestParseKline(t *testing.T) {
	tick, ok, err := parseKline([]byte(klineFrame("42.5", true)))
	if err != nil || !ok {
		t.Fatalf("expected closed candle, got ok=%v err=%v", ok, err)
	}
	if tick.Close != 42.5 || tick.Start.UnixMilli() != 1000 || tick.End.UnixMilli() != 60999 {
		t.Fatalf("unexpected tick %+v", tick)
	}

	if _, ok, err := parseKline([]byte(klineFrame("42.5", false))); ok || err != nil {
		t.Fatalf("open candle must be skipped, got ok=%v err=%v", ok, err)
	}
	if _, _, err := parseKline([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, _, err := parseKline([]byte(klineFrame("abc", true))); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseKlineFullBinanceFrame(t *testing.T) {
	frame := `{"e":"kline","E":1672515782136,"s":"BNBBTC","k":{"t":1672515780000,"T":1672515839999,` +
		`"s":"BNBBTC","i":"1m","f":100,"L":200,"o":"0.0010","c":"0.0020","h":"0.0025","l":"0.0015",` +
		`"v":"1000","n":100,"x":true,"q":"1.0000","V":"500","Q":"0.500","B":"123456"}}`

	tick, ok, err := parseKline([]byte(frame))
	if err != nil || !ok {
		t.Fatalf("expected closed candle, got ok=%v err=%v", ok, err)
	}
	if tick.Close != 0.002 || tick.Low != 0.0015 || tick.High != 0.0025 {
		t.Fatalf("unexpected prices %+v", tick)
	}
	// V (taker base volume) не должен перетирать v
	if tick.Volume != 1000 {
		t.Fatalf("volume = %v, want 1000", tick.Volume)
	}
	if tick.Start.UnixMilli() != 1672515780000 || tick.End.UnixMilli() != 1672515839999 || tick.Interval != "1m" {
		t.Fatalf("unexpected bounds %+v", tick)
	}
}
