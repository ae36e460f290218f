package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"
	"rsi_bot/pkg/logger"

	"github.com/gorilla/websocket"
)

// ErrReconnectExhausted - фид исчерпал попытки переподключения, дальше только руками.
var ErrReconnectExhausted = errors.New("feed reconnect attempts exhausted")

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateStopped:
		return "STOPPED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Dialer - то, что умеет *websocket.Dialer; в тестах подменяем.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

type Config struct {
	BaseURL          string // wss://stream.binance.com:9443/ws
	BaseDelay        time.Duration
	MaxAttempts      int
	ReadTimeout      time.Duration
	HandshakeTimeout time.Duration
}

// Hooks - наблюдатели за фидом (health, метрики). Любой может быть nil.
type Hooks struct {
	OnState     func(symbol string, from, to State)
	OnReconnect func(symbol string, attempt int, delay time.Duration)
}

// Feed - одна подписка на закрытые свечи symbol@kline_interval.
// Переподключается с линейной задержкой attempt*BaseDelay; после
// MaxAttempts неудачных переподключений подряд уходит в FAILED.
type Feed struct {
	symbol   string
	interval string
	url      string

	cfg    Config
	dialer Dialer
	hooks  Hooks

	mu       sync.Mutex
	state    State
	attempts int
	conn     *websocket.Conn
	err      error
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewFeed(symbol, interval string, cfg Config, dialer Dialer, hooks Hooks) *Feed {
	sym := helper.NormSymbol(symbol)
	tf := helper.NormTF(interval)
	return &Feed{
		symbol:   sym,
		interval: tf,
		url:      fmt.Sprintf("%s/%s@kline_%s", strings.TrimRight(cfg.BaseURL, "/"), sym, tf),
		cfg:      cfg,
		dialer:   dialer,
		hooks:    hooks,
		done:     make(chan struct{}),
	}
}

func (f *Feed) URL() string { return f.url }

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err - ErrReconnectExhausted (обёрнутый) после FAILED, иначе nil.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Done закрывается, когда цикл фида завершён.
func (f *Feed) Done() <-chan struct{} { return f.done }

// Start запускает цикл; канал закрывается после Stop, отмены ctx или FAILED.
// Feed одноразовый: повторный Start (или Start после Stop) второй цикл не
// поднимает и отдаёт уже закрытый канал.
func (f *Feed) Start(ctx context.Context) <-chan models.CandleTick {
	f.mu.Lock()
	if f.started || f.stopped {
		f.mu.Unlock()
		closed := make(chan models.CandleTick)
		close(closed)
		return closed
	}
	f.started = true
	ctx, f.cancel = context.WithCancel(ctx)
	f.mu.Unlock()

	out := make(chan models.CandleTick)
	go f.run(ctx, out)
	return out
}

// Stop идемпотентен: закрывает соединение, отменяет ожидание
// реконнекта и ждёт выхода цикла.
func (f *Feed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	started := f.started
	if f.cancel != nil {
		f.cancel()
	}
	if f.conn != nil {
		_ = f.conn.Close()
	}
	f.mu.Unlock()

	if started {
		<-f.done
	} else {
		f.setState(StateStopped)
		close(f.done)
	}
}

func (f *Feed) run(ctx context.Context, out chan<- models.CandleTick) {
	defer close(f.done)
	defer close(out)

	for {
		if f.isStopped(ctx) {
			f.setState(StateStopped)
			return
		}

		f.setState(StateConnecting)
		conn, err := f.dial(ctx)
		if err == nil {
			if !f.attach(conn) {
				_ = conn.Close()
				f.setState(StateStopped)
				return
			}
			logger.Info("[WS] %s connected", f.url)
			err = f.readLoop(ctx, conn, out)
			f.detach(conn)
		}

		if f.isStopped(ctx) {
			f.setState(StateStopped)
			logger.Info("[WS] %s stopped", f.url)
			return
		}
		f.setState(StateDisconnected)

		f.mu.Lock()
		if f.attempts >= f.cfg.MaxAttempts {
			f.err = fmt.Errorf("%w: %s after %d reconnects: %v", ErrReconnectExhausted, f.symbol, f.attempts, err)
			f.mu.Unlock()
			f.setState(StateFailed)
			logger.Error("[WS] %s failed: %v", f.url, err)
			return
		}
		f.attempts++
		attempt := f.attempts
		f.mu.Unlock()

		delay := time.Duration(attempt) * f.cfg.BaseDelay
		logger.Warn("[WS] %s disconnected: %v; reconnect %d/%d in %s", f.url, err, attempt, f.cfg.MaxAttempts, delay)
		if f.hooks.OnReconnect != nil {
			f.hooks.OnReconnect(f.symbol, attempt, delay)
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			f.setState(StateStopped)
			return
		case <-t.C:
		}
	}
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	if f.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.HandshakeTimeout)
		defer cancel()
	}
	conn, resp, err := f.dialer.DialContext(ctx, f.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

// attach фиксирует соединение и сбрасывает счётчик попыток.
// false - Stop успел раньше, соединение надо закрыть.
func (f *Feed) attach(conn *websocket.Conn) bool {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return false
	}
	f.conn = conn
	f.attempts = 0
	f.mu.Unlock()

	f.setState(StateConnected)
	return true
}

func (f *Feed) detach(conn *websocket.Conn) {
	f.mu.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.mu.Unlock()
	_ = conn.Close()
}

func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- models.CandleTick) error {
	extend := func() {
		if f.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
		}
	}
	// Binance шлёт ping каждые ~20s; отвечаем pong и продлеваем дедлайн
	conn.SetPingHandler(func(data string) error {
		extend()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})

	for {
		extend()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		tick, ok, err := parseKline(msg)
		if err != nil {
			logger.Debug("[WS] %s bad frame: %v", f.url, err)
			continue
		}
		if !ok {
			continue // ждём закрытую свечу
		}
		tick.Symbol = f.symbol
		tick.Interval = f.interval

		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Feed) isStopped(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped || ctx.Err() != nil
}

func (f *Feed) setState(to State) {
	f.mu.Lock()
	from := f.state
	f.state = to
	f.mu.Unlock()

	if from != to && f.hooks.OnState != nil {
		f.hooks.OnState(f.symbol, from, to)
	}
}
