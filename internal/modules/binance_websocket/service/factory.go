package service

import (
	"rsi_bot/internal/modules/config"

	"github.com/gorilla/websocket"
)

// Factory создаёт фиды с общими настройками и наблюдателями.
type Factory struct {
	cfg    Config
	dialer Dialer
	hooks  Hooks
}

func NewFactory(cfg Config, dialer Dialer, hooks Hooks) *Factory {
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	}
	return &Factory{cfg: cfg, dialer: dialer, hooks: hooks}
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:          cfg.Binance.WSURL,
		BaseDelay:        cfg.Feed.ReconnectBaseDelay,
		MaxAttempts:      cfg.Feed.MaxReconnectAttempts,
		ReadTimeout:      cfg.Feed.ReadTimeout,
		HandshakeTimeout: cfg.Feed.HandshakeTimeout,
	}
}

func (f *Factory) New(symbol, interval string) *Feed {
	return NewFeed(symbol, interval, f.cfg, f.dialer, f.hooks)
}
