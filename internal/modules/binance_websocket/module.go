package binance_websocket

import (
	"time"

	"rsi_bot/internal/modules/binance_websocket/service"
	"rsi_bot/internal/modules/config"
	health "rsi_bot/internal/modules/health/service"
	metrics "rsi_bot/internal/modules/metrics/service"
	"rsi_bot/pkg/logger"

	"go.uber.org/fx"
)

// NewFactory собирает фабрику фидов и вешает на неё health/метрики.
func NewFactory(cfg *config.Config, st *health.State, m *metrics.Metrics) *service.Factory {
	hooks := service.Hooks{
		OnState: func(symbol string, from, to service.State) {
			switch {
			case to == service.StateConnected:
				st.FeedConnected(1)
				m.FeedConnected(1)
			case from == service.StateConnected:
				st.FeedConnected(-1)
				m.FeedConnected(-1)
			}
			if to == service.StateFailed {
				m.FeedFailed(symbol)
			}
			logger.Debug("[WS] %s: %s -> %s", symbol, from, to)
		},
		OnReconnect: func(symbol string, attempt int, delay time.Duration) {
			m.Reconnect(symbol)
		},
	}
	return service.NewFactory(service.ConfigFrom(cfg), nil, hooks)
}

// Module поднимает фабрику стримов свечей Binance.
func Module() fx.Option {
	return fx.Module("binance_websocket",
		fx.Provide(
			NewFactory,
		),
	)
}
