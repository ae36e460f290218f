package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - prometheus-метрики бота. Все методы безопасны на nil.
type Metrics struct {
	reg *prometheus.Registry

	CandlesTotal   *prometheus.CounterVec // symbol
	SignalsTotal   *prometheus.CounterVec // symbol, type
	OrdersTotal    *prometheus.CounterVec // symbol, side, result
	WebhooksTotal  *prometheus.CounterVec // result
	FeedReconnects *prometheus.CounterVec // symbol
	FeedFailures   *prometheus.CounterVec // symbol
	SeedDuration   prometheus.Histogram
	MonitorsActive prometheus.Gauge
	FeedsConnected prometheus.Gauge
	RsiValue       *prometheus.GaugeVec // symbol
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		CandlesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsibot_candles_total",
			Help: "Closed candles processed per symbol",
		}, []string{"symbol"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsibot_signals_total",
			Help: "Threshold crossings detected",
		}, []string{"symbol", "type"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsibot_orders_total",
			Help: "Signal executions by result",
		}, []string{"symbol", "side", "result"}),
		WebhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsibot_webhooks_total",
			Help: "Webhook deliveries to the alert relay",
		}, []string{"result"}),
		FeedReconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsibot_feed_reconnects_total",
			Help: "Scheduled websocket reconnects",
		}, []string{"symbol"}),
		FeedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsibot_feed_failures_total",
			Help: "Feeds that exhausted reconnect attempts",
		}, []string{"symbol"}),
		SeedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rsibot_seed_duration_seconds",
			Help:    "Historical seeding latency",
			Buckets: prometheus.DefBuckets,
		}),
		MonitorsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsibot_monitors_active",
			Help: "Registered symbol monitors",
		}),
		FeedsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsibot_feeds_connected",
			Help: "Websocket feeds currently connected",
		}),
		RsiValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rsibot_rsi_value",
			Help: "Last RSI value per symbol",
		}, []string{"symbol"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CandlesTotal, m.SignalsTotal, m.OrdersTotal, m.WebhooksTotal,
		m.FeedReconnects, m.FeedFailures, m.SeedDuration,
		m.MonitorsActive, m.FeedsConnected, m.RsiValue,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Candle(symbol string, rsi float64, valid bool) {
	if m == nil {
		return
	}
	m.CandlesTotal.WithLabelValues(symbol).Inc()
	if valid {
		m.RsiValue.WithLabelValues(symbol).Set(rsi)
	}
}

func (m *Metrics) Signal(symbol, typ string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(symbol, typ).Inc()
}

func (m *Metrics) Order(symbol, side string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.OrdersTotal.WithLabelValues(symbol, side, result).Inc()
}

func (m *Metrics) Webhook(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.WebhooksTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) Reconnect(symbol string) {
	if m == nil {
		return
	}
	m.FeedReconnects.WithLabelValues(symbol).Inc()
}

func (m *Metrics) FeedFailed(symbol string) {
	if m == nil {
		return
	}
	m.FeedFailures.WithLabelValues(symbol).Inc()
}

func (m *Metrics) FeedConnected(delta float64) {
	if m == nil {
		return
	}
	m.FeedsConnected.Add(delta)
}

func (m *Metrics) Seeded(seconds float64) {
	if m == nil {
		return
	}
	m.SeedDuration.Observe(seconds)
}

func (m *Metrics) Monitors(n int) {
	if m == nil {
		return
	}
	m.MonitorsActive.Set(float64(n))
}

// Forget убирает серии символа после удаления монитора.
func (m *Metrics) Forget(symbol string) {
	if m == nil {
		return
	}
	m.RsiValue.DeleteLabelValues(symbol)
}
