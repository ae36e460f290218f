package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rsi_bot/internal/modules/config"

	"github.com/adshao/go-binance/v2"
	"github.com/opentracing/opentracing-go"
	"golang.org/x/time/rate"
)

type Options struct {
	APIKey    string
	APISecret string
	BaseURL   string
	RateLimit float64
	RateBurst int
}

// Client - тонкая обёртка над go-binance: лимитер, трейсинг, перевод в наши модели.
type Client struct {
	api     *binance.Client
	limiter *rate.Limiter
	now     func() time.Time
}

func NewClient(opts Options) *Client {
	api := binance.NewClient(opts.APIKey, opts.APISecret)
	if opts.BaseURL != "" {
		api.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		api:     api,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(Options{
		APIKey:    cfg.Binance.APIKey,
		APISecret: cfg.Binance.APISecret,
		BaseURL:   cfg.Binance.RestURL,
		RateLimit: cfg.Binance.RateLimit,
		RateBurst: cfg.Binance.RateBurst,
	})
}

// begin ждёт лимитер и открывает span; finish обязательно вызвать.
func (c *Client) begin(ctx context.Context, op string) (context.Context, func(err error), error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "binance."+op)
	finish := func(err error) {
		if err != nil {
			span.SetTag("error", true)
			span.LogKV("error.message", err.Error())
		}
		span.Finish()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		finish(err)
		return ctx, nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return ctx, finish, nil
}
