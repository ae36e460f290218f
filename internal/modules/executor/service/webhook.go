package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rsi_bot/internal/models"
	"rsi_bot/internal/modules/config"
	metrics "rsi_bot/internal/modules/metrics/service"
	"rsi_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
)

// Sender доставляет comment-токен в релей алертов: text/plain или form comment=<token>.
type Sender struct {
	url    string
	format string
	http   *http.Client
	m      *metrics.Metrics
}

func NewSender(endpoint, format string, timeout time.Duration, m *metrics.Metrics) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if format == "" {
		format = config.WebhookFormatText
	}
	return &Sender{
		url:    endpoint,
		format: format,
		http:   &http.Client{Timeout: timeout},
		m:      m,
	}
}

func NewSenderFromConfig(cfg *config.Config, m *metrics.Metrics) *Sender {
	return NewSender(cfg.Webhook.URL, cfg.Webhook.Format, cfg.Webhook.Timeout, m)
}

// Send - одна попытка, без ретраев. Не-2xx считается ошибкой.
func (s *Sender) Send(ctx context.Context, p models.AlertPayload) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "webhook.Send")
	defer func() {
		if err != nil {
			span.SetTag("error", true)
		}
		span.Finish()
		s.m.Webhook(err)
	}()

	if p.Comment == "" {
		return fmt.Errorf("%w: empty comment", models.ErrValidation)
	}

	var (
		body        io.Reader
		contentType string
	)
	switch s.format {
	case config.WebhookFormatForm:
		body = strings.NewReader(url.Values{"comment": {p.Comment}}.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		body = strings.NewReader(p.Comment)
		contentType = "text/plain"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
	}

	logged, _ := sonic.MarshalString(p)
	logger.Info("[HOOK] sent %s status=%d body=%q", logged, resp.StatusCode, string(respBody))
	return nil
}

// WebhookExecutor - режим webhook: алерт уходит как уведомление,
// его доставка на позицию не влияет, поэтому Execute всегда nil.
type WebhookExecutor struct {
	sender *Sender
}

func NewWebhookExecutor(sender *Sender) *WebhookExecutor {
	return &WebhookExecutor{sender: sender}
}

func (w *WebhookExecutor) Execute(ctx context.Context, sig models.Signal) error {
	p := PayloadOf(sig)
	if err := w.sender.Send(ctx, p); err != nil {
		logger.Error("[HOOK] %s %s delivery failed: %v", p.Symbol, p.Type, err)
	}
	return nil
}

// PayloadOf - алерт для релея из сигнала.
func PayloadOf(sig models.Signal) models.AlertPayload {
	return models.AlertPayload{
		Symbol:  strings.ToUpper(sig.Symbol),
		Type:    sig.Crossing.AlertType(),
		Price:   sig.Price,
		Time:    sig.Time.UnixMilli(),
		Comment: sig.Comment,
	}
}
