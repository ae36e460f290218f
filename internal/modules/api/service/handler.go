package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rsi_bot/internal/models"
	"rsi_bot/internal/runner"
	"rsi_bot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AlertSender - ручной прогон вебхука.
type AlertSender interface {
	Send(ctx context.Context, p models.AlertPayload) error
}

// OrderPlacer - ручной ордер в обход сигналов.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error)
}

type Handler struct {
	registry *runner.Registry
	alerts   AlertSender
	orders   OrderPlacer
}

func New(registry *runner.Registry, alerts AlertSender, orders OrderPlacer) *Handler {
	return &Handler{
		registry: registry,
		alerts:   alerts,
		orders:   orders,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/symbols", h.CreateSymbol)
	r.GET("/symbols", h.ListSymbols)
	r.DELETE("/symbols/:symbol", h.DeleteSymbol)
	r.PATCH("/symbols/:symbol/status", h.PatchStatus)
	r.PATCH("/symbols/:symbol/rsi-config", h.PatchSymbolRsiConfig)

	r.GET("/rsi-config", h.GetRsiConfig)
	r.PATCH("/rsi-config", h.PatchRsiConfig)

	r.POST("/webhook/:symbol", h.TriggerWebhook)
	r.POST("/order", h.PlaceOrder)
}

// AccessLog - одна строка на запрос.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Info("[API] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(started).Round(time.Millisecond))
	}
}

// statusOf: таксономия ошибок -> HTTP-код.
func statusOf(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, runner.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
