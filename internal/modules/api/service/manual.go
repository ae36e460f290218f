package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
)

type webhookRequest struct {
	Payload *models.AlertPayload `json:"payload"`
}

// TriggerWebhook - ручной прогон алерта через релей, для проверки токенов.
func (h *Handler) TriggerWebhook(c *gin.Context) {
	key := helper.NormSymbol(c.Param("symbol"))
	m, ok := h.registry.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Symbol not found"})
		return
	}

	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Payload == nil {
		badRequest(c, "Missing or invalid payload")
		return
	}

	p := *req.Payload
	p.Symbol = strings.ToUpper(key)
	if p.Type == "" {
		p.Type = models.CrossEnter.AlertType()
	}
	if p.Comment == "" {
		entry, exit := m.Messages()
		p.Comment = entry
		if p.Type == models.CrossExit.AlertType() {
			p.Comment = exit
		}
	}
	if p.Time == 0 {
		p.Time = time.Now().UnixMilli()
	}

	if err := h.alerts.Send(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Webhook triggered",
		"symbol":  key,
		"payload": p,
	})
}

type orderRequest struct {
	Symbol   string      `json:"symbol"`
	Quantity json.Number `json:"quantity"`
	Price    json.Number `json:"price"`
	Side     string      `json:"side"`
	Type     string      `json:"type"`
}

// PlaceOrder - ордер в обход сигналов: с ценой LIMIT GTC, без неё MARKET.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Symbol) == "" || req.Quantity == "" {
		badRequest(c, "Missing symbol or quantity")
		return
	}
	if q, err := strconv.ParseFloat(req.Quantity.String(), 64); err != nil || q <= 0 {
		badRequest(c, "quantity must be a positive number")
		return
	}

	order := models.OrderRequest{
		Symbol:   helper.ExchangeSymbol(req.Symbol),
		Side:     models.SideBuy,
		Type:     models.OrderTypeMarket,
		Quantity: req.Quantity.String(),
	}
	switch models.Side(strings.ToUpper(req.Side)) {
	case models.SideNone, models.SideBuy:
	case models.SideSell:
		order.Side = models.SideSell
	default:
		badRequest(c, "side must be BUY or SELL")
		return
	}
	if req.Price != "" {
		if p, err := strconv.ParseFloat(req.Price.String(), 64); err != nil || p <= 0 {
			badRequest(c, "price must be a positive number")
			return
		}
		order.Type = models.OrderTypeLimit
		order.Price = req.Price.String()
	}
	if t := models.OrderType(strings.ToUpper(req.Type)); t == models.OrderTypeLimit && order.Price == "" {
		badRequest(c, "LIMIT order requires price")
		return
	}

	span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "api.place-order")
	span.SetTag("symbol", order.Symbol)
	span.SetTag("side", string(order.Side))
	defer span.Finish()

	res, err := h.orders.PlaceOrder(ctx, order)
	if err != nil {
		span.SetTag("error", true)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
