package service

import (
	"context"
	"fmt"
	"strconv"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
)

// PlaceOrder отправляет MARKET или LIMIT GTC ордер. Quantity уже должна
// быть кратна stepSize - тут ничего не округляем.
func (c *Client) PlaceOrder(ctx context.Context, req models.OrderRequest) (res models.OrderResult, err error) {
	if req.Quantity == "" {
		return models.OrderResult{}, fmt.Errorf("%w: quantity is required", models.ErrValidation)
	}
	if req.Side != models.SideBuy && req.Side != models.SideSell {
		return models.OrderResult{}, fmt.Errorf("%w: unknown side %q", models.ErrValidation, req.Side)
	}
	if req.Type == "" {
		req.Type = models.OrderTypeMarket
	}
	if req.Type == models.OrderTypeLimit && req.Price == "" {
		return models.OrderResult{}, fmt.Errorf("%w: limit order needs a price", models.ErrValidation)
	}

	ctx, finish, err := c.begin(ctx, "PlaceOrder")
	if err != nil {
		return models.OrderResult{}, err
	}
	defer func() { finish(err) }()

	svc := c.api.NewCreateOrderService().
		Symbol(helper.ExchangeSymbol(req.Symbol)).
		Side(binance.SideType(req.Side)).
		Quantity(req.Quantity).
		NewClientOrderID("rsi-" + uuid.NewString()[:28])

	switch req.Type {
	case models.OrderTypeLimit:
		svc = svc.Type(binance.OrderTypeLimit).
			TimeInForce(binance.TimeInForceTypeGTC).
			Price(req.Price)
	case models.OrderTypeMarket:
		svc = svc.Type(binance.OrderTypeMarket)
	default:
		return models.OrderResult{}, fmt.Errorf("%w: unknown order type %q", models.ErrValidation, req.Type)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("create order %s %s %s: %w", req.Side, req.Symbol, req.Quantity, err)
	}

	executed, _ := strconv.ParseFloat(resp.ExecutedQuantity, 64)
	quote, _ := strconv.ParseFloat(resp.CummulativeQuoteQuantity, 64)

	return models.OrderResult{
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Symbol:        resp.Symbol,
		Side:          models.Side(resp.Side),
		Status:        string(resp.Status),
		ExecutedQty:   executed,
		QuoteQty:      quote,
	}, nil
}
