package service

import (
	"context"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"
	"rsi_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroQuantity        = errors.New("order quantity rounds to zero")
)

// Exchange - то, что нужно исполнителю от биржи.
type Exchange interface {
	BalanceSource
	Instrument(ctx context.Context, symbol string) (models.Instrument, error)
	PlaceOrder(ctx context.Context, req models.OrderRequest) (models.OrderResult, error)
}

// DirectExecutor - режим direct: рыночные ордера по сигналу.
// Ошибка = позиция не менялась.
type DirectExecutor struct {
	ex       Exchange
	balances *BalanceCache
	minQuote float64
}

func NewDirectExecutor(ex Exchange, balances *BalanceCache, minQuote float64) *DirectExecutor {
	return &DirectExecutor{ex: ex, balances: balances, minQuote: minQuote}
}

func (d *DirectExecutor) Execute(ctx context.Context, sig models.Signal) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "executor.Direct")
	span.SetTag("symbol", sig.Symbol)
	span.SetTag("crossing", sig.Crossing.String())
	defer func() {
		if err != nil {
			span.SetTag("error", true)
		}
		span.Finish()
	}()

	switch sig.Crossing {
	case models.CrossEnter:
		return d.buy(ctx, sig)
	case models.CrossExit:
		return d.sell(ctx, sig)
	default:
		return errors.Errorf("nothing to execute for %s", sig.Crossing)
	}
}

func (d *DirectExecutor) buy(ctx context.Context, sig models.Signal) error {
	inst, err := d.ex.Instrument(ctx, sig.Symbol)
	if err != nil {
		return errors.Wrapf(err, "buy %s: instrument", sig.Symbol)
	}
	bal, err := d.balances.Refresh(ctx)
	if err != nil {
		return errors.Wrapf(err, "buy %s", sig.Symbol)
	}

	free := bal[inst.QuoteAsset]
	if free < d.minQuote {
		return errors.Wrapf(ErrInsufficientBalance, "buy %s: %s free %.8f < %.8f", sig.Symbol, inst.QuoteAsset, free, d.minQuote)
	}

	spend := free
	if sig.BuyLimit > 0 && sig.BuyLimit < spend {
		spend = sig.BuyLimit
	}

	qty, err := helper.FloorQuoteQty(spend, sig.Price, inst.StepSize)
	if err != nil {
		return errors.Wrapf(err, "buy %s: quantity", sig.Symbol)
	}
	if qty.Sign() <= 0 || qty.InexactFloat64() < inst.MinQty {
		return errors.Wrapf(ErrZeroQuantity, "buy %s: spend %.8f at %.8f step %g", sig.Symbol, spend, sig.Price, inst.StepSize)
	}

	res, err := d.ex.PlaceOrder(ctx, models.OrderRequest{
		Symbol:   sig.Symbol,
		Side:     models.SideBuy,
		Type:     models.OrderTypeMarket,
		Quantity: qty.String(),
	})
	if err != nil {
		return errors.Wrapf(err, "buy %s", sig.Symbol)
	}
	d.report(res, qty.String(), spend)
	d.refreshAfter(ctx, sig.Symbol)
	return nil
}

func (d *DirectExecutor) sell(ctx context.Context, sig models.Signal) error {
	inst, err := d.ex.Instrument(ctx, sig.Symbol)
	if err != nil {
		return errors.Wrapf(err, "sell %s: instrument", sig.Symbol)
	}
	bal, err := d.balances.Refresh(ctx)
	if err != nil {
		return errors.Wrapf(err, "sell %s", sig.Symbol)
	}

	held := bal[inst.BaseAsset]
	qty := helper.FloorToStep(held, inst.StepSize)
	if qty.Sign() <= 0 || qty.InexactFloat64() < inst.MinQty {
		return errors.Wrapf(ErrZeroQuantity, "sell %s: %s held %.8f step %g", sig.Symbol, inst.BaseAsset, held, inst.StepSize)
	}

	res, err := d.ex.PlaceOrder(ctx, models.OrderRequest{
		Symbol:   sig.Symbol,
		Side:     models.SideSell,
		Type:     models.OrderTypeMarket,
		Quantity: qty.String(),
	})
	if err != nil {
		return errors.Wrapf(err, "sell %s", sig.Symbol)
	}
	d.report(res, qty.String(), 0)
	d.refreshAfter(ctx, sig.Symbol)
	return nil
}

// report: не FILLED - только предупреждение, позиция всё равно считается открытой/закрытой.
func (d *DirectExecutor) report(res models.OrderResult, qty string, spend float64) {
	if res.Status != models.OrderStatusFilled {
		logger.Warn("[ORDER] %s %s qty=%s id=%d status=%s (not filled)", res.Side, res.Symbol, qty, res.OrderID, res.Status)
		return
	}
	logger.Info("[ORDER] %s %s qty=%s id=%d executed=%.8f quote=%.8f spend=%.8f",
		res.Side, res.Symbol, qty, res.OrderID, res.ExecutedQty, res.QuoteQty, spend)
}

func (d *DirectExecutor) refreshAfter(ctx context.Context, symbol string) {
	if _, err := d.balances.Refresh(ctx); err != nil {
		logger.Warn("[ORDER] %s: balances refresh after order: %v", symbol, err)
	}
}
