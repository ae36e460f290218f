package service

import (
	"context"
	"fmt"
	"strconv"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"
)

// Instrument достаёт base/quote и LOT_SIZE для пары.
func (c *Client) Instrument(ctx context.Context, symbol string) (inst models.Instrument, err error) {
	ctx, finish, err := c.begin(ctx, "Instrument")
	if err != nil {
		return models.Instrument{}, err
	}
	defer func() { finish(err) }()

	sym := helper.ExchangeSymbol(symbol)
	info, err := c.api.NewExchangeInfoService().Symbol(sym).Do(ctx)
	if err != nil {
		return models.Instrument{}, fmt.Errorf("get exchange info %s: %w", sym, err)
	}

	for i := range info.Symbols {
		s := &info.Symbols[i]
		if s.Symbol != sym {
			continue
		}

		lot := s.LotSizeFilter()
		if lot == nil {
			return models.Instrument{}, fmt.Errorf("instrument %s: no LOT_SIZE filter", sym)
		}
		step, err := strconv.ParseFloat(lot.StepSize, 64)
		if err != nil || step <= 0 {
			return models.Instrument{}, fmt.Errorf("instrument %s: bad stepSize %q", sym, lot.StepSize)
		}
		minQty, _ := strconv.ParseFloat(lot.MinQuantity, 64)

		return models.Instrument{
			Symbol:     sym,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
			StepSize:   step,
			MinQty:     minQty,
		}, nil
	}

	return models.Instrument{}, fmt.Errorf("instrument %s not found", sym)
}
