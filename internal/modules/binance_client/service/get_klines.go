package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rsi_bot/internal/helper"
	"rsi_bot/internal/models"
)

// Klines тянет последние limit свечей. Ещё не закрытая последняя свеча
// (closeTime в будущем) отбрасывается - в RSI идут только закрытия.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) (out []models.CandleTick, err error) {
	ctx, finish, err := c.begin(ctx, "Klines")
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	raw, err := c.api.NewKlinesService().
		Symbol(helper.ExchangeSymbol(symbol)).
		Interval(helper.NormTF(interval)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("get klines %s %s: %w", symbol, interval, err)
	}

	now := c.now()
	out = make([]models.CandleTick, 0, len(raw))
	for i, k := range raw {
		closeTime := time.UnixMilli(k.CloseTime)
		if closeTime.After(now) {
			continue
		}

		closep, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("kline %d: parse close %q: %w", i, k.Close, err)
		}
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		vol, _ := strconv.ParseFloat(k.Volume, 64)

		out = append(out, models.CandleTick{
			Symbol:   helper.NormSymbol(symbol),
			Interval: interval,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closep,
			Volume:   vol,
			Start:    time.UnixMilli(k.OpenTime),
			End:      closeTime,
			Closed:   true,
		})
	}
	return out, nil
}
