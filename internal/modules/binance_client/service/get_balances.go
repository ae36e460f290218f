package service

import (
	"context"
	"fmt"
	"strconv"
)

// Balances - свободные остатки по активам, ключ в верхнем регистре ("USDT").
func (c *Client) Balances(ctx context.Context) (out map[string]float64, err error) {
	ctx, finish, err := c.begin(ctx, "Balances")
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	acc, err := c.api.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	out = make(map[string]float64, len(acc.Balances))
	for _, b := range acc.Balances {
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return nil, fmt.Errorf("parse free %s=%q: %w", b.Asset, b.Free, err)
		}
		out[b.Asset] = free
	}
	return out, nil
}
