package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type BalanceSource interface {
	Balances(ctx context.Context) (map[string]float64, error)
}

// BalanceCache - общий на все символы снимок остатков. Перед каждым
// ордером перечитывается; резервирования между символами нет.
type BalanceCache struct {
	src BalanceSource

	mu        sync.RWMutex
	data      map[string]float64
	updatedAt time.Time
}

func NewBalanceCache(src BalanceSource) *BalanceCache {
	return &BalanceCache{src: src, data: map[string]float64{}}
}

func (b *BalanceCache) Refresh(ctx context.Context) (map[string]float64, error) {
	fresh, err := b.src.Balances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "refresh balances")
	}

	b.mu.Lock()
	b.data = fresh
	b.updatedAt = time.Now()
	b.mu.Unlock()

	return b.Snapshot(), nil
}

func (b *BalanceCache) Get(asset string) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data[asset]
}

func (b *BalanceCache) Snapshot() map[string]float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]float64, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}

func (b *BalanceCache) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}
