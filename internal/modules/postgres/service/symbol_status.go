package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rsi_bot/internal/models"
	"rsi_bot/internal/modules/postgres/service/sql"
	"rsi_bot/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// SymbolStatus - таблица crypto_symbol_status.
type SymbolStatus struct {
	db  db.TxManager
	sql *sql.Queries
}

func NewSymbolStatus(tm db.TxManager) *SymbolStatus {
	return &SymbolStatus{
		db:  tm,
		sql: sql.New(),
	}
}

// Upsert пишет статус; пустые buy/sell time не затирают сохранённые.
func (s *SymbolStatus) Upsert(ctx context.Context, st models.SymbolStatus) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("SymbolStatus.Upsert %s: %w", st.Symbol, err)
		}
	}()

	updated := st.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		return s.sql.UpsertSymbolStatus(ctxTx, tx, &sql.UpsertSymbolStatusParams{
			Symbol:    st.Symbol,
			Status:    st.Status,
			InLong:    st.InLong,
			BuyTime:   toTimestamptz(st.BuyTime),
			SellTime:  toTimestamptz(st.SellTime),
			UpdatedAt: pgtype.Timestamptz{Time: updated, Valid: true},
		})
	})
}

func (s *SymbolStatus) Get(ctx context.Context, symbol string) (_ models.SymbolStatus, _ bool, err error) {
	row, err := s.sql.GetSymbolStatus(ctx, s.db.Conn(), symbol)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.SymbolStatus{}, false, nil
	}
	if err != nil {
		return models.SymbolStatus{}, false, fmt.Errorf("SymbolStatus.Get %s: %w", symbol, err)
	}
	return models.SymbolStatus{
		Symbol:    row.Symbol,
		Status:    row.Status,
		InLong:    row.InLong,
		BuyTime:   fromTimestamptz(row.BuyTime),
		SellTime:  fromTimestamptz(row.SellTime),
		UpdatedAt: row.UpdatedAt.Time,
	}, true, nil
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func fromTimestamptz(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
