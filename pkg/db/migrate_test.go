package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recTx struct {
	stmts []string
	err   error
}

func (r *recTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	r.stmts = append(r.stmts, sql)
	return pgconn.CommandTag{}, r.err
}

func (r *recTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (r *recTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

type recTM struct {
	tx   *recTx
	runs int
}

func (m *recTM) RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx Transaction) error) error {
	m.runs++
	return fn(ctx, m.tx)
}

func (m *recTM) Conn() Transaction { return m.tx }

func TestMigrateAppliesFilesInOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_index.sql": {Data: []byte("CREATE INDEX IF NOT EXISTS b;")},
		"0001_table.sql": {Data: []byte("CREATE TABLE IF NOT EXISTS a;")},
		"README.md":      {Data: []byte("not sql")},
	}
	tm := &recTM{tx: &recTx{}}

	if err := Migrate(context.Background(), tm, fsys); err != nil {
		t.Fatal(err)
	}
	if tm.runs != 1 {
		t.Fatalf("transactions = %d, want 1", tm.runs)
	}
	if len(tm.tx.stmts) != 2 || !strings.Contains(tm.tx.stmts[0], "TABLE") || !strings.Contains(tm.tx.stmts[1], "INDEX") {
		t.Fatalf("statements = %q", tm.tx.stmts)
	}
}

func TestMigrateReportsFailedFile(t *testing.T) {
	fsys := fstest.MapFS{"0001_table.sql": {Data: []byte("CREATE TABLE broken")}}
	tm := &recTM{tx: &recTx{err: errors.New("syntax error")}}

	err := Migrate(context.Background(), tm, fsys)
	if err == nil || !strings.Contains(err.Error(), "0001_table.sql") {
		t.Fatalf("err = %v, want failing file name", err)
	}
}
