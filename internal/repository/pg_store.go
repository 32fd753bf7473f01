package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgStore implements Store on PostgreSQL. Single-row statements rely on
// Postgres row atomicity; multi-statement ledger writes use a transaction.
type PgStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PgStore)(nil)

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newID() string {
	return uuid.NewString()
}

// parseNumeric converts a NUMERIC rendered as text.
func parseNumeric(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return d, nil
}
