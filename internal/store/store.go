// Package store holds the Postgres record stores for auctions and bids.
// Methods take a DBTX so the same queries run against the pool or inside a
// transaction; every mutating operation in the service layer passes its *sql.Tx.
package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB / *sql.Tx the stores need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
