// Package db provides Postgres helpers for bulk-loading tables.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of *pgxpool.Pool used here. pgxmock pools satisfy it.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Copier bulk-loads rows. Pools and transactions both satisfy it.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

var (
	_ Pool   = (*pgxpool.Pool)(nil)
	_ Copier = (*pgxpool.Pool)(nil)
	_ Copier = pgx.Tx(nil)
)

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, eris.Wrap(err, "db: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "db: ping")
	}
	return pool, nil
}
