package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the query surface the repositories need. It is satisfied by
// *pgxpool.Pool, pgx.Tx and the pgxmock pool, so the same repository can
// run inside a transaction or against a mock.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is a Database that can open transactions.
type TxStarter interface {
	Database
	Begin(ctx context.Context) (pgx.Tx, error)
}
