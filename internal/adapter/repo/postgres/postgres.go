// Package postgres provides the PostgreSQL store adapters.
//
// It mirrors the in-memory queue state machine durably, persists match
// snapshots and interaction logs with idempotent upserts, and serves the
// read models behind the queue and feedback endpoints. All SQL targets
// schema ses and uses parameterized statements only.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of *pgxpool.Pool the repositories depend on,
// kept as an interface so tests can substitute fakes.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}
