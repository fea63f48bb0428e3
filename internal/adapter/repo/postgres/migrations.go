package postgres

import (
	"context"
	"fmt"
	"log/slog"
)

// Migration is one schema change: an integer id, a description, and the
// SQL body. Applied migrations are recorded in ses.schema_migrations and
// never re-applied.
type Migration struct {
	ID          int
	Description string
	SQL         string
}

// Migrations is the ordered migration list.
var Migrations = []Migration{
	{ID: 1, Description: "create ses schema", SQL: schemaDDL},
	{ID: 2, Description: "create extraction_queue", SQL: extractionQueueDDL},
	{ID: 3, Description: "create anken/jinzai email archives", SQL: emailArchivesDDL},
	{ID: 4, Description: "create entity snapshots (talents, talents_enum, projects_enum)", SQL: entitySnapshotsDDL},
	{ID: 5, Description: "create match_results", SQL: matchResultsDDL},
	{ID: 6, Description: "create interaction_logs", SQL: interactionLogsDDL},
	{ID: 7, Description: "create feedback_events (range partitioned)", SQL: feedbackEventsDDL},
	{ID: 8, Description: "create interaction_events", SQL: interactionEventsDDL},
	{ID: 9, Description: "create conversion_events", SQL: conversionEventsDDL},
}

const migrationsTableDDL = `
CREATE TABLE IF NOT EXISTS ses.schema_migrations (
    id INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
`

// RunMigrations applies every unapplied migration in order within a
// transaction each, recording the id in ses.schema_migrations.
func RunMigrations(ctx context.Context, pool PgxPool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("op=migrations.schema: %w", err)
	}
	if _, err := pool.Exec(ctx, migrationsTableDDL); err != nil {
		return fmt.Errorf("op=migrations.table: %w", err)
	}

	for _, m := range Migrations {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM ses.schema_migrations WHERE id = $1)`, m.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("op=migrations.check id=%d: %w", m.ID, err)
		}
		if exists {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("op=migrations.begin id=%d: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("op=migrations.apply id=%d (%s): %w", m.ID, m.Description, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO ses.schema_migrations (id, description) VALUES ($1, $2)`,
			m.ID, m.Description,
		); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("op=migrations.record id=%d: %w", m.ID, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("op=migrations.commit id=%d: %w", m.ID, err)
		}

		slog.Info("applied migration", slog.Int("id", m.ID), slog.String("description", m.Description))
	}
	return nil
}
