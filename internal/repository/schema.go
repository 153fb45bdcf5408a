package repository

import (
	"context"
	"fmt"
	"log/slog"
)

// schemaLockKey serializes schema changes across concurrent initializers and replicas.
const schemaLockKey int64 = 7_240_001

const (
	lockSchemaSQL       = `SELECT pg_advisory_xact_lock($1)`
	createPostgisSQL    = `CREATE EXTENSION IF NOT EXISTS postgis`
	createBusinessesSQL = `
		CREATE TABLE IF NOT EXISTS businesses (
			business_id TEXT PRIMARY KEY,
			address     TEXT NOT NULL DEFAULT '',
			city        TEXT NOT NULL DEFAULT '',
			state       TEXT NOT NULL DEFAULT '',
			country     TEXT NOT NULL DEFAULT '',
			location    GEOGRAPHY(POINT, 4326) NOT NULL
		);
	`
	dropBusinessesSQL = `DROP TABLE IF EXISTS businesses`
)

// Schema creates the businesses table and the PostGIS extension it depends on.
type Schema struct {
	db  Database
	log *slog.Logger
}

// NewSchema creates a new Schema.
func NewSchema(db Database, log *slog.Logger) *Schema {
	return &Schema{db: db, log: log}
}

// Ensure idempotently creates the PostGIS extension and the businesses table.
// Concurrent callers are serialized with a transaction-scoped advisory lock.
func (s *Schema) Ensure(ctx context.Context) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}

	for _, stmt := range []struct {
		sql  string
		args []any
	}{
		{sql: lockSchemaSQL, args: []any{schemaLockKey}},
		{sql: createPostgisSQL},
		{sql: createBusinessesSQL},
	} {
		if _, err = tx.Exec(ctx, stmt.sql, stmt.args...); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	s.log.DebugContext(ctx, "Schema is up to date", "table", BusinessTable)

	return nil
}

// DevReset drops the businesses table so that a development database starts empty.
// It does nothing unless enabled.
type DevReset struct {
	db      Database
	log     *slog.Logger
	enabled bool
}

// NewDevReset creates a DevReset task.
func NewDevReset(db Database, log *slog.Logger, enabled bool) *DevReset {
	return &DevReset{db: db, log: log, enabled: enabled}
}

// Name returns the task name.
func (d *DevReset) Name() string { return "dev-reset" }

// Init drops the businesses table if reset is enabled.
func (d *DevReset) Init(ctx context.Context) error {
	if !d.enabled {
		d.log.DebugContext(ctx, "Development reset is disabled, skipping")
		return nil
	}

	if _, err := d.db.Exec(ctx, dropBusinessesSQL); err != nil {
		return fmt.Errorf("failed to drop %s: %w", BusinessTable, err)
	}
	d.log.WarnContext(ctx, "Development database reset", "table", BusinessTable)

	return nil
}
