package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// BusinessLocationIndex is the deterministic name of the spatial index over business locations.
const BusinessLocationIndex = "businesses_location_gist_idx"

const createLocationIndexSQL = `CREATE INDEX IF NOT EXISTS ` + BusinessLocationIndex +
	` ON businesses USING GIST (location)`

// ErrIndexInit is returned when the spatial index could not be created.
var ErrIndexInit = errors.New("failed to initialize geo index")

// GeoIndex guarantees the spatial index over business locations exists.
type GeoIndex struct {
	db     Database
	schema *Schema
	log    *slog.Logger
}

// NewGeoIndex creates a new GeoIndex manager.
func NewGeoIndex(db Database, log *slog.Logger) *GeoIndex {
	return &GeoIndex{db: db, schema: NewSchema(db, log), log: log}
}

// Name returns the task name.
func (g *GeoIndex) Name() string { return "geo-index" }

// Init ensures the index; it lets GeoIndex run as a startup task.
func (g *GeoIndex) Init(ctx context.Context) error { return g.EnsureIndex(ctx) }

// EnsureIndex creates the schema and the GiST index if they are missing.
// Creating an index that already exists is a no-op. Failures are not retried here.
func (g *GeoIndex) EnsureIndex(ctx context.Context) error {
	if err := g.schema.Ensure(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrIndexInit, err)
	}

	if _, err := g.db.Exec(ctx, createLocationIndexSQL); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIndexInit, BusinessLocationIndex, err)
	}
	g.log.InfoContext(ctx, "Geo index is ready", "index", BusinessLocationIndex, "table", BusinessTable)

	return nil
}

// MemoryGeoIndex stands in for GeoIndex with the memory driver, which filters by angle directly.
type MemoryGeoIndex struct {
	log *slog.Logger
}

// NewMemoryGeoIndex creates a new MemoryGeoIndex.
func NewMemoryGeoIndex(log *slog.Logger) *MemoryGeoIndex {
	return &MemoryGeoIndex{log: log}
}

// Name returns the task name.
func (g *MemoryGeoIndex) Name() string { return "geo-index" }

// Init logs and succeeds.
func (g *MemoryGeoIndex) Init(ctx context.Context) error {
	g.log.InfoContext(ctx, "Memory storage needs no geo index", "index", BusinessLocationIndex)
	return nil
}
