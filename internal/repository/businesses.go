package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/jackc/pgx/v5"
)

const (
	// BusinessTable is the table holding every business.
	BusinessTable = "businesses"

	// postgisSphereRadiusMeters is the sphere radius PostGIS uses for geography
	// distances when use_spheroid is false.
	postgisSphereRadiusMeters = 6371008.7714
)

// BusinessColumns are the businesses columns in argument order.
// The location is stored as a geography point built from (longitude, latitude).
var BusinessColumns = []Column{
	{Name: "business_id"},
	{Name: "address"},
	{Name: "city"},
	{Name: "state"},
	{Name: "country"},
	{
		Name:  "location",
		Read:  "ST_Y(location::geometry), ST_X(location::geometry)",
		Write: "ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography",
	},
}

func businessTable() Table[models.Business, string] {
	return Table[models.Business, string]{
		Name:    BusinessTable,
		Columns: BusinessColumns,
		Args:    businessArgs,
		Scan:    scanBusiness,
	}
}

func businessArgs(b models.Business) []any {
	return []any{b.ID, b.Address, b.City, b.State, b.Country, b.Location.Longitude, b.Location.Latitude}
}

func scanBusiness(row pgx.Row) (models.Business, error) {
	var b models.Business
	err := row.Scan(&b.ID, &b.Address, &b.City, &b.State, &b.Country, &b.Location.Latitude, &b.Location.Longitude)
	return b, err
}

func businessFields(b models.Business) map[string]any {
	return map[string]any{
		"business_id": b.ID,
		"address":     b.Address,
		"city":        b.City,
		"state":       b.State,
		"country":     b.Country,
	}
}

// BusinessStore is the repository contract for businesses plus the spherical-cap query
// surface used by proximity search and the bulk insert used by seeding.
type BusinessStore interface {
	Repository[models.Business, string]
	WithinCap(ctx context.Context, center models.Point, angularRadius float64) ([]models.Business, error)
	SeedBusinesses(ctx context.Context, businesses []models.Business) (int, error)
}

// BusinessRepository stores businesses in PostgreSQL with PostGIS.
type BusinessRepository struct {
	*Store[models.Business, string]

	schema       *Schema
	withinCapSQL string
	seedSQL      string
}

// NewBusinessRepository creates a new BusinessRepository backed by the given database.
func NewBusinessRepository(db Database, log *slog.Logger) *BusinessRepository {
	store := mustStore(db, log, businessTable())

	return &BusinessRepository{
		Store:  store,
		schema: NewSchema(db, log),
		withinCapSQL: fmt.Sprintf(
			"SELECT %s FROM %s WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, false)",
			store.selectList, BusinessTable),
		seedSQL: store.insertSQL + " ON CONFLICT (business_id) DO NOTHING",
	}
}

// WithinCap returns every business whose location lies inside the spherical cap centered
// on center with the given angular radius in radians. The result order is unspecified.
func (r *BusinessRepository) WithinCap(
	ctx context.Context,
	center models.Point,
	angularRadius float64,
) ([]models.Business, error) {
	meters := angularRadius * postgisSphereRadiusMeters

	found, err := r.queryAll(ctx, r.withinCapSQL, center.Longitude, center.Latitude, meters)
	if err != nil {
		return nil, err
	}
	r.log.DebugContext(ctx, "Spherical cap query finished",
		"lat", center.Latitude, "lon", center.Longitude, "radians", angularRadius, "matches", len(found))

	return found, nil
}

// SeedBusinesses inserts the given businesses in one transaction, skipping ids that already exist.
// It returns the number of inserted rows.
func (r *BusinessRepository) SeedBusinesses(ctx context.Context, businesses []models.Business) (int, error) {
	if err := r.schema.Ensure(ctx); err != nil {
		return 0, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}

	inserted := 0
	for _, b := range businesses {
		tag, errExec := tx.Exec(ctx, r.seedSQL, businessArgs(b)...)
		if errExec != nil {
			_ = tx.Rollback(ctx)
			return 0, fmt.Errorf("failed to seed business %q: %w", b.ID, errExec)
		}
		inserted += int(tag.RowsAffected())
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	return inserted, nil
}

// MemoryBusinesses is the in-process BusinessStore used by the memory storage driver.
type MemoryBusinesses struct {
	*MemoryStore[models.Business, string]
}

// NewMemoryBusinesses creates an empty in-memory business store.
func NewMemoryBusinesses() *MemoryBusinesses {
	return &MemoryBusinesses{MemoryStore: NewMemoryStore[models.Business, string](BusinessTable, businessFields)}
}

// WithinCap filters stored businesses by great-circle angle from center.
func (m *MemoryBusinesses) WithinCap(
	_ context.Context,
	center models.Point,
	angularRadius float64,
) ([]models.Business, error) {
	return m.Filter(func(b models.Business) bool {
		return center.AngularDistance(b.Location) <= angularRadius
	}), nil
}

// SeedBusinesses adds every business whose id is not stored yet.
func (m *MemoryBusinesses) SeedBusinesses(ctx context.Context, businesses []models.Business) (int, error) {
	inserted := 0
	for _, b := range businesses {
		err := m.Add(ctx, b)
		if errors.Is(err, ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, nil
}

var (
	_ BusinessStore = (*BusinessRepository)(nil)
	_ BusinessStore = (*MemoryBusinesses)(nil)
)
