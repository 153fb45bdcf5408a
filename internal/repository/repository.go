package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/proximity/internal/config"
	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/puddle/v2"
)

// Errors reported by every Repository implementation.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrMultipleMatches = errors.New("multiple entities share the identifier")
)

// Repository is the persistence contract for identifiable entities.
// Each implementation owns exactly one table (or collection) for its entity type.
type Repository[E models.Identifiable[K], K comparable] interface {
	// Get returns the entity with the given id, or nil without an error when none exists.
	Get(ctx context.Context, id K) (*E, error)
	// Add inserts a new entity. A storage-level key conflict is reported as ErrAlreadyExists.
	Add(ctx context.Context, entity E) error
	// Update replaces the entity with the same key. Returns ErrNotFound when no record matched.
	Update(ctx context.Context, entity E) error
	// UpdateWhere replaces the first record matching the predicate.
	UpdateWhere(ctx context.Context, entity E, predicate Predicate) error
	// Delete removes the entity with the given id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id K) error
}

// Database is the subset of the pgx pool used by the repositories.
// It is satisfied by *pgxpool.Pool and by pgxmock pools.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// NewDatabase opens a pgx connection pool using the given configuration and verifies it with a ping.
func NewDatabase(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   "/" + cfg.Name,
	}
	query := dsn.Query()
	if cfg.SSLMode != "" {
		query.Set("sslmode", cfg.SSLMode)
	}
	dsn.RawQuery = query.Encode()

	poolCfg, err := pgxpool.ParseConfig(dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns) //nolint:gosec // bounded by config validation
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	return pool, nil
}

// IsReleased reports whether err means the underlying resource was already released,
// e.g. the pool was closed or the operation was canceled during shutdown.
func IsReleased(err error) bool {
	return errors.Is(err, puddle.ErrClosedPool) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, context.Canceled)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func formatKey[K comparable](id K) string {
	switch v := any(id).(type) {
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}
