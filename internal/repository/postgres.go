package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/jackc/pgx/v5"
)

// Column describes how one table column is read and written.
type Column struct {
	Name  string // Name is the column name.
	Read  string // Read is the select expression list; defaults to Name.
	Write string // Write is the value expression with one ? per argument; defaults to "?".
}

func (c Column) read() string {
	if c.Read == "" {
		return c.Name
	}
	return c.Read
}

func (c Column) write() string {
	if c.Write == "" {
		return "?"
	}
	return c.Write
}

// Table maps an entity type onto a PostgreSQL table.
// The first column is the key column and must take exactly one argument.
type Table[E models.Identifiable[K], K comparable] struct {
	Name    string               // Name of the table.
	Columns []Column             // Columns in argument order, key first.
	Args    func(entity E) []any // Args returns the write arguments in column order.
	Scan    func(row pgx.Row) (E, error)
}

// Store is a PostgreSQL Repository for a single entity type.
// All SQL is generated once from the table descriptor.
type Store[E models.Identifiable[K], K comparable] struct {
	db    Database
	log   *slog.Logger
	table Table[E, K]

	selectList string
	setAll     string
	argc       int

	getSQL    string
	insertSQL string
	updateSQL string
	deleteSQL string
}

// ErrInvalidTable is returned when a table descriptor cannot be turned into SQL.
var ErrInvalidTable = errors.New("invalid table descriptor")

// NewStore creates a Store for the given table descriptor.
func NewStore[E models.Identifiable[K], K comparable](
	db Database,
	log *slog.Logger,
	table Table[E, K],
) (*Store[E, K], error) {
	if table.Name == "" || len(table.Columns) == 0 || table.Args == nil || table.Scan == nil {
		return nil, fmt.Errorf("%w: name, columns, args and scan are required", ErrInvalidTable)
	}

	names := make([]string, len(table.Columns))
	reads := make([]string, len(table.Columns))
	writes := make([]string, len(table.Columns))
	argc := 0
	for i, col := range table.Columns {
		names[i] = col.Name
		reads[i] = col.read()
		writes[i] = bind(col.write(), &argc)
	}
	if writes[0] != "$1" {
		return nil, fmt.Errorf("%w: key column %q must take exactly one argument", ErrInvalidTable, names[0])
	}

	sets := make([]string, len(names))
	for i := range names {
		sets[i] = names[i] + " = " + writes[i]
	}

	key := names[0]
	selectList := strings.Join(reads, ", ")

	return &Store[E, K]{
		db:         db,
		log:        log,
		table:      table,
		selectList: selectList,
		setAll:     strings.Join(sets, ", "),
		argc:       argc,
		getSQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 2",
			selectList, table.Name, key),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table.Name, strings.Join(names, ", "), strings.Join(writes, ", ")),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = $1",
			table.Name, strings.Join(sets[1:], ", "), key),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table.Name, key),
	}, nil
}

func mustStore[E models.Identifiable[K], K comparable](db Database, log *slog.Logger, table Table[E, K]) *Store[E, K] {
	store, err := NewStore(db, log, table)
	if err != nil {
		panic(err)
	}
	return store
}

// Get returns the entity with the given id. It returns nil when no row matches and
// ErrMultipleMatches when the key is not unique in storage.
func (s *Store[E, K]) Get(ctx context.Context, id K) (*E, error) {
	found, err := s.queryAll(ctx, s.getSQL, id)
	if err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, nil //nolint:nilnil // absence is not an error
	case 1:
		return &found[0], nil
	default:
		s.log.ErrorContext(ctx, "Storage integrity violated: key is not unique",
			"table", s.table.Name, "key", formatKey(id))
		return nil, fmt.Errorf("%w: %s %s", ErrMultipleMatches, s.table.Name, formatKey(id))
	}
}

// Add inserts a new row for the entity.
func (s *Store[E, K]) Add(ctx context.Context, entity E) error {
	if _, err := s.db.Exec(ctx, s.insertSQL, s.table.Args(entity)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", ErrAlreadyExists, s.table.Name, formatKey(entity.Key()))
		}
		return fmt.Errorf("failed to insert into %s: %w", s.table.Name, err)
	}

	return nil
}

// Update replaces every non-key column of the row with the entity's key.
func (s *Store[E, K]) Update(ctx context.Context, entity E) error {
	tag, err := s.db.Exec(ctx, s.updateSQL, s.table.Args(entity)...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", s.table.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, s.table.Name, formatKey(entity.Key()))
	}

	return nil
}

// UpdateWhere replaces the first row matching the predicate, key included.
// A predicate matching no row is not an error.
func (s *Store[E, K]) UpdateWhere(ctx context.Context, entity E, predicate Predicate) error {
	n := s.argc
	clause, predArgs, err := predicate.sql(&n)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE ctid = (SELECT ctid FROM %s WHERE %s LIMIT 1)",
		s.table.Name, s.setAll, s.table.Name, clause)
	args := append(s.table.Args(entity), predArgs...)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", ErrAlreadyExists, s.table.Name, formatKey(entity.Key()))
		}
		return fmt.Errorf("failed to update %s by predicate: %w", s.table.Name, err)
	}
	s.log.DebugContext(ctx, "Replaced record by predicate", "table", s.table.Name, "rows", tag.RowsAffected())

	return nil
}

// Delete removes the row with the given id if it exists.
func (s *Store[E, K]) Delete(ctx context.Context, id K) error {
	if _, err := s.db.Exec(ctx, s.deleteSQL, id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", s.table.Name, err)
	}

	return nil
}

// queryAll runs a select returning the table's read columns and scans every row.
func (s *Store[E, K]) queryAll(ctx context.Context, query string, args ...any) ([]E, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table.Name, err)
	}
	defer rows.Close()

	var found []E
	for rows.Next() {
		entity, errScan := s.table.Scan(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", s.table.Name, errScan)
		}
		found = append(found, entity)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return found, nil
}
