package repository_test

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/UnknownOlympus/proximity/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	getBusinessQuery = `SELECT business_id, address, city, state, country, ` +
		`ST_Y(location::geometry), ST_X(location::geometry) FROM businesses WHERE business_id = $1 LIMIT 2`
	insertBusinessQuery = `INSERT INTO businesses (business_id, address, city, state, country, location) ` +
		`VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography)`
	updateBusinessQuery = `UPDATE businesses SET address = $2, city = $3, state = $4, country = $5, ` +
		`location = ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography WHERE business_id = $1`
	deleteBusinessQuery = `DELETE FROM businesses WHERE business_id = $1`
	updateWhereQuery    = `UPDATE businesses SET business_id = $1, address = $2, city = $3, state = $4, ` +
		`country = $5, location = ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography ` +
		`WHERE ctid = (SELECT ctid FROM businesses WHERE city = $8 LIMIT 1)`
)

var businessRowColumns = []string{"business_id", "address", "city", "state", "country", "lat", "lon"}

func denver() models.Business {
	return models.Business{
		ID:       "denver-1",
		Address:  "1437 Bannock St",
		City:     "Denver",
		State:    "CO",
		Country:  "US",
		Location: models.Point{Latitude: 39.7392, Longitude: -104.9903},
	}
}

func businessArgs(b models.Business) []any {
	return []any{b.ID, b.Address, b.City, b.State, b.Country, b.Location.Longitude, b.Location.Latitude}
}

func TestStore_Get(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	want := denver()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getBusinessQuery)).
			WithArgs(want.ID).
			WillReturnRows(pgxmock.NewRows(businessRowColumns).AddRow(
				want.ID, want.Address, want.City, want.State, want.Country,
				want.Location.Latitude, want.Location.Longitude,
			))

		got, err := repo.Get(ctx, want.ID)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, *got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent returns nil without error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getBusinessQuery)).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows(businessRowColumns))

		got, err := repo.Get(ctx, "missing")

		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - multiple matches", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getBusinessQuery)).
			WithArgs(want.ID).
			WillReturnRows(pgxmock.NewRows(businessRowColumns).
				AddRow(want.ID, "a", "b", "c", "d", 1.0, 2.0).
				AddRow(want.ID, "e", "f", "g", "h", 3.0, 4.0))

		got, err := repo.Get(ctx, want.ID)

		require.Nil(t, got)
		require.ErrorIs(t, err, repository.ErrMultipleMatches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getBusinessQuery)).
			WithArgs(want.ID).
			WillReturnError(assert.AnError)

		got, err := repo.Get(ctx, want.ID)

		require.Nil(t, got)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to query businesses")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getBusinessQuery)).
			WithArgs(want.ID).
			WillReturnRows(pgxmock.NewRows(businessRowColumns).
				AddRow(want.ID, "a", "b", "c", "d", "not a number", 2.0))

		got, err := repo.Get(ctx, want.ID)

		require.Nil(t, got)
		require.ErrorContains(t, err, "failed to scan businesses row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getBusinessQuery)).
			WithArgs(want.ID).
			WillReturnRows(pgxmock.NewRows(businessRowColumns).
				AddRow(want.ID, "a", "b", "c", "d", 1.0, 2.0).
				RowError(0, assert.AnError))

		got, err := repo.Get(ctx, want.ID)

		require.Nil(t, got)
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Add(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	b := denver()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(insertBusinessQuery)).
			WithArgs(businessArgs(b)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Add(ctx, b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to already exists", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(insertBusinessQuery)).
			WithArgs(businessArgs(b)...).
			WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

		err = repo.Add(ctx, b)

		require.ErrorIs(t, err, repository.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(insertBusinessQuery)).
			WithArgs(businessArgs(b)...).
			WillReturnError(assert.AnError)

		err = repo.Add(ctx, b)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to insert into businesses")
		require.NotErrorIs(t, err, repository.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Update(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	b := denver()
	b.Address = "1600 Glenarm Pl"

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateBusinessQuery)).
			WithArgs(businessArgs(b)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.Update(ctx, b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row is not found", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateBusinessQuery)).
			WithArgs(businessArgs(b)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		require.ErrorIs(t, repo.Update(ctx, b), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateBusinessQuery)).
			WithArgs(businessArgs(b)...).
			WillReturnError(assert.AnError)

		err = repo.Update(ctx, b)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to update businesses")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_UpdateWhere(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	b := denver()
	b.ID = "denver-renamed"

	t.Run("replaces first match", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateWhereQuery)).
			WithArgs(append(businessArgs(b), "Denver")...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateWhere(ctx, b, repository.Eq("city", "Denver")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match is not an error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateWhereQuery)).
			WithArgs(append(businessArgs(b), "Atlantis")...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		require.NoError(t, repo.UpdateWhere(ctx, b, repository.Eq("city", "Atlantis")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("raw clause and conjunction", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		query := `UPDATE businesses SET business_id = $1, address = $2, city = $3, state = $4, ` +
			`country = $5, location = ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography ` +
			`WHERE ctid = (SELECT ctid FROM businesses WHERE state = $8 AND (lower(city) = $9 OR city = $10) LIMIT 1)`
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs(append(businessArgs(b), "CO", "denver", "Denver")...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.UpdateWhere(ctx, b, repository.And(
			repository.Eq("state", "CO"),
			repository.Where("lower(city) = ? OR city = ?", "denver", "Denver"),
		))

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - placeholder count mismatch", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		err = repo.UpdateWhere(ctx, b, repository.Where("city = ? AND state = ?", "Denver"))

		require.ErrorIs(t, err, repository.ErrUnsupportedPredicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - match predicate needs memory store", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		err = repo.UpdateWhere(ctx, b, repository.Match(func(models.Business) bool { return true }))

		require.ErrorIs(t, err, repository.ErrUnsupportedPredicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("new key conflict", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(updateWhereQuery)).
			WithArgs(append(businessArgs(b), "Denver")...).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err = repo.UpdateWhere(ctx, b, repository.Eq("city", "Denver"))

		require.ErrorIs(t, err, repository.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(deleteBusinessQuery)).
			WithArgs("denver-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(regexp.QuoteMeta(deleteBusinessQuery)).
			WithArgs("denver-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, repo.Delete(ctx, "denver-1"))
		require.NoError(t, repo.Delete(ctx, "denver-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewBusinessRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(deleteBusinessQuery)).
			WithArgs("denver-1").
			WillReturnError(assert.AnError)

		err = repo.Delete(ctx, "denver-1")

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to delete from businesses")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

type note struct {
	ID   int64
	Body string
}

func (n note) Key() int64 { return n.ID }

func TestNewStore(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	valid := repository.Table[note, int64]{
		Name:    "notes",
		Columns: []repository.Column{{Name: "id"}, {Name: "body"}},
		Args:    func(n note) []any { return []any{n.ID, n.Body} },
		Scan: func(row pgx.Row) (note, error) {
			var n note
			return n, row.Scan(&n.ID, &n.Body)
		},
	}

	t.Run("generic entity round trip", func(t *testing.T) {
		store, errStore := repository.NewStore(mock, slog.Default(), valid)
		require.NoError(t, errStore)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notes (id, body) VALUES ($1, $2)`)).
			WithArgs(int64(7), "hello").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.Add(t.Context(), note{ID: 7, Body: "hello"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing table name", func(t *testing.T) {
		table := valid
		table.Name = ""

		_, errStore := repository.NewStore(mock, slog.Default(), table)
		require.ErrorIs(t, errStore, repository.ErrInvalidTable)
	})

	t.Run("composite key column", func(t *testing.T) {
		table := valid
		table.Columns = []repository.Column{{Name: "id", Write: "(? + ?)"}, {Name: "body"}}

		_, errStore := repository.NewStore(mock, slog.Default(), table)
		require.ErrorIs(t, errStore, repository.ErrInvalidTable)
	})
}
