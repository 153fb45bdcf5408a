package repository_test

import (
	"sync"
	"testing"

	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/UnknownOlympus/proximity/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := repository.NewMemoryBusinesses()

		require.NoError(t, store.Add(ctx, denver()))

		got, err := store.Get(ctx, "denver-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, denver(), *got)
	})

	t.Run("absent returns nil", func(t *testing.T) {
		t.Parallel()
		got, err := repository.NewMemoryBusinesses().Get(t.Context(), "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate add", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := repository.NewMemoryBusinesses()

		require.NoError(t, store.Add(ctx, denver()))
		require.ErrorIs(t, store.Add(ctx, denver()), repository.ErrAlreadyExists)
	})

	t.Run("update replaces every field", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := repository.NewMemoryBusinesses()
		require.NoError(t, store.Add(ctx, denver()))

		replaced := models.Business{ID: "denver-1", City: "Denver", Location: models.Point{Latitude: 1, Longitude: 2}}
		require.NoError(t, store.Update(ctx, replaced))

		got, err := store.Get(ctx, "denver-1")
		require.NoError(t, err)
		assert.Equal(t, replaced, *got)
		assert.Empty(t, got.Address)
	})

	t.Run("update missing", func(t *testing.T) {
		t.Parallel()
		err := repository.NewMemoryBusinesses().Update(t.Context(), denver())
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := repository.NewMemoryBusinesses()
		require.NoError(t, store.Add(ctx, denver()))

		require.NoError(t, store.Delete(ctx, "denver-1"))
		require.NoError(t, store.Delete(ctx, "denver-1"))

		got, err := store.Get(ctx, "denver-1")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Zero(t, store.Len())
	})

	t.Run("concurrent add has one winner", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := repository.NewMemoryBusinesses()

		const workers = 16
		errs := make([]error, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = store.Add(ctx, denver())
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			require.ErrorIs(t, err, repository.ErrAlreadyExists)
		}
		assert.Equal(t, 1, succeeded)
	})
}

func TestMemoryStore_UpdateWhere(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) *repository.MemoryBusinesses {
		t.Helper()
		store := repository.NewMemoryBusinesses()
		for _, b := range []models.Business{
			{ID: "a", City: "Denver", State: "CO"},
			{ID: "b", City: "Denver", State: "CO"},
			{ID: "c", City: "Boulder", State: "CO"},
		} {
			require.NoError(t, store.Add(t.Context(), b))
		}
		return store
	}

	t.Run("replaces only the first match", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := seed(t)

		err := store.UpdateWhere(ctx, models.Business{ID: "a", City: "Aurora"}, repository.Eq("city", "Denver"))
		require.NoError(t, err)

		a, _ := store.Get(ctx, "a")
		b, _ := store.Get(ctx, "b")
		assert.Equal(t, "Aurora", a.City)
		assert.Empty(t, a.State)
		assert.Equal(t, "Denver", b.City)
	})

	t.Run("conjunction and match predicates", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := seed(t)

		err := store.UpdateWhere(ctx, models.Business{ID: "c", City: "Golden"}, repository.And(
			repository.Eq("state", "CO"),
			repository.Match(func(b models.Business) bool { return b.City == "Boulder" }),
		))
		require.NoError(t, err)

		c, _ := store.Get(ctx, "c")
		assert.Equal(t, "Golden", c.City)
	})

	t.Run("can move the record to a new key", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		store := seed(t)

		require.NoError(t, store.UpdateWhere(ctx, models.Business{ID: "z"}, repository.Eq("business_id", "c")))

		old, _ := store.Get(ctx, "c")
		moved, _ := store.Get(ctx, "z")
		assert.Nil(t, old)
		assert.NotNil(t, moved)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("new key already taken", func(t *testing.T) {
		t.Parallel()
		err := seed(t).UpdateWhere(t.Context(), models.Business{ID: "a"}, repository.Eq("business_id", "c"))
		require.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		t.Parallel()
		store := seed(t)
		require.NoError(t, store.UpdateWhere(t.Context(), models.Business{ID: "q"}, repository.Eq("city", "Atlantis")))
		assert.Equal(t, 3, store.Len())
	})

	t.Run("raw sql is unsupported", func(t *testing.T) {
		t.Parallel()
		err := seed(t).UpdateWhere(t.Context(), models.Business{ID: "a"}, repository.Where("city = ?", "Denver"))
		require.ErrorIs(t, err, repository.ErrUnsupportedPredicate)
	})

	t.Run("unknown column", func(t *testing.T) {
		t.Parallel()
		err := seed(t).UpdateWhere(t.Context(), models.Business{ID: "a"}, repository.Eq("rating", 5))
		require.ErrorIs(t, err, repository.ErrUnsupportedPredicate)
	})
}
