package docstore

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/emergent.relations/pkg/apperror"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// storeContract runs the behavior every backend shares.
func storeContract(t *testing.T, store Store, collection string) {
	ctx := context.Background()

	_, err := store.Put(ctx, collection, Record{"id": "t1", "name": "acme"})
	require.NoError(t, err)
	_, err = store.Put(ctx, collection, Record{"id": "t2", "name": "umbrella"})
	require.NoError(t, err)

	t.Run("batch read returns only existing ids", func(t *testing.T) {
		recs, err := store.BatchReadByIDs(ctx, collection, []string{"t1", "missing", "t2", "t1"})
		require.NoError(t, err)
		require.Len(t, recs, 2)

		names := map[string]any{}
		for _, rec := range recs {
			names[rec["id"].(string)] = rec["name"]
		}
		assert.Equal(t, map[string]any{"t1": "acme", "t2": "umbrella"}, names)
	})

	t.Run("unknown collection is empty", func(t *testing.T) {
		recs, err := store.BatchReadByIDs(ctx, collection+"-unknown", []string{"t1"})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("empty id list", func(t *testing.T) {
		recs, err := store.BatchReadByIDs(ctx, collection, nil)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("put replaces", func(t *testing.T) {
		_, err := store.Put(ctx, collection, Record{"id": "t1", "name": "acme 2"})
		require.NoError(t, err)

		recs, err := store.BatchReadByIDs(ctx, collection, []string{"t1"})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "acme 2", recs[0]["name"])
	})

	t.Run("put assigns an id", func(t *testing.T) {
		rec, err := store.Put(ctx, collection, Record{"name": "new"})
		require.NoError(t, err)

		id, ok := rec["id"].(string)
		require.True(t, ok)
		_, err = uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("list pages", func(t *testing.T) {
		all, err := store.List(ctx, collection, ListOptions{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		page, err := store.List(ctx, collection, ListOptions{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, page, 1)

		past, err := store.List(ctx, collection, ListOptions{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, past)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(), "Team")
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := Record{"id": "u1", "username": "bob"}
	_, err := store.Put(ctx, "User", in)
	require.NoError(t, err)
	in["username"] = "mallory"

	recs, err := store.BatchReadByIDs(ctx, "User", []string{"u1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "bob", recs[0]["username"])

	recs[0]["username"] = "eve"
	again, err := store.BatchReadByIDs(ctx, "User", []string{"u1"})
	require.NoError(t, err)
	assert.Equal(t, "bob", again[0]["username"])
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Put(ctx, "Report", Record{"id": id})
		require.NoError(t, err)
	}

	recs, err := store.List(ctx, "Report", ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0]["id"])
	assert.Equal(t, "b", recs[1]["id"])
}

func TestMemoryStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().BatchReadByIDs(ctx, "Team", []string{"t1"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPutValidation(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Put(context.Background(), "", Record{"id": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))

	_, err = store.Put(context.Background(), "Team", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestListOptionsNormalize(t *testing.T) {
	assert.Equal(t, ListOptions{Limit: DefaultListLimit}, ListOptions{}.normalize())
	assert.Equal(t, ListOptions{Limit: MaxListLimit, Offset: 0}, ListOptions{Limit: 1000, Offset: -3}.normalize())
	assert.Equal(t, ListOptions{Limit: 10, Offset: 5}, ListOptions{Limit: 10, Offset: 5}.normalize())
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "abc", recordID(Record{"id": "abc"}))
	assert.Equal(t, "12", recordID(Record{"id": float64(12)}))
	assert.Equal(t, "", recordID(Record{"id": 1.5}))
	assert.Equal(t, "", recordID(Record{}))
}
