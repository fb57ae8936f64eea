package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestPutAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	fetched := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, Entry{
		Name:      "starter",
		Location:  "gh:acme/starter",
		Path:      "/cache/starter",
		FetchedAt: fetched,
	}))

	entry, err := store.Get(ctx, "starter")
	require.NoError(t, err)
	require.Equal(t, "gh:acme/starter", entry.Location)
	require.Equal(t, "/cache/starter", entry.Path)
	require.True(t, entry.FetchedAt.Equal(fetched))
}

func TestPutUpsertsByName(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Entry{Name: "starter", Location: "old", Path: "/old"}))
	require.NoError(t, store.Put(ctx, Entry{Name: "starter", Location: "new", Path: "/new"}))

	entry, err := store.Get(ctx, "starter")
	require.NoError(t, err)
	require.Equal(t, "new", entry.Location)

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPutRequiresName(t *testing.T) {
	store := testStore(t)
	require.Error(t, store.Put(context.Background(), Entry{Location: "gh:acme/starter"}))
}

func TestGetUnknown(t *testing.T) {
	store := testStore(t)
	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrderedByName(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.Put(ctx, Entry{Name: name, Location: name, Path: "/" + name}))
	}

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "alpha", entries[0].Name)
	require.Equal(t, "mid", entries[1].Name)
	require.Equal(t, "zeta", entries[2].Name)
}

func TestDeleteRemovesRowAndDirectory(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "starter")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, store.Put(ctx, Entry{Name: "starter", Location: "gh:acme/starter", Path: dir}))

	require.NoError(t, store.Delete(ctx, "starter"))

	_, err := store.Get(ctx, "starter")
	require.ErrorIs(t, err, ErrNotFound)
	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr))
}

func TestDeleteUnknown(t *testing.T) {
	store := testStore(t)
	require.ErrorIs(t, store.Delete(context.Background(), "nope"), ErrNotFound)
}
