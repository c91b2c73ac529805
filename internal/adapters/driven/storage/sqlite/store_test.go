package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite cache for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DBFile), store.Path())
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/dev/null/invalid")
	assert.Error(t, err)
}

func TestNewStore_MigrationsRecorded(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	var version int
	require.NoError(t, store.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, store.Close())

	// Reopening does not re-run migrations.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	require.NoError(t, reopened.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_PutGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	vec := []float32{0.25, -1.5, 3e-8}
	require.NoError(t, store.Put(ctx, "k1", "model-a", vec))

	got, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestStore_Get_Miss(t *testing.T) {
	store := setupTestStore(t)

	got, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_Put_Overwrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "m", []float32{1}))
	require.NoError(t, store.Put(ctx, "k", "m", []float32{2, 3}))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{2, 3}, got)
}

func TestStore_Put_RejectsEmpty(t *testing.T) {
	store := setupTestStore(t)
	assert.Error(t, store.Put(context.Background(), "k", "m", nil))
}

func TestStore_CountAndPurge(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", "old", []float32{1}))
	require.NoError(t, store.Put(ctx, "b", "new", []float32{1}))
	require.NoError(t, store.Put(ctx, "c", "new", []float32{1}))

	n, err := store.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = store.Count(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := store.Purge(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", "m", []float32{4, 5}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{4, 5}, got)
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1, -1, 3.14159}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice([]byte{1, 2, 3}))
}
