package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entradas-backend/internal/storage"
)

func TestLocalBackend_StoreRetrieveRemove(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewLocalBackend(dir, filepath.Join(dir, "fallback"))
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}

	locator, err := backend.Store(ctx, "general_1700000000000", data)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(locator))

	got, err := backend.Retrieve(ctx, locator)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, backend.Remove(ctx, locator))

	_, err = backend.Retrieve(ctx, locator)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalBackend_RemoveAbsentIsNoError(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewLocalBackend(dir, filepath.Join(dir, "fallback"))
	require.NoError(t, err)

	assert.NoError(t, backend.Remove(context.Background(), filepath.Join(dir, "missing.jpg")))
}

func TestLocalBackend_FallsBackWhenDirUncreatable(t *testing.T) {
	base := t.TempDir()

	// A path below a regular file cannot be created as a directory.
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	fallback := filepath.Join(base, "fallback")
	backend, err := storage.NewLocalBackend(filepath.Join(blocker, "photos"), fallback)
	require.NoError(t, err)

	locator, err := backend.Store(context.Background(), "vip_1700000000000", []byte("bytes"))
	require.NoError(t, err)
	assert.Contains(t, locator, "fallback")
}

func TestLocalBackend_RetrieveMissing(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewLocalBackend(dir, filepath.Join(dir, "fallback"))
	require.NoError(t, err)

	_, err = backend.Retrieve(context.Background(), filepath.Join(dir, "nope.jpg"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
