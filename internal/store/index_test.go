// Package store_test tests the on-disk state stores.
package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagewatch/pagewatch/internal/store"
)

func TestNewIndexRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := store.NewIndex("")
	assert.Error(t, err)
}

func TestIndexLoadMissingFile(t *testing.T) {
	t.Parallel()

	idx, err := store.NewIndex(filepath.Join(t.TempDir(), "index.json"))
	require.NoError(t, err)

	m, err := idx.Load()
	require.NoError(t, err)
	assert.Empty(t, m, "a missing index file means no source has ever been processed")
}

func TestIndexRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "index.json")
	idx, err := store.NewIndex(path)
	require.NoError(t, err)

	want := map[string]string{
		"news":   "abc123",
		"alerts": "def456",
	}
	require.NoError(t, idx.Save(want))

	got, err := idx.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The file stays hand-readable JSON.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\"news\": \"abc123\"")
}

func TestIndexLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	idx, err := store.NewIndex(path)
	require.NoError(t, err)
	_, err = idx.Load()
	assert.Error(t, err)
}

func TestIndexSaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.json")
	idx, err := store.NewIndex(path)
	require.NoError(t, err)

	require.NoError(t, idx.Save(map[string]string{"news": "v1"}))
	require.NoError(t, idx.Save(map[string]string{"news": "v2"}))

	got, err := idx.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"news": "v2"}, got)
}
