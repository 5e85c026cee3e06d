package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile_pictures")
	store := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc.png", []byte("first")))
	require.NoError(t, store.Save(ctx, "abc.png", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.True(t, store.Exists("abc.png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	require.NoError(t, store.Remove("abc.png"))
	require.NoError(t, store.Remove("abc.png"))
	assert.False(t, store.Exists("abc.png"))
}

func TestLocalStoreRejectsPaths(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "..", "../escape.png", "nested/file.png"} {
		assert.Error(t, store.Save(ctx, name, []byte("x")), name)
	}
}
