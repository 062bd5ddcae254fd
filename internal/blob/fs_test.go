package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStoreRoundtrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := "uploads/20260301_100000_ab12_report.pdf"
	require.NoError(t, store.Put(ctx, key, []byte("content"), "application/pdf", "report.pdf"))

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, key), ErrNotFound)
}

func TestFSStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewFSStore(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFSStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFSStore(filepath.Join(dir, "root"))
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "..", "/etc/passwd", "a/../../b"} {
		assert.Error(t, store.Put(ctx, key, []byte("x"), "", ""), key)
		_, err := store.Get(ctx, key)
		assert.Error(t, err, key)
	}

	// Nothing escaped the root.
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSStorePublicURLUnsupported(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, store.PublicURL("uploads/x.pdf"))
}
