package localmedia

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

func TestArchivePut(t *testing.T) {
	root := t.TempDir()
	a, err := NewArchive(root, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, a.Put(context.Background(), "diagnoses/p1/photo.jpg", []byte("jpeg"), "image/jpeg"))

	got, err := os.ReadFile(filepath.Join(root, "diagnoses", "p1", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(got))

	entries, err := os.ReadDir(filepath.Join(root, "diagnoses", "p1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestArchiveRejectsBadKeys(t *testing.T) {
	a, err := NewArchive(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	for _, key := range []string{"", "  ", "../outside.jpg", "a/../../outside.jpg"} {
		assert.Error(t, a.Put(context.Background(), key, []byte("x"), "image/jpeg"), key)
	}
}

func TestArchiveCancelled(t *testing.T) {
	a, err := NewArchive(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, a.Put(ctx, "k.jpg", []byte("x"), "image/jpeg"), context.Canceled)
}

func TestNewArchiveEmptyRoot(t *testing.T) {
	_, err := NewArchive(" ", logger.Nop())
	assert.Error(t, err)
}
