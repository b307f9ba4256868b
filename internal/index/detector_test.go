package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsReindexNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	needed, err := NeedsReindex(path, nil)
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestNeedsReindexUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	prev := &FileMeta{LastModified: info.ModTime(), SizeBytes: info.Size()}
	needed, err := NeedsReindex(path, prev)
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestNeedsReindexSizeChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	// Same mtime, different recorded size.
	prev := &FileMeta{LastModified: info.ModTime(), SizeBytes: info.Size() + 1}
	needed, err := NeedsReindex(path, prev)
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestNeedsReindexMtimeChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	prev := &FileMeta{
		LastModified: info.ModTime().Add(-time.Minute),
		SizeBytes:    info.Size(),
	}
	needed, err := NeedsReindex(path, prev)
	require.NoError(t, err)
	assert.True(t, needed)
}

func TestNeedsReindexStatError(t *testing.T) {
	needed, err := NeedsReindex(filepath.Join(t.TempDir(), "missing.md"), nil)
	assert.Error(t, err)
	assert.False(t, needed)
}
