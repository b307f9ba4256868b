package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattJColes/icarus-sub001/internal/extract"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestScanner(t *testing.T, roots ...string) (*Scanner, *Store) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "index.json"))
	return NewScanner(store, extract.New(), roots), store
}

func TestScanIndexesNewFiles(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", strings.Repeat("alpha content ", 10))
	writeDoc(t, root, "notes/b.txt", strings.Repeat("beta content ", 10))

	scanner, store := newTestScanner(t, root)

	var progressed int
	scanner.OnProgress(func(file string, done, total int) { progressed++ })

	res, err := scanner.Scan()
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesTotal)
	assert.Equal(t, 2, res.FilesProcessed)
	assert.Equal(t, 0, res.FilesFailed)
	assert.False(t, res.UpToDate)
	assert.Equal(t, 2, progressed)

	assert.ElementsMatch(t, []string{"a.md", "notes/b.txt"}, store.Files())
	assert.False(t, scanner.LastScan().IsZero())
}

func TestScanSecondPassIsUpToDate(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", strings.Repeat("alpha content ", 10))

	scanner, store := newTestScanner(t, root)
	_, err := scanner.Scan()
	require.NoError(t, err)
	before := store.Snapshot()

	res, err := scanner.Scan()
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
	assert.Equal(t, 0, res.FilesProcessed)
	assert.Equal(t, 1, res.FilesSkipped)
	// Nothing changed, so the index contents are untouched.
	assert.Equal(t, before, store.Snapshot())
}

func TestScanReindexesChangedFile(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", strings.Repeat("original words ", 10))
	writeDoc(t, root, "b.md", strings.Repeat("stable words ", 10))

	scanner, store := newTestScanner(t, root)
	_, err := scanner.Scan()
	require.NoError(t, err)

	// Different length guarantees detection even with coarse mtimes.
	writeDoc(t, root, "a.md", strings.Repeat("rewritten longer words ", 10))

	res, err := scanner.Scan()
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesProcessed)
	assert.Equal(t, 1, res.FilesSkipped)

	hits := store.Search("rewritten", 0)
	require.NotEmpty(t, hits)
	assert.Empty(t, store.Search("original", 0))
}

func TestScanPrunesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", strings.Repeat("keep this one ", 10))
	gone := writeDoc(t, root, "b.md", strings.Repeat("doomed file text ", 10))

	scanner, store := newTestScanner(t, root)
	_, err := scanner.Scan()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.md", "b.md"}, store.Files())

	require.NoError(t, os.Remove(gone))

	res, err := scanner.Scan()
	require.NoError(t, err)
	assert.Equal(t, 1, res.ChunksPruned)
	assert.False(t, res.UpToDate)
	assert.Equal(t, []string{"a.md"}, store.Files())
}

func TestScanUnreadableFileGetsPlaceholder(t *testing.T) {
	root := t.TempDir()
	// No pdf converter is registered, so extraction fails.
	writeDoc(t, root, "report.pdf", "%PDF-1.4 binary payload")

	scanner, store := newTestScanner(t, root)
	res, err := scanner.Scan()
	require.NoError(t, err)
	assert.Equal(t, 1, res.FilesFailed)
	assert.Equal(t, 1, res.FilesProcessed)

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Contains(t, snap[0].Content, "report.pdf could not be read")
	assert.Equal(t, "report.pdf", snap[0].SourceFile)
}

func TestScanEmptiedFileDropsChunks(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", strings.Repeat("soon to vanish ", 10))

	scanner, store := newTestScanner(t, root)
	_, err := scanner.Scan()
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	writeDoc(t, root, "a.md", "")
	_, err = scanner.Scan()
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestScanPersistsSnapshot(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.md", strings.Repeat("persisted content ", 10))

	snapPath := filepath.Join(t.TempDir(), "index.json")
	store := NewStore(snapPath)
	scanner := NewScanner(store, extract.New(), []string{root})
	_, err := scanner.Scan()
	require.NoError(t, err)

	reloaded := NewStore(snapPath)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, store.Len(), reloaded.Len())
}

func TestScanMultipleRoots(t *testing.T) {
	root1, root2 := t.TempDir(), t.TempDir()
	writeDoc(t, root1, "one.md", strings.Repeat("first root file ", 10))
	writeDoc(t, root2, "two.md", strings.Repeat("second root file ", 10))

	scanner, store := newTestScanner(t, root1, root2)
	res, err := scanner.Scan()
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesProcessed)
	assert.ElementsMatch(t, []string{"one.md", "two.md"}, store.Files())
}
