package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunk(file, content string, mod time.Time) DocumentChunk {
	return DocumentChunk{
		Content:      content,
		SourceFile:   file,
		LastModified: mod,
		IndexedAt:    mod,
		SizeBytes:    int64(len(content)),
	}
}

func TestStoreUpsertReplacesFileChunks(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "index.json"))
	mod := time.Now().UTC()

	s.UpsertFile("a.md", []DocumentChunk{
		testChunk("a.md", "first version part one", mod),
		testChunk("a.md", "first version part two", mod),
	})
	s.UpsertFile("b.md", []DocumentChunk{testChunk("b.md", "unrelated", mod)})
	require.Equal(t, 3, s.Len())

	s.UpsertFile("a.md", []DocumentChunk{testChunk("a.md", "second version", mod)})
	assert.Equal(t, 2, s.Len())

	var contents []string
	for _, c := range s.Snapshot() {
		if c.SourceFile == "a.md" {
			contents = append(contents, c.Content)
		}
	}
	assert.Equal(t, []string{"second version"}, contents)
}

func TestStoreRemoveFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "index.json"))
	mod := time.Now().UTC()
	s.UpsertFile("a.md", []DocumentChunk{
		testChunk("a.md", "one", mod),
		testChunk("a.md", "two", mod),
	})

	assert.Equal(t, 2, s.RemoveFile("a.md"))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.RemoveFile("missing.md"))
}

func TestStorePruneMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "index.json"))
	mod := time.Now().UTC()
	s.UpsertFile("keep.md", []DocumentChunk{testChunk("keep.md", "kept", mod)})
	s.UpsertFile("gone.md", []DocumentChunk{
		testChunk("gone.md", "one", mod),
		testChunk("gone.md", "two", mod),
	})

	checks := 0
	removed := s.PruneMissing(func(file string) bool {
		checks++
		return file == "keep.md"
	})

	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"keep.md"}, s.Files())
	// The exists check runs once per file, not once per chunk.
	assert.Equal(t, 2, checks)
}

func TestStoreFileMeta(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "index.json"))
	mod := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.UpsertFile("a.md", []DocumentChunk{{
		Content:      "body",
		SourceFile:   "a.md",
		LastModified: mod,
		IndexedAt:    time.Now(),
		SizeBytes:    42,
	}})

	meta, ok := s.FileMeta("a.md")
	require.True(t, ok)
	assert.True(t, meta.LastModified.Equal(mod))
	assert.Equal(t, int64(42), meta.SizeBytes)

	_, ok = s.FileMeta("unknown.md")
	assert.False(t, ok)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	mod := time.Date(2026, 5, 10, 8, 30, 0, 0, time.UTC)

	s := NewStore(path)
	s.UpsertFile("notes/a.md", []DocumentChunk{testChunk("notes/a.md", "the quick brown fox", mod)})
	s.UpsertFile("b.txt", []DocumentChunk{testChunk("b.txt", "jumps over the lazy dog", mod)})
	require.NoError(t, s.Save())

	loaded := NewStore(path)
	require.NoError(t, loaded.Load())
	require.Equal(t, 2, loaded.Len())

	orig, got := s.Snapshot(), loaded.Snapshot()
	for i := range orig {
		assert.Equal(t, orig[i].Content, got[i].Content)
		assert.Equal(t, orig[i].SourceFile, got[i].SourceFile)
		assert.Equal(t, orig[i].SizeBytes, got[i].SizeBytes)
		assert.True(t, orig[i].LastModified.Equal(got[i].LastModified))
	}
}

func TestStoreLoadMissingFileStartsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope", "index.json"))
	require.NoError(t, s.Load())
	assert.Equal(t, 0, s.Len())
}

func TestStoreLoadMalformedSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path)
	require.NoError(t, s.Load())
	assert.Equal(t, 0, s.Len())
}

func TestStoreRestoreRejectsMalformedRecords(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "index.json"))
	mod := time.Now().UTC()

	err := s.Restore([]DocumentChunk{
		testChunk("a.md", "fine", mod),
		{Content: "no source file"},
	})
	require.Error(t, err)
	// A snapshot is all-or-nothing.
	assert.Equal(t, 0, s.Len())
}

func TestStoreFilesFirstSeenOrder(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "index.json"))
	mod := time.Now().UTC()
	s.UpsertFile("b.md", []DocumentChunk{testChunk("b.md", "x", mod)})
	s.UpsertFile("a.md", []DocumentChunk{testChunk("a.md", "y", mod)})
	s.UpsertFile("c.md", []DocumentChunk{testChunk("c.md", "z", mod)})

	assert.Equal(t, []string{"b.md", "a.md", "c.md"}, s.Files())
}

func TestStoreClearPersistsEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	s := NewStore(path)
	s.UpsertFile("a.md", []DocumentChunk{testChunk("a.md", "body", time.Now())})
	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())

	loaded := NewStore(path)
	require.NoError(t, loaded.Load())
	assert.Equal(t, 0, loaded.Len())
}
