package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store holds the indexed chunks in memory and persists them as a single
// JSON snapshot file. All methods are safe for concurrent use; retrieval
// reads under the same lock that guards scanner mutations, so a search never
// observes a half-applied update.
type Store struct {
	mu     sync.RWMutex
	chunks []DocumentChunk
	path   string
}

// NewStore creates an empty store that persists to the given snapshot path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// UpsertFile replaces every chunk recorded for file with the given chunks.
// Removal and append happen under one lock so readers never see a file
// partially updated.
func (s *Store) UpsertFile(file string, chunks []DocumentChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(file)
	s.chunks = append(s.chunks, chunks...)
}

// RemoveFile deletes all chunks for file and returns how many were removed.
// Removing an unknown file is a no-op.
func (s *Store) RemoveFile(file string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(file)
}

func (s *Store) removeLocked(file string) int {
	kept := s.chunks[:0]
	removed := 0
	for _, c := range s.chunks {
		if c.SourceFile == file {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.chunks = kept
	return removed
}

// PruneMissing removes every chunk whose source file fails the exists check
// and returns the number of chunks removed.
func (s *Store) PruneMissing(exists func(file string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	kept := s.chunks[:0]
	removed := 0
	for _, c := range s.chunks {
		ok, checked := seen[c.SourceFile]
		if !checked {
			ok = exists(c.SourceFile)
			seen[c.SourceFile] = ok
		}
		if !ok {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.chunks = kept
	return removed
}

// FileMeta returns the metadata of the most recently indexed chunk for file.
func (s *Store) FileMeta(file string) (FileMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var meta FileMeta
	var latest time.Time
	found := false
	for _, c := range s.chunks {
		if c.SourceFile != file {
			continue
		}
		if !found || c.IndexedAt.After(latest) {
			latest = c.IndexedAt
			meta = FileMeta{LastModified: c.LastModified, SizeBytes: c.SizeBytes}
		}
		found = true
	}
	return meta, found
}

// Snapshot returns a copy of the full chunk collection.
func (s *Store) Snapshot() []DocumentChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DocumentChunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Restore replaces the store contents wholesale. If any record is malformed
// the whole payload is discarded and the store starts empty — a snapshot is
// never partially loaded.
func (s *Store) Restore(chunks []DocumentChunk) error {
	for i, c := range chunks {
		if !c.valid() {
			s.mu.Lock()
			s.chunks = nil
			s.mu.Unlock()
			return fmt.Errorf("snapshot record %d is malformed, starting with an empty index", i)
		}
	}
	s.mu.Lock()
	s.chunks = append([]DocumentChunk(nil), chunks...)
	s.mu.Unlock()
	return nil
}

// Len returns the number of chunks currently indexed.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Files returns the distinct source files in the index, in first-seen order.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var files []string
	for _, c := range s.chunks {
		if !seen[c.SourceFile] {
			seen[c.SourceFile] = true
			files = append(files, c.SourceFile)
		}
	}
	return files
}

// Load reads the snapshot file from disk. A missing file starts the index
// empty; a malformed payload is discarded with a warning rather than treated
// as a fatal error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var chunks []DocumentChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		fmt.Fprintf(os.Stderr, "warning: snapshot %s is not a valid chunk array, starting empty: %v\n", s.path, err)
		return nil
	}
	if err := s.Restore(chunks); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return nil
}

// Save writes the full chunk collection to the snapshot file as
// pretty-printed JSON, creating the parent directory if needed.
func (s *Store) Save() error {
	chunks := s.Snapshot()
	if chunks == nil {
		chunks = []DocumentChunk{}
	}
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.path, err)
	}
	return nil
}

// Clear removes every chunk and persists the now-empty snapshot.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.chunks = nil
	s.mu.Unlock()
	return s.Save()
}
