package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MattJColes/icarus-sub001/internal/extract"
	"github.com/MattJColes/icarus-sub001/internal/walker"
)

// ErrScanInProgress is returned when a scan is requested while another scan
// is still running. Scans are mutually exclusive.
var ErrScanInProgress = errors.New("a scan is already in progress")

// ProgressFunc receives the file currently being processed and the running
// completed/total counts. Scans can take a while on large directories, so
// progress is emitted as a callback rather than a return value.
type ProgressFunc func(file string, done, total int)

// Result reports what a scan did.
type Result struct {
	FilesTotal     int
	FilesProcessed int
	FilesSkipped   int
	FilesFailed    int
	ChunksPruned   int
	UpToDate       bool
}

// Scanner reconciles the configured root directories against the store:
// stale entries are pruned, changed and new files are re-extracted and
// re-chunked, and the snapshot is persisted when anything changed.
type Scanner struct {
	store     *Store
	extractor extract.Extractor
	roots     []string
	progress  ProgressFunc

	mu         sync.Mutex
	inProgress bool
	lastScan   time.Time
}

// NewScanner creates a scanner over the given root directories.
func NewScanner(store *Store, extractor extract.Extractor, roots []string) *Scanner {
	return &Scanner{store: store, extractor: extractor, roots: roots}
}

// OnProgress registers a callback invoked after each file is handled.
func (s *Scanner) OnProgress(fn ProgressFunc) {
	s.progress = fn
}

// InProgress reports whether a scan is currently running.
func (s *Scanner) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress
}

// LastScan returns when the last scan finished, or the zero time if none ran.
func (s *Scanner) LastScan() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// SetRoots replaces the scanned root directories. Takes effect on the next
// scan.
func (s *Scanner) SetRoots(roots []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = roots
}

// Scan runs one full indexing pass. Per-file read and extraction failures
// are recorded and skipped; one bad file never aborts the pass. If no file
// changed and nothing was pruned, the persisted snapshot is left untouched
// and the result reports up to date.
func (s *Scanner) Scan() (*Result, error) {
	s.mu.Lock()
	if s.inProgress {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.inProgress = true
	roots := append([]string(nil), s.roots...)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inProgress = false
		s.lastScan = time.Now()
		s.mu.Unlock()
	}()

	res := &Result{}

	// Drop entries for files deleted since the last pass before anything
	// else, so they cannot show up in retrieval mid-scan.
	res.ChunksPruned = s.store.PruneMissing(func(file string) bool {
		for _, root := range roots {
			if _, err := os.Stat(filepath.Join(root, file)); err == nil {
				return true
			}
		}
		return false
	})

	var candidates []walker.FileInfo
	for _, root := range roots {
		files, errs := walker.Walk(root, extract.Extensions)
		for fi := range files {
			candidates = append(candidates, fi)
		}
		if err := <-errs; err != nil {
			fmt.Fprintf(os.Stderr, "warning: walking %s: %v\n", root, err)
		}
	}
	res.FilesTotal = len(candidates)

	done := 0
	for _, fi := range candidates {
		done++

		var prev *FileMeta
		if meta, ok := s.store.FileMeta(fi.RelPath); ok {
			prev = &meta
		}
		needed, err := NeedsReindex(fi.Path, prev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		if !needed {
			res.FilesSkipped++
			s.emitProgress(fi.RelPath, done, res.FilesTotal)
			continue
		}

		chunks := s.processFile(fi, res)
		if len(chunks) == 0 {
			// Document emptied out; drop whatever was indexed for it.
			s.store.RemoveFile(fi.RelPath)
		} else {
			s.store.UpsertFile(fi.RelPath, chunks)
		}
		res.FilesProcessed++
		s.emitProgress(fi.RelPath, done, res.FilesTotal)
	}

	if res.FilesProcessed == 0 && res.ChunksPruned == 0 {
		res.UpToDate = true
		return res, nil
	}
	if err := s.store.Save(); err != nil {
		return res, fmt.Errorf("persist snapshot: %w", err)
	}
	return res, nil
}

// processFile extracts and chunks one file. An extraction failure yields a
// single placeholder chunk so the file is not silently missing from the
// index.
func (s *Scanner) processFile(fi walker.FileInfo, res *Result) []DocumentChunk {
	now := time.Now()
	ext := strings.ToLower(filepath.Ext(fi.Path))

	text, err := s.extractor.Extract(fi.Path, ext)
	var parts []string
	if err != nil {
		res.FilesFailed++
		fmt.Fprintf(os.Stderr, "warning: extract %s: %v\n", fi.RelPath, err)
		parts = []string{fmt.Sprintf("[%s could not be read: %v]", fi.RelPath, err)}
	} else {
		parts = SplitChunks(text)
	}

	chunks := make([]DocumentChunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, DocumentChunk{
			Content:      p,
			SourceFile:   fi.RelPath,
			LastModified: fi.ModTime,
			IndexedAt:    now,
			SizeBytes:    fi.Size,
		})
	}
	return chunks
}

func (s *Scanner) emitProgress(file string, done, total int) {
	if s.progress != nil {
		s.progress(file, done, total)
	}
}
