package index

import "time"

// DocumentChunk is one retrievable unit of text extracted from a source file.
// All chunks for a file share the same SourceFile and are replaced together
// whenever the file changes; a chunk is never mutated in place.
type DocumentChunk struct {
	Content      string    `json:"content"`
	SourceFile   string    `json:"file"`
	LastModified time.Time `json:"lastModified"`
	IndexedAt    time.Time `json:"indexed"`
	SizeBytes    int64     `json:"size"`
}

// FileMeta is the per-file metadata recorded at indexing time, used by the
// change detector to decide whether a file needs re-extraction.
type FileMeta struct {
	LastModified time.Time
	SizeBytes    int64
}

// valid reports whether a chunk loaded from a snapshot is well-formed.
func (c DocumentChunk) valid() bool {
	return c.SourceFile != "" && c.Content != ""
}
