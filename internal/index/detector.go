package index

import (
	"fmt"
	"os"
)

// NeedsReindex reports whether the file at path must be re-extracted, given
// the metadata recorded when it was last indexed (nil if never indexed).
// The check compares modification time and size only; clock skew or coarse
// mtime resolution can cause missed or redundant reprocessing, which is an
// accepted approximation.
//
// A file that cannot be stat'ed is treated as unchanged and the error is
// returned so the caller can log it — reprocessing a file we cannot read
// would only fail again.
func NeedsReindex(path string, prev *FileMeta) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if prev == nil {
		return true, nil
	}
	return !info.ModTime().Equal(prev.LastModified) || info.Size() != prev.SizeBytes, nil
}
