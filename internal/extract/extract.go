// Package extract defines the boundary between the indexer and the
// format-specific text converters. The core only needs a pure function from
// (path, extension) to plain text; converting binary office formats lives
// behind this interface.
package extract

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// Extensions is the allowlist of file extensions the scanner considers.
// Keys are lowercase and include the leading dot.
var Extensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".json": true,
	".csv":  true,
	".mmd":  true,
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".xlsx": true,
	".xls":  true,
	".pptx": true,
	".ppt":  true,
	".eml":  true,
	".msg":  true,
}

// plainTextExts are read directly from disk; everything else on the
// allowlist needs a registered converter.
var plainTextExts = map[string]bool{
	".md":   true,
	".txt":  true,
	".json": true,
	".csv":  true,
	".mmd":  true,
}

// Extractor converts a file into plain text. Implementations must return a
// descriptive error rather than empty or garbage text on failure; the
// scanner records a placeholder for the file and continues.
type Extractor interface {
	Extract(path, ext string) (string, error)
}

// ConvertFunc converts one binary-format file into plain text.
type ConvertFunc func(path string) (string, error)

// Plaintext is the default extractor. Plain-text formats are read directly;
// binary formats are delegated to registered converters.
type Plaintext struct {
	converters map[string]ConvertFunc
}

// New creates an extractor with no binary converters registered.
func New() *Plaintext {
	return &Plaintext{converters: make(map[string]ConvertFunc)}
}

// Register installs a converter for a binary extension (e.g. ".pdf").
func (p *Plaintext) Register(ext string, fn ConvertFunc) {
	p.converters[ext] = fn
}

// Extract returns the plain text of the file at path.
func (p *Plaintext) Extract(path, ext string) (string, error) {
	if plainTextExts[ext] {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s is not valid UTF-8 text", path)
		}
		return string(data), nil
	}
	if fn, ok := p.converters[ext]; ok {
		text, err := fn(path)
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", path, err)
		}
		return text, nil
	}
	return "", fmt.Errorf("no text converter registered for %s files", ext)
}
