package index

import (
	"regexp"
	"strings"
)

// minChunkLen filters out headers and stray whitespace left over from
// paragraph splitting.
const minChunkLen = 50

var paragraphBreak = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// SplitChunks splits extracted plain text into retrievable chunks on
// blank-line boundaries. Fragments shorter than minChunkLen are discarded as
// noise. If nothing survives filtering, the entire trimmed text is emitted
// as a single chunk so a non-empty document is never dropped entirely.
//
// This is a structural heuristic, not semantic chunking: no token-aware
// splitting is performed.
func SplitChunks(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var chunks []string
	for _, part := range paragraphBreak.Split(trimmed, -1) {
		part = strings.TrimSpace(part)
		if len(part) >= minChunkLen {
			chunks = append(chunks, part)
		}
	}
	if len(chunks) == 0 {
		return []string{trimmed}
	}
	return chunks
}
