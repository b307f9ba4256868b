package rag

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MattJColes/icarus-sub001/internal/index"
	"github.com/MattJColes/icarus-sub001/internal/llm"
)

const systemPrompt = `You are a personal document assistant. You answer questions using the user's own documents when relevant context is provided below.

Reference the source file names when your answer draws on retrieved context. If the context doesn't contain enough information to answer, say so rather than guessing. Keep answers concise.`

const excerptLen = 200

// Source describes one retrieved document excerpt shown to the user as
// retrieval feedback.
type Source struct {
	File         string
	Excerpt      string
	LastModified time.Time
}

// Sources is the retrieval feedback emitted before generation begins, so the
// user sees what was found even if generation later fails.
type Sources struct {
	Query   string
	Sources []Source
}

// SourcesFromHits converts retrieval hits into user-facing feedback.
func SourcesFromHits(query string, hits []index.Hit) Sources {
	out := Sources{Query: query}
	for _, h := range hits {
		excerpt := h.Chunk.Content
		if len(excerpt) > excerptLen {
			// Back up to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := excerptLen
			for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
				cut--
			}
			excerpt = excerpt[:cut] + "..."
		}
		out.Sources = append(out.Sources, Source{
			File:         h.Chunk.SourceFile,
			Excerpt:      excerpt,
			LastModified: h.Chunk.LastModified,
		})
	}
	return out
}

// BuildMessages constructs the message list for the model from retrieved
// chunks, conversation history, and the current question. The context
// message is inserted immediately before the newest user message, never
// after — the model must see retrieved context before the live question.
func BuildMessages(hits []index.Hit, history []llm.Message, question string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+3)
	msgs = append(msgs, llm.Message{Role: "system", Content: systemPrompt})
	msgs = append(msgs, history...)

	if len(hits) > 0 {
		var ctx strings.Builder
		ctx.WriteString("Here is relevant context from the user's documents:\n\n")
		for i, h := range hits {
			fmt.Fprintf(&ctx, "--- Source %d: %s (modified %s) ---\n",
				i+1, h.Chunk.SourceFile, h.Chunk.LastModified.Format("2006-01-02"))
			ctx.WriteString(h.Chunk.Content)
			ctx.WriteString("\n\n")
		}
		msgs = append(msgs, llm.Message{Role: "user", Content: ctx.String()})
	}

	msgs = append(msgs, llm.Message{Role: "user", Content: question})
	return msgs
}
