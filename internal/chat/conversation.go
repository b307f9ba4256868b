package chat

import (
	"sync"

	"github.com/MattJColes/icarus-sub001/internal/llm"
)

// Conversation is the shared chat history, appended by the generation
// runner and read when building prompts. Its own lock lets the UI goroutine
// and the runner goroutine touch it safely.
type Conversation struct {
	mu    sync.Mutex
	msgs  []llm.Message
	limit int
}

// NewConversation creates a history capped at limit messages (0 = unlimited).
func NewConversation(limit int) *Conversation {
	return &Conversation{limit: limit}
}

// Snapshot returns a copy of the history.
func (c *Conversation) Snapshot() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Append adds messages, dropping the oldest beyond the limit.
func (c *Conversation) Append(msgs ...llm.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msgs...)
	if c.limit > 0 && len(c.msgs) > c.limit {
		c.msgs = c.msgs[len(c.msgs)-c.limit:]
	}
}

// Clear empties the history.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}
