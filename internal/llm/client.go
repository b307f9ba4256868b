package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the generation parameters forwarded to the model service.
type Options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

// Reply is the accumulated final answer of one streamed generation.
type Reply struct {
	Content         string
	Thinking        string
	PromptEvalCount int
	EvalCount       int
}

// Client calls the Ollama HTTP API for streamed generative responses.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a chat client targeting the given Ollama instance and model.
func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

// Chat sends a conversation to the model and streams the response. Every
// decoded event is forwarded to onEvent (if non-nil) as it arrives, for
// incremental display; the content and thinking fragments are accumulated
// across all events and returned as the final reply once the terminal event
// arrives or the transport ends.
//
// Transport and status failures return an error with no partial result.
// Malformed records mid-stream are skipped by the decoder, not fatal.
func (c *Client) Chat(ctx context.Context, messages []Message, opts *Options, onEvent func(StreamEvent)) (*Reply, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
		Options:  opts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode, string(respBody))
	}

	dec := NewDecoder()
	var content, thinking strings.Builder
	reply := &Reply{}

	apply := func(ev StreamEvent) bool {
		content.WriteString(ev.Message.Content)
		thinking.WriteString(ev.Message.Thinking)
		if onEvent != nil {
			onEvent(ev)
		}
		if ev.Done {
			reply.PromptEvalCount = ev.PromptEvalCount
			reply.EvalCount = ev.EvalCount
		}
		return ev.Done
	}

	buf := make([]byte, 4096)
	terminal := false
	for !terminal {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				if apply(ev) {
					terminal = true
					break
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				return nil, fmt.Errorf("read chat stream: %w", readErr)
			}
			if !terminal {
				if ev, ok := dec.Flush(); ok {
					apply(ev)
				}
			}
			break
		}
	}

	reply.Content = content.String()
	reply.Thinking = thinking.String()
	return reply, nil
}
