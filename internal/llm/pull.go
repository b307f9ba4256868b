package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// PullProgress is one record of the model pull stream. The stream ends when
// Status is "success".
type PullProgress struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
}

type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// Pull downloads a model through the Ollama /api/pull endpoint, reporting
// progress records to onProgress as they arrive.
func (c *Client) Pull(ctx context.Context, model string, onProgress func(PullProgress)) error {
	body, err := json.Marshal(pullRequest{Model: model, Stream: true})
	if err != nil {
		return fmt.Errorf("marshal pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama pull request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama pull returned %d: %s", resp.StatusCode, string(respBody))
	}

	var lines lineBuffer
	handle := func(line []byte) (done bool) {
		var p PullProgress
		if err := json.Unmarshal(line, &p); err != nil {
			fmt.Fprintf(os.Stderr, "warning: dropping malformed pull record: %v\n", err)
			return false
		}
		if onProgress != nil {
			onProgress(p)
		}
		return p.Status == "success"
	}

	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, line := range lines.feed(buf[:n]) {
				if handle(line) {
					return nil
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				return fmt.Errorf("read pull stream: %w", readErr)
			}
			if line, ok := lines.flush(); ok && handle(line) {
				return nil
			}
			return fmt.Errorf("pull stream for %s ended before completion", model)
		}
	}
}
