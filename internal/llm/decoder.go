package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Delta carries the incremental text fragments of one streamed record.
type Delta struct {
	Content  string `json:"content"`
	Thinking string `json:"thinking"`
}

// StreamEvent is one decoded record from a generation response: an
// incremental delta while Done is false, or the terminal record carrying
// usage counters when Done is true.
type StreamEvent struct {
	Message         Delta  `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// lineBuffer reassembles newline-delimited records from arbitrary byte
// fragments. A record may arrive split across several reads, and a single
// read may carry many records plus a trailing partial one.
type lineBuffer struct {
	buf []byte
}

// feed appends a fragment and returns every complete line now available.
// The trailing partial line stays buffered for the next fragment.
func (b *lineBuffer) feed(p []byte) [][]byte {
	b.buf = append(b.buf, p...)
	parts := bytes.Split(b.buf, []byte{'\n'})

	var lines [][]byte
	for _, part := range parts[:len(parts)-1] {
		part = bytes.TrimSpace(part)
		if len(part) > 0 {
			lines = append(lines, part)
		}
	}

	// The returned lines alias the old backing array, so the trailing
	// partial must move to a fresh buffer rather than be copied over them.
	b.buf = append([]byte(nil), parts[len(parts)-1]...)
	return lines
}

// flush returns whatever is still buffered at end-of-data.
func (b *lineBuffer) flush() ([]byte, bool) {
	line := bytes.TrimSpace(b.buf)
	b.buf = b.buf[:0]
	if len(line) == 0 {
		return nil, false
	}
	return line, true
}

// Decoder turns a sequence of raw byte fragments into StreamEvents.
// Records that fail to parse are dropped with a warning; transient garbage
// must never abort the stream.
type Decoder struct {
	lines lineBuffer
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes one byte fragment and returns the events completed by it,
// in wire order.
func (d *Decoder) Feed(p []byte) []StreamEvent {
	var events []StreamEvent
	for _, line := range d.lines.feed(p) {
		var ev StreamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			fmt.Fprintf(os.Stderr, "warning: dropping malformed stream record: %v\n", err)
			continue
		}
		events = append(events, ev)
	}
	return events
}

// Flush attempts one final parse of any buffered content once the transport
// signals end-of-data.
func (d *Decoder) Flush() (StreamEvent, bool) {
	line, ok := d.lines.flush()
	if !ok {
		return StreamEvent{}, false
	}
	var ev StreamEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		fmt.Fprintf(os.Stderr, "warning: dropping malformed stream record: %v\n", err)
		return StreamEvent{}, false
	}
	return ev, true
}
