package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderReassemblesSplitRecords(t *testing.T) {
	d := NewDecoder()

	// A record split across reads must produce nothing until its newline
	// arrives, then decode exactly once.
	evs := d.Feed([]byte(`{"done":fal`))
	assert.Empty(t, evs)

	evs = d.Feed([]byte("se,\"message\":{\"content\":\"hi\"}}\n{\"done\":tr"))
	require.Len(t, evs, 1)
	assert.Equal(t, "hi", evs[0].Message.Content)
	assert.False(t, evs[0].Done)

	evs = d.Feed([]byte("ue}\n"))
	require.Len(t, evs, 1)
	assert.True(t, evs[0].Done)
}

func TestDecoderCompleteRecordWithTrailingPartial(t *testing.T) {
	d := NewDecoder()

	// Buffering the trailing partial must not clobber the completed record
	// that shares the same read.
	evs := d.Feed([]byte("{\"message\":{\"content\":\"kept\"},\"done\":false}\n{\"done\":tr"))
	require.Len(t, evs, 1)
	assert.Equal(t, "kept", evs[0].Message.Content)
	assert.False(t, evs[0].Done)

	evs = d.Feed([]byte("ue}\n"))
	require.Len(t, evs, 1)
	assert.True(t, evs[0].Done)
}

func TestDecoderMultipleRecordsInOneRead(t *testing.T) {
	d := NewDecoder()
	evs := d.Feed([]byte("{\"message\":{\"content\":\"a\"}}\n{\"message\":{\"content\":\"b\"}}\n"))
	require.Len(t, evs, 2)
	assert.Equal(t, "a", evs[0].Message.Content)
	assert.Equal(t, "b", evs[1].Message.Content)
}

func TestDecoderDropsMalformedRecords(t *testing.T) {
	d := NewDecoder()
	evs := d.Feed([]byte("this is not json\n{\"message\":{\"content\":\"ok\"}}\n"))
	require.Len(t, evs, 1)
	assert.Equal(t, "ok", evs[0].Message.Content)
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	d := NewDecoder()
	evs := d.Feed([]byte("\n\n  \n{\"done\":true}\n"))
	require.Len(t, evs, 1)
	assert.True(t, evs[0].Done)
}

func TestDecoderFlushParsesTrailingRecord(t *testing.T) {
	d := NewDecoder()
	// Final record arrives without a trailing newline.
	evs := d.Feed([]byte(`{"done":true,"eval_count":7}`))
	assert.Empty(t, evs)

	ev, ok := d.Flush()
	require.True(t, ok)
	assert.True(t, ev.Done)
	assert.Equal(t, 7, ev.EvalCount)
}

func TestDecoderFlushEmpty(t *testing.T) {
	d := NewDecoder()
	_, ok := d.Flush()
	assert.False(t, ok)
}

func TestDecoderFlushMalformed(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(`{"done":tru`))
	_, ok := d.Flush()
	assert.False(t, ok)
}

func TestDecoderTerminalRecordCarriesCounters(t *testing.T) {
	d := NewDecoder()
	evs := d.Feed([]byte("{\"done\":true,\"done_reason\":\"stop\",\"prompt_eval_count\":12,\"eval_count\":34}\n"))
	require.Len(t, evs, 1)
	assert.True(t, evs[0].Done)
	assert.Equal(t, "stop", evs[0].DoneReason)
	assert.Equal(t, 12, evs[0].PromptEvalCount)
	assert.Equal(t, 34, evs[0].EvalCount)
}
