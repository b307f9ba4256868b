// Package chat sequences user-submitted generation requests so that at most
// one is ever in flight against the model service.
package chat

import (
	"sync"
	"time"

	"github.com/MattJColes/icarus-sub001/internal/llm"
)

// Request is one queued user submission. The prompt and options are captured
// at submission time and never change afterwards, so later edits to shared
// input state cannot retroactively alter a queued request.
type Request struct {
	ID          int64
	Prompt      string
	Options     *llm.Options
	SubmittedAt time.Time
}

// RunFunc executes one request to completion. Failures are the runner's to
// report; the serializer advances the queue either way.
type RunFunc func(Request)

// Serializer enforces single-flight generation: a submission while idle runs
// immediately, submissions during a generation queue in strict arrival order
// and run one at a time as each generation completes.
type Serializer struct {
	mu         sync.Mutex
	queue      []Request
	generating bool
	nextID     int64
	run        RunFunc
}

// NewSerializer creates a serializer that executes requests with run.
func NewSerializer(run RunFunc) *Serializer {
	return &Serializer{run: run}
}

// Submit enqueues a request. If nothing is generating it starts immediately;
// otherwise it waits its turn behind earlier submissions.
func (s *Serializer) Submit(prompt string, opts *llm.Options) Request {
	if opts != nil {
		// Copy so a caller mutating its options struct later cannot touch
		// the queued request.
		o := *opts
		opts = &o
	}

	s.mu.Lock()
	s.nextID++
	req := Request{
		ID:          s.nextID,
		Prompt:      prompt,
		Options:     opts,
		SubmittedAt: time.Now(),
	}
	if s.generating {
		s.queue = append(s.queue, req)
		s.mu.Unlock()
		return req
	}
	s.generating = true
	s.mu.Unlock()

	go s.drain(req)
	return req
}

// drain runs req, then keeps dequeuing until the queue is empty. A single
// goroutine owns the in-flight slot, so arrival order is preserved exactly.
func (s *Serializer) drain(req Request) {
	for {
		s.run(req)

		s.mu.Lock()
		if len(s.queue) == 0 {
			s.generating = false
			s.mu.Unlock()
			return
		}
		req = s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
	}
}

// Busy reports whether a generation is in flight.
func (s *Serializer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// QueueLen returns how many requests are waiting behind the in-flight one.
func (s *Serializer) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
