package index

import (
	"fmt"
	"os"
	"time"
)

// Scheduler periodically re-runs the scanner when the index has gone stale.
// It is an explicit task owned by the application lifecycle: Start launches
// it and Stop cancels it.
type Scheduler struct {
	scanner  *Scanner
	maxAge   time.Duration
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a scheduler that rescans whenever the last pass is
// older than maxAge. Staleness is checked hourly.
func NewScheduler(scanner *Scanner, maxAge time.Duration) *Scheduler {
	return &Scheduler{
		scanner:  scanner,
		maxAge:   maxAge,
		interval: time.Hour,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background check loop.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if time.Since(s.scanner.LastScan()) < s.maxAge {
					continue
				}
				if _, err := s.scanner.Scan(); err != nil && err != ErrScanInProgress {
					fmt.Fprintf(os.Stderr, "warning: scheduled reindex: %v\n", err)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. An in-flight scan runs to
// completion.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
