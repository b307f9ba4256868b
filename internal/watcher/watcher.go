// Package watcher triggers rescans when files under the configured roots
// change on disk, as a complement to the periodic reindex schedule.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MattJColes/icarus-sub001/internal/extract"
)

// Watcher debounces filesystem events on indexable files into a single
// trigger callback.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	trigger  func()
	stop     chan struct{}
	done     chan struct{}
}

// New creates a watcher over the given root directories. Each root and its
// subdirectories are watched; fsnotify does not recurse on its own.
func New(roots []string, debounce time.Duration, trigger func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		})
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}

	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		trigger:  trigger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the event loop.
func (w *Watcher) Start() {
	go func() {
		defer close(w.done)

		timer := time.NewTimer(w.debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-w.stop:
				return

			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				// Watch directories created after startup.
				if ev.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						w.fsw.Add(ev.Name)
						continue
					}
				}
				if !extract.Extensions[strings.ToLower(filepath.Ext(ev.Name))] {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(w.debounce)

			case <-timer.C:
				w.trigger()

			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "warning: file watcher: %v\n", err)
			}
		}
	}()
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.stop)
	err := w.fsw.Close()
	<-w.done
	return err
}
