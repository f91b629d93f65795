// Package watch reports bundles dropped into a directory.
//
// Writes to a file arrive as a burst of events; each path is reported once
// the burst has been quiet for the debounce delay.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/logging"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Options configure Run.
type Options struct {
	// Dir is the directory to watch (not recursive).
	Dir string

	// Debounce is the quiet period before a path is reported.
	Debounce time.Duration

	// Match selects the paths to report. Nil reports every path.
	Match func(path string) bool

	Logger logging.Logger
}

// Run watches opts.Dir and calls handle for every settled path until ctx is
// done. handle runs on its own goroutine; Run waits for pending calls
// before returning.
func Run(ctx context.Context, opts Options, handle func(path string)) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.Dir, err)
	}

	opts.Logger.Info("Watching %s for bundles", opts.Dir)

	var (
		mu      sync.Mutex
		timers  = make(map[string]*time.Timer)
		pending sync.WaitGroup
	)

	defer func() {
		mu.Lock()
		for path, t := range timers {
			if t.Stop() {
				pending.Done()
			}
			delete(timers, path)
		}
		mu.Unlock()
		pending.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			path := filepath.Clean(event.Name)
			if opts.Match != nil && !opts.Match(path) {
				continue
			}

			mu.Lock()
			if t, exists := timers[path]; exists && t.Stop() {
				pending.Done()
			}
			pending.Add(1)
			timers[path] = time.AfterFunc(opts.Debounce, func() {
				defer pending.Done()

				mu.Lock()
				delete(timers, path)
				mu.Unlock()

				opts.Logger.Debug("Bundle settled: %s", path)
				handle(path)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("Watcher error: %v", err)
		}
	}
}
