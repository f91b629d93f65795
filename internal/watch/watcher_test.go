package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) handle(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestRun_ReportsSettledMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Dir:      dir,
			Debounce: 50 * time.Millisecond,
			Match:    func(p string) bool { return strings.HasSuffix(p, ".zip") },
		}, rec.handle)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "march.zip")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", i+1)), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return len(rec.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)

	// No second report for the same burst.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"march.zip"}, rec.seen())

	cancel()
	assert.NoError(t, <-done)
}

func TestRun_MissingDir(t *testing.T) {
	err := Run(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "missing")}, func(string) {})
	assert.Error(t, err)
}
