package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmirlint/internal/testutil"
)

func start(t *testing.T, opts Options) <-chan []string {
	t.Helper()
	opts.Logger = testutil.NewTestLogger(t)
	opts.Debounce = 20 * time.Millisecond

	w, err := New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	changes := make(chan []string, 16)
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, changed []string) {
			changes <- changed
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return changes
}

func next(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
		return nil
	}
}

func TestWatcher_ReportsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	changes := start(t, Options{Roots: []string{dir}, Exts: []string{".xmir"}})

	testutil.WriteFile(t, dir, "notes.txt", "ignored")
	path := testutil.WriteFile(t, dir, "app.xmir", "<program/>")

	assert.Equal(t, []string{path}, next(t, changes))
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	changes := start(t, Options{Roots: []string{dir}, Exts: []string{".xmir"}})

	a := filepath.Join(dir, "a.xmir")
	b := filepath.Join(dir, "b.xmir")
	require.NoError(t, os.WriteFile(b, []byte("<program/>"), 0o600))
	require.NoError(t, os.WriteFile(a, []byte("<program/>"), 0o600))

	seen := make(map[string]bool)
	for !seen[a] || !seen[b] {
		for _, p := range next(t, changes) {
			seen[p] = true
		}
	}
	assert.Len(t, seen, 2)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	changes := start(t, Options{Roots: []string{dir}, Exts: []string{".xmir"}})

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o750))

	// The new directory is added asynchronously; retry until seen.
	path := filepath.Join(sub, "deep.xmir")
	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(path, []byte("<program/>"), 0o600))
		select {
		case c := <-changes:
			assert.Equal(t, []string{path}, c)
			return
		case <-time.After(200 * time.Millisecond):
		case <-deadline:
			t.Fatal("change in new directory not reported")
		}
	}
}

func TestWatcher_SingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "only.xmir", "<program/>")
	changes := start(t, Options{Roots: []string{path}, Exts: []string{".xmir"}})

	testutil.WriteFile(t, dir, "other.xmir", "<program/>")
	require.NoError(t, os.WriteFile(path, []byte("<program name=\"x\"/>"), 0o600))

	assert.Equal(t, []string{path}, next(t, changes))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Roots: []string{filepath.Join(t.TempDir(), "missing")}})
	require.Error(t, err)
}
