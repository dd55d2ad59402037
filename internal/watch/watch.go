// Package watch reports changed files under a set of roots, debounced.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Roots are files or directories; directories are watched recursively
	Roots []string
	// Exts filters changed files by extension, e.g. ".xmir"; empty keeps all
	Exts []string
	// Debounce defaults to DefaultDebounce
	Debounce time.Duration
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Handler receives the sorted set of files changed during one quiet period.
type Handler func(ctx context.Context, changed []string)

// Watcher batches file system events into Handler calls.
type Watcher struct {
	fsw      *fsnotify.Watcher
	exts     []string
	files    map[string]bool
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	// serializes handler calls
	runMu sync.Mutex
}

// New starts watching the roots. Changes are delivered once Run is called.
func New(opts Options) (*Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New("nothing to watch")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		exts:     opts.Exts,
		files:    make(map[string]bool),
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]struct{}),
	}

	for _, root := range opts.Roots {
		info, err := os.Stat(root)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		if info.IsDir() {
			err = watchDirRecursive(fsw, root)
		} else {
			// Editors replace files on save, so watch the parent.
			w.files[filepath.Clean(root)] = true
			err = fsw.Add(filepath.Dir(root))
		}
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run delivers changes to fn until ctx is done. It closes the watcher.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer func() { _ = w.fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDirRecursive(w.fsw, event.Name); err != nil {
						w.logger.Warn("failed to watch new directory",
							slog.String("dir", event.Name),
							slog.String("error", err.Error()))
					}
					continue
				}
			}
			if !w.wanted(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name, fn)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) wanted(path string) bool {
	path = filepath.Clean(path)
	if len(w.files) > 0 && w.files[path] {
		return true
	}
	if len(w.exts) > 0 && !slices.Contains(w.exts, filepath.Ext(path)) {
		return false
	}
	// A parent watched for a single file reports its siblings too.
	dir := filepath.Dir(path)
	for f := range w.files {
		if filepath.Dir(f) == dir {
			return false
		}
	}
	return true
}

func (w *Watcher) schedule(ctx context.Context, path string, fn Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[filepath.Clean(path)] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		changed := make([]string, 0, len(w.pending))
		for p := range w.pending {
			changed = append(changed, p)
		}
		w.pending = make(map[string]struct{})
		w.mu.Unlock()

		if len(changed) == 0 || ctx.Err() != nil {
			return
		}
		slices.Sort(changed)

		w.runMu.Lock()
		defer w.runMu.Unlock()
		w.logger.Debug("files changed", slog.Int("count", len(changed)))
		fn(ctx, changed)
	})
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
