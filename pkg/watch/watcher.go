// Package watch re-runs an action when IR documents change on disk.
package watch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/reachable/pkg/config"
)

// DefaultDebounce is how long a document must stay quiet before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a directory tree for document changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	path      string
	callback  func(path string)
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]time.Time

	outMu sync.Mutex
	out   io.Writer
}

// NewWatcher creates a watcher rooted at path. A non-positive debounce
// selects DefaultDebounce.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  debounce,
		path:      path,
		now:       time.Now,
		pending:   make(map[string]time.Time),
		out:       os.Stdout,
	}, nil
}

// SetCallback sets the function to call with each changed document.
func (w *Watcher) SetCallback(cb func(path string)) {
	w.callback = cb
}

// SetOutput redirects status lines.
func (w *Watcher) SetOutput(out io.Writer) {
	w.outMu.Lock()
	w.out = out
	w.outMu.Unlock()
}

func (w *Watcher) printf(c *color.Color, format string, args ...any) {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	c.Fprintf(w.out, format, args...)
}

// addTree watches root and every directory below it that is not excluded.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.excludedDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) excludedDir(path string) bool {
	return w.config.ShouldExclude(path + string(filepath.Separator))
}

// Start watches until ctx is done or the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}

	info := color.New(color.FgCyan)
	w.printf(info, "Watching for document changes in %s...\n", w.path)
	w.printf(info, "Press Ctrl+C to stop\n\n")

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.printf(color.New(color.FgRed), "Watch error: %v\n", err)
		}
	}
}

// handleEvent queues written or created documents. New directories are
// watched as they appear.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	path := event.Name
	if w.config.ShouldExclude(path) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excludedDir(path) {
				_ = w.addTree(path)
			}
			return
		}
	}
	if !w.config.IsDocument(path) {
		return
	}

	w.mu.Lock()
	w.pending[path] = w.now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, path := range w.ready() {
				if w.callback != nil {
					go w.runCallback(path)
				}
			}
		}
	}
}

// ready removes and returns the documents that have been quiet for the
// debounce period, sorted.
func (w *Watcher) ready() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	var paths []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			paths = append(paths, path)
		}
	}
	for _, path := range paths {
		delete(w.pending, path)
	}
	sort.Strings(paths)
	return paths
}

func (w *Watcher) runCallback(path string) {
	rel, err := filepath.Rel(w.path, path)
	if err != nil {
		rel = path
	}
	w.printf(color.New(color.FgYellow), "\nDocument changed: %s\n%s\n", rel, strings.Repeat("-", 40))

	w.callback(path)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the watched directories, sorted.
func (w *Watcher) WatchedDirs() []string {
	dirs := w.fsWatcher.WatchList()
	sort.Strings(dirs)
	return dirs
}
