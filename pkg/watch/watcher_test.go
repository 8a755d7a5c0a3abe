package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/reachable/pkg/config"
)

func newTestWatcher(t *testing.T, dir string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, config.DefaultConfig(), debounce)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	w.SetOutput(&bytes.Buffer{})
	return w
}

func TestNewWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		in, want time.Duration
	}{
		{0, DefaultDebounce},
		{-time.Second, DefaultDebounce},
		{2 * time.Second, 2 * time.Second},
	}
	for _, tt := range tests {
		w := newTestWatcher(t, dir, tt.in)
		assert.Equal(t, tt.want, w.debounce)
	}
}

func TestHandleEvent_Filters(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir, time.Second)

	doc := filepath.Join(dir, "core.ir.yaml")
	events := []fsnotify.Event{
		{Name: doc, Op: fsnotify.Write},
		{Name: filepath.Join(dir, "notes.md"), Op: fsnotify.Write},
		{Name: filepath.Join(dir, "gone.ir.json"), Op: fsnotify.Remove},
		{Name: filepath.Join(dir, "vendor", "dep.ir.yaml"), Op: fsnotify.Create},
		{Name: filepath.Join(dir, "scratch.tmp.ir.yaml"), Op: fsnotify.Write},
	}
	for _, ev := range events {
		w.handleEvent(ev)
	}

	assert.Equal(t, []string{doc}, keys(w))
}

func keys(w *Watcher) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for k := range w.pending {
		out = append(out, k)
	}
	return out
}

func TestReady_Debounces(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir, time.Second)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	a := filepath.Join(dir, "a.ir.yaml")
	b := filepath.Join(dir, "b.ir.json")
	w.handleEvent(fsnotify.Event{Name: b, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Create})

	clock = clock.Add(500 * time.Millisecond)
	assert.Empty(t, w.ready())

	// a is written again and restarts its quiet period
	w.handleEvent(fsnotify.Event{Name: a, Op: fsnotify.Write})
	clock = clock.Add(600 * time.Millisecond)
	assert.Equal(t, []string{b}, w.ready())

	clock = clock.Add(time.Second)
	assert.Equal(t, []string{a}, w.ready())
	assert.Empty(t, w.ready())
}

func TestHandleEvent_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir, time.Second)
	require.NoError(t, w.addTree(dir))

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	skipped := filepath.Join(dir, "node_modules")
	require.NoError(t, os.Mkdir(skipped, 0o755))

	w.handleEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: skipped, Op: fsnotify.Create})

	assert.ElementsMatch(t, []string{dir, sub}, w.WatchedDirs())
	assert.Empty(t, keys(w))
}

func TestAddTree_SkipsExcludedDirs(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"ir/core", ".git/objects", "target/debug"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
	}
	w := newTestWatcher(t, dir, time.Second)
	require.NoError(t, w.addTree(dir))

	assert.Equal(t, []string{dir, filepath.Join(dir, "ir"), filepath.Join(dir, "ir", "core")}, w.WatchedDirs())
}

func TestStart_RunsCallbackOnChange(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir, 50*time.Millisecond)
	var out syncBuffer
	w.SetOutput(&out)

	changed := make(chan string, 4)
	w.SetCallback(func(path string) { changed <- path })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return len(w.WatchedDirs()) > 0 }, 5*time.Second, 10*time.Millisecond)

	doc := filepath.Join(dir, "unit.ir.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("items: []\n"), 0o644))

	select {
	case got := <-changed:
		assert.Equal(t, doc, got)
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not called")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Contains(t, out.String(), "Document changed: unit.ir.yaml")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
