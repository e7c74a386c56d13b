// Package watch re-runs a callback whenever a snapshot file settles after
// changes. Rapid editor writes are debounced and no-op writes are skipped by
// content hash, so one save triggers one refresh.
package watch

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches rapid successive writes into one refresh.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a single snapshot file.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	hashes   *ContentHashTracker
}

// New creates a watcher for the given file. A zero debounce means
// DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	// Watch the parent directory: editors replace files by rename, which
	// drops a watch held on the file itself.
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fsWatcher,
		hashes:   NewContentHashTracker(),
	}, nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run blocks, invoking onChange each time the file content settles on a new
// state. Errors from onChange and from the watcher are reported through
// onError (which may be nil) without stopping the loop. Run returns once ctx
// is done.
func (w *Watcher) Run(ctx context.Context, onChange func() error, onError func(error)) error {
	// Seed the hash so the first event compares against current content.
	w.hashes.HasChanged(w.path)

	report := func(err error) {
		if err != nil && onError != nil {
			onError(err)
		}
	}

	var mu sync.Mutex
	var timer *time.Timer
	fire := func() {
		if !w.hashes.HasChanged(w.path) {
			return
		}
		report(onChange())
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)
			mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			report(err)

		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil
		}
	}
}

// ContentHashTracker tracks file content hashes to detect actual changes.
type ContentHashTracker struct {
	hashes map[string]string
	mu     sync.RWMutex
}

// NewContentHashTracker creates a new content hash tracker.
func NewContentHashTracker() *ContentHashTracker {
	return &ContentHashTracker{
		hashes: make(map[string]string),
	}
}

// HasChanged reports whether a file's content differs from the last check.
// A file that cannot be read counts as changed.
func (t *ContentHashTracker) HasChanged(path string) bool {
	hash, err := computeHash(path)
	if err != nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	oldHash, exists := t.hashes[path]
	t.hashes[path] = hash

	if !exists {
		return true
	}
	return hash != oldHash
}

// Remove forgets a file's recorded hash.
func (t *ContentHashTracker) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hashes, path)
}

func computeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
