package fileio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/rewindcat/logging"
)

// Watcher monitors source roots for log changes and emits a debounced
// change notification so the caller can re-aggregate. Log directories see
// bursts of writes during an active session; without debouncing every
// flushed line would trigger a full recompute.
type Watcher struct {
	watcher  *fsnotify.Watcher
	paths    []string
	changes  chan struct{}
	stopCh   chan struct{}
	debounce time.Duration

	mu      sync.Mutex
	running bool
	timer   *time.Timer
}

// DefaultDebounce is how long the watcher waits after the last write
// before signaling a change.
const DefaultDebounce = 2 * time.Second

// NewWatcher creates a watcher over the given source roots. Each root and
// its subdirectories are registered; fsnotify does not recurse on its own.
func NewWatcher(paths []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		paths:    append([]string(nil), paths...),
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		debounce: DefaultDebounce,
	}, nil
}

// Start begins watching. Newly created directories are added as they
// appear so fresh projects and sessions are picked up mid-watch.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher is already running")
	}

	for _, root := range w.paths {
		if err := w.addRecursive(root); err != nil {
			w.watcher.Close()
			return fmt.Errorf("failed to watch path %s: %w", root, err)
		}
	}

	w.running = true
	go w.loop()
	return nil
}

// Changes returns the debounced change notification channel.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Stop shuts down the watcher and releases its resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				logging.LogWarnf("watch: cannot add %s: %v", path, err)
			}
		}
		return nil
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleNotify()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.LogWarnf("watch: %v", err)
		}
	}
}

func (w *Watcher) scheduleNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.changes <- struct{}{}:
		default:
		}
	})
}
