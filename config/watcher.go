package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sebitommy123/SA/log"
)

// ReloadFunc receives the freshly reloaded provider list.
type ReloadFunc func(*ProviderList)

// ListWatcher watches a provider list file for changes and debounces
// rapid edits before re-reading it (an fsnotify.Watcher plus a debounce
// timer).
type ListWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	log      log.Logger
	debounce time.Duration

	mu        sync.Mutex
	callbacks []ReloadFunc
	timer     *time.Timer
}

// NewListWatcher starts watching path for writes/creates. Call Start to
// begin dispatching reload callbacks; call Close to stop.
func NewListWatcher(path string, lg log.Logger) (*ListWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create provider list watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch provider list %s: %w", path, err)
	}
	if lg == nil {
		lg = log.Root
	}
	return &ListWatcher{path: path, watcher: w, log: lg, debounce: 500 * time.Millisecond}, nil
}

// OnReload registers a callback invoked with the re-parsed list after a
// debounced file change.
func (lw *ListWatcher) OnReload(fn ReloadFunc) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.callbacks = append(lw.callbacks, fn)
}

// Start begins the watch loop in its own goroutine.
func (lw *ListWatcher) Start() { go lw.loop() }

// Close stops watching.
func (lw *ListWatcher) Close() error { return lw.watcher.Close() }

func (lw *ListWatcher) loop() {
	for {
		select {
		case ev, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Write == fsnotify.Write || ev.Op&fsnotify.Create == fsnotify.Create {
				lw.scheduleReload()
			}
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			lw.log.Error("provider list watcher error", "err", err)
		}
	}
}

func (lw *ListWatcher) scheduleReload() {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.timer != nil {
		lw.timer.Stop()
	}
	lw.timer = time.AfterFunc(lw.debounce, lw.reload)
}

func (lw *ListWatcher) reload() {
	pl, err := LoadProviderList(lw.path)
	if err != nil {
		lw.log.Error("provider list reload failed", "path", lw.path, "err", err)
		return
	}
	lw.mu.Lock()
	cbs := append([]ReloadFunc(nil), lw.callbacks...)
	lw.mu.Unlock()
	lw.log.Debug("provider list reloaded", "path", lw.path, "count", len(pl.URLs))
	for _, cb := range cbs {
		cb(pl)
	}
}
