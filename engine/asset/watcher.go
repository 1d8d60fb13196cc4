package asset

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Reloadable is a store the Watcher can re-enqueue changed files into.
type Reloadable interface {
	// Reload queues path again if the store knows it.
	Reload(path string) bool

	// Dirs returns the directories to watch.
	Dirs() []string
}

// Watcher re-enqueues asset files into their stores when they change on disk.
// The replaced asset keeps rendering until the next DrainPending uploads the new one.
type Watcher struct {
	mu       *sync.Mutex
	fsnotify *fsnotify.Watcher
	stores   []Reloadable
	watched  map[string]bool
	logger   *log.Logger
	rescan   time.Duration
}

// NewWatcher creates a watcher over stores.
//
// Parameters:
//   - l: the logger, nil for logger.Default
//   - stores: the stores to keep up to date
//
// Returns:
//   - *Watcher: the watcher, call Run to start it
//   - error: error if the OS watcher cannot be created
func NewWatcher(l *log.Logger, stores ...Reloadable) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create asset watcher")
	}
	if l == nil {
		l = logger.Default()
	}
	return &Watcher{
		mu:       &sync.Mutex{},
		fsnotify: fw,
		stores:   stores,
		watched:  make(map[string]bool),
		logger:   l,
		rescan:   time.Second,
	}, nil
}

// Run handles file events until ctx is done. Directories of assets loaded after Run started are
// picked up on the next rescan. Directories are unwatched when Run returns, so Run may be called again
// until Close.
//
// Parameters:
//   - ctx: cancels the watcher
//
// Returns:
//   - error: nil when ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	defer w.removeDirs()

	w.addDirs()
	ticker := time.NewTicker(w.rescan)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			w.addDirs()

		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.Handle(e.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("asset watcher", "err", err)
		}
	}
}

// Handle re-enqueues path in every store that knows it.
//
// Parameters:
//   - path: the changed file
//
// Returns:
//   - bool: true if any store queued the path
func (w *Watcher) Handle(path string) bool {
	queued := false
	for _, s := range w.stores {
		if s.Reload(path) {
			queued = true
		}
	}
	if queued {
		w.logger.Debug("asset changed", "path", path)
	}
	return queued
}

func (w *Watcher) addDirs() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.stores {
		for _, d := range s.Dirs() {
			if w.watched[d] {
				continue
			}
			if err := w.fsnotify.Add(d); err != nil {
				w.logger.Warn("watch asset dir", "dir", d, "err", err)
				continue
			}
			w.watched[d] = true
		}
	}
}

func (w *Watcher) removeDirs() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for d := range w.watched {
		if err := w.fsnotify.Remove(d); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			w.logger.Debug("unwatch asset dir", "dir", d, "err", err)
		}
		delete(w.watched, d)
	}
}

// Close releases the OS watcher. Run must not be called afterwards.
//
// Returns:
//   - error: error if the OS watcher fails to close
func (w *Watcher) Close() error {
	return w.fsnotify.Close()
}
