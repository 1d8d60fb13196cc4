package asset

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/pkg/errors"
)

// DrainReport lists what one DrainPending call made available.
type DrainReport[T any] struct {
	// Loaded holds handles whose asset became available for the first time.
	Loaded []Handle[T]
	// Reloaded holds handles whose asset was replaced after a file change.
	Reloaded []Handle[T]
}

// Len returns the total number of uploads in the report.
func (r DrainReport[T]) Len() int {
	return len(r.Loaded) + len(r.Reloaded)
}

// Store is a generic asset store with a deferred load queue.
// Load is cheap and returns a handle at once; DrainPending performs the decode and GPU upload.
type Store[T any] struct {
	mu     *sync.Mutex
	loader Loader[T]
	cfg    storeConfig
	pool   worker.DynamicWorkerPool

	nextID  uint64
	byPath  map[string]uint64
	paths   map[uint64]string
	assets  map[uint64]T
	queue   []uint64
	queued  map[uint64]bool
	watched map[string]bool
}

// NewStore creates a store decoding files with loader.
//
// Parameters:
//   - loader: the asset loader
//   - opts: functional options
//
// Returns:
//   - *Store[T]: the store
func NewStore[T any](loader Loader[T], opts ...StoreBuilderOption) *Store[T] {
	cfg := storeConfig{name: "assets", workers: 4}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Default()
	}

	s := &Store[T]{
		mu:      &sync.Mutex{},
		loader:  loader,
		cfg:     cfg,
		byPath:  make(map[string]uint64),
		paths:   make(map[uint64]string),
		assets:  make(map[uint64]T),
		queued:  make(map[uint64]bool),
		watched: make(map[string]bool),
	}
	if cfg.workers > 1 {
		s.pool = worker.NewDynamicWorkerPool(cfg.workers, 256, time.Second)
	}
	return s
}

// canonicalPath makes equal files compare equal regardless of how they were spelled.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// Load returns the handle for path, queueing it for upload if it is new.
// Loading a path that is already loaded or queued returns the existing handle and queues nothing.
//
// Parameters:
//   - path: the asset file
//
// Returns:
//   - Handle[T]: a handle usable for scene attachment immediately
//   - error: ErrNotFound wrapped with the path if the file does not exist
func (s *Store[T]) Load(path string) (Handle[T], error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return Handle[T]{}, errors.Wrapf(err, "load %s", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byPath[canon]; ok {
		return Handle[T]{id: id}, nil
	}

	if _, err := os.Stat(canon); err != nil {
		if os.IsNotExist(err) {
			return Handle[T]{}, errors.Wrapf(ErrNotFound, "load %s", canon)
		}
		return Handle[T]{}, errors.Wrapf(err, "load %s", canon)
	}

	s.nextID++
	id := s.nextID
	s.byPath[canon] = id
	s.paths[id] = canon
	s.enqueueLocked(id)
	return Handle[T]{id: id}, nil
}

// Reload queues an already known path again. The current asset stays in use until the
// new one has uploaded. Unknown paths are ignored.
//
// Parameters:
//   - path: the changed file
//
// Returns:
//   - bool: true if the path belongs to this store
func (s *Store[T]) Reload(path string) bool {
	canon, err := canonicalPath(path)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byPath[canon]
	if !ok {
		return false
	}
	s.enqueueLocked(id)
	return true
}

func (s *Store[T]) enqueueLocked(id uint64) {
	if s.queued[id] {
		return
	}
	s.queued[id] = true
	s.queue = append(s.queue, id)
}

type decoded[T any] struct {
	id     uint64
	path   string
	upload Upload[T]
	err    error
}

// DrainPending decodes every queued path, in parallel when workers are configured, then uploads the
// results serially in queue order. It returns once every upload has finished. An empty queue is a no-op.
// A path queued again while it decodes is picked up by the next call.
//
// A failed first load is returned with the failing path wrapped into the error; assets uploaded before it
// stay loaded and it stays queued together with the paths after it. A failed reload is logged and the
// previous asset stays in use.
//
// Parameters:
//   - ctx: the upload context
//
// Returns:
//   - DrainReport[T]: the handles made available by this call
//   - error: the first decode or upload failure of an asset that was never loaded
func (s *Store[T]) DrainPending(ctx UploadContext) (DrainReport[T], error) {
	s.mu.Lock()
	batch := make([]decoded[T], len(s.queue))
	for i, id := range s.queue {
		batch[i] = decoded[T]{id: id, path: s.paths[id]}
		delete(s.queued, id)
	}
	s.queue = nil
	s.mu.Unlock()

	var report DrainReport[T]
	if len(batch) == 0 {
		return report, nil
	}

	s.decodeAll(batch)

	for i := range batch {
		d := &batch[i]
		asset, err := s.upload(ctx, d)
		h := Handle[T]{id: d.id}

		s.mu.Lock()
		old, replaced := s.assets[d.id]
		if err == nil {
			s.assets[d.id] = asset
		}
		s.mu.Unlock()

		switch {
		case err != nil && replaced:
			s.cfg.logger.Warn("asset reload failed, keeping previous version", "store", s.cfg.name, "path", d.path, "handle", h.id, "err", err)
		case err != nil:
			s.requeue(batch[i:])
			return report, err
		case replaced:
			if r, ok := any(old).(Releaser); ok {
				r.Release()
			}
			report.Reloaded = append(report.Reloaded, h)
			s.cfg.logger.Info("asset reloaded", "store", s.cfg.name, "path", d.path, "handle", h.id)
		default:
			report.Loaded = append(report.Loaded, h)
			s.cfg.logger.Info("asset loaded", "store", s.cfg.name, "path", d.path, "handle", h.id)
		}
	}
	return report, nil
}

func (s *Store[T]) upload(ctx UploadContext, d *decoded[T]) (T, error) {
	var zero T
	if d.err != nil {
		return zero, errors.Wrapf(d.err, "decode %s", d.path)
	}
	asset, err := d.upload(ctx)
	if err != nil {
		return zero, errors.Wrapf(err, "upload %s", d.path)
	}
	return asset, nil
}

func (s *Store[T]) decodeAll(batch []decoded[T]) {
	if s.pool == nil || len(batch) == 1 {
		for i := range batch {
			batch[i].upload, batch[i].err = s.loader.Decode(batch[i].path)
		}
		return
	}

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		d := &batch[i]
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				d.upload, d.err = s.loader.Decode(d.path)
				return nil, d.err
			},
		})
	}
	wg.Wait()
}

// requeue puts entries that were not processed back at the head of the queue. Entries queued again
// while they decoded keep their newer place.
func (s *Store[T]) requeue(rest []decoded[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(rest)+len(s.queue))
	for _, d := range rest {
		if !s.queued[d.id] {
			s.queued[d.id] = true
			ids = append(ids, d.id)
		}
	}
	s.queue = append(ids, s.queue...)
}

// Get returns the asset for h. It reports false while the asset is still queued.
//
// Parameters:
//   - h: the handle
//
// Returns:
//   - T: the asset
//   - bool: false if the asset is not loaded
func (s *Store[T]) Get(h Handle[T]) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[h.id]
	return a, ok
}

// Path returns the canonical path of h, or "" for unknown handles.
func (s *Store[T]) Path(h Handle[T]) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paths[h.id]
}

// Len returns the number of loaded assets.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// Pending returns the number of queued paths.
func (s *Store[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Release releases every loaded asset and stops the decode workers.
func (s *Store[T]) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.assets {
		if r, ok := any(a).(Releaser); ok {
			r.Release()
		}
		delete(s.assets, id)
	}
	if s.pool != nil {
		s.pool.Stop()
		s.pool = nil
	}
}

// Dirs returns the directories holding the store's known assets.
func (s *Store[T]) Dirs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.paths))
	var dirs []string
	for _, p := range s.paths {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}
