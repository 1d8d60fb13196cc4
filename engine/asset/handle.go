// Package asset owns GPU assets loaded from disk. A Store hands out stable handles on Load,
// queues the path and turns it into a GPU asset the next time the frame drains the queue.
package asset

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
)

// ErrNotFound is returned by Load when the asset file does not exist.
var ErrNotFound = errors.New("asset: not found")

// Handle is an opaque, stable reference to an asset in a Store. The zero value is invalid.
// Many entities may share one handle; the Store stays the single owner of the asset.
type Handle[T any] struct {
	id uint64
}

// ID returns the numeric id of the handle.
func (h Handle[T]) ID() uint64 {
	return h.id
}

// Valid reports whether the handle was issued by a Store.
func (h Handle[T]) Valid() bool {
	return h.id != 0
}

func (h Handle[T]) String() string {
	return fmt.Sprintf("asset#%d", h.id)
}

// UploadContext carries what an upload needs to create GPU resources.
type UploadContext struct {
	Backend gpu.Backend
}

// Upload creates the GPU asset from data decoded earlier. It runs on the frame goroutine.
type Upload[T any] func(ctx UploadContext) (T, error)

// Loader turns a file into an asset in two steps. Decode reads and parses the file and may run on any
// goroutine; the returned Upload touches the GPU and runs serially in queue order.
type Loader[T any] interface {
	// Decode reads and parses path.
	//
	// Parameters:
	//   - path: the canonical asset path
	//
	// Returns:
	//   - Upload[T]: the deferred GPU upload
	//   - error: error if the file cannot be decoded
	Decode(path string) (Upload[T], error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc[T any] func(path string) (Upload[T], error)

// Decode calls f(path).
func (f LoaderFunc[T]) Decode(path string) (Upload[T], error) {
	return f(path)
}

// Releaser is implemented by assets that own GPU resources.
type Releaser interface {
	Release()
}
