package heightmap

import (
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
)

// Loader decodes height images (any format common.DecodeImage knows) into HeightMaps for an asset.Store.
type Loader struct {
	segments int
	extent   float32
}

var _ asset.Loader[HeightMap] = &Loader{}

// NewLoader creates a height map loader configured with the provided options.
//
// Parameters:
//   - options: variadic list of LoaderBuilderOption functions
//
// Returns:
//   - *Loader: the loader
func NewLoader(options ...LoaderBuilderOption) *Loader {
	l := &Loader{segments: DefaultSegments, extent: DefaultExtent}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Decode reads the height image and builds the grid off the frame goroutine.
func (l *Loader) Decode(path string) (asset.Upload[HeightMap], error) {
	heights, err := common.DecodeImageFile(path)
	if err != nil {
		return nil, err
	}
	vertices, indices := BuildGrid(l.extent, l.extent, l.segments, l.segments)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return func(ctx asset.UploadContext) (HeightMap, error) {
		return NewHeightMap(ctx.Backend, name, heights, vertices, indices)
	}, nil
}

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*Loader)

// WithSegments sets the number of grid quads along each axis. Values below 1 keep the default.
func WithSegments(n int) LoaderBuilderOption {
	return func(l *Loader) {
		if n > 0 {
			l.segments = n
		}
	}
}

// WithExtent sets the edge length of the grid. Non-positive values keep the default.
func WithExtent(extent float32) LoaderBuilderOption {
	return func(l *Loader) {
		if extent > 0 {
			l.extent = extent
		}
	}
}
