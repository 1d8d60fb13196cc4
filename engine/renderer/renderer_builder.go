package renderer

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/ui"
	"github.com/charmbracelet/log"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger shared by the renderer and its passes.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(l *log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = l
	}
}

// WithSurfaceSize sets the surface size configured at construction. The default is 1280x720.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSurfaceSize(width, height uint32) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithShadowMapSize sets the edge length in texels of every shadow atlas layer.
//
// Parameters:
//   - size: the layer size, 0 keeps pass.DefaultShadowMapSize
//
// Returns:
//   - RendererBuilderOption: a function that applies the shadow map size option to a renderer
func WithShadowMapSize(size uint32) RendererBuilderOption {
	return func(r *renderer) {
		if size > 0 {
			r.shadowMapSize = size
		}
	}
}

// WithFont enables the text overlay and uploads the font atlas for the UI pass.
func WithFont(f *ui.Font) RendererBuilderOption {
	return func(r *renderer) {
		r.font = f
	}
}

// WithPassOptions forwards options to every pass, such as a shader override directory or the clear color.
//
// Parameters:
//   - opts: the pass options, applied after the renderer's own
//
// Returns:
//   - RendererBuilderOption: a function that applies the pass options to a renderer
func WithPassOptions(opts ...pass.PassBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.passOptions = append(r.passOptions, opts...)
	}
}
