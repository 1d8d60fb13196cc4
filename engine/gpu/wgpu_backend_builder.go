package gpu

import "github.com/charmbracelet/log"

// WGPUBackendBuilderOption is a functional option for configuring the wgpu backend.
type WGPUBackendBuilderOption func(*wgpuBackendImpl)

// WithPresentMode sets the swapchain present mode applied at the next ConfigureSurface.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - WGPUBackendBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.presentMode = mode
	}
}

// WithMSAA sets the sample count of the main color attachment. Values other than 1 and 4 fall back to 1.
//
// Parameters:
//   - samples: the sample count
//
// Returns:
//   - WGPUBackendBuilderOption: a function that applies the MSAA option
func WithMSAA(samples uint32) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		if samples != 4 {
			samples = 1
		}
		b.sampleCount = samples
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter.
func WithForceSoftwareRenderer(force bool) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.forceFallback = force
	}
}

// WithLogger sets the logger the backend reports surface events to.
func WithLogger(l *log.Logger) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.logger = l
	}
}
