package gpu

import "errors"

var (
	// ErrSurfaceLost means the surface must be reconfigured before the next acquire.
	ErrSurfaceLost = errors.New("gpu: surface lost")

	// ErrSurfaceOutdated means the surface no longer matches the window and must be reconfigured.
	ErrSurfaceOutdated = errors.New("gpu: surface outdated")

	// ErrSurfaceTimeout means no swapchain image became available in time. The frame is skipped.
	ErrSurfaceTimeout = errors.New("gpu: surface acquire timed out")

	// ErrFrameInFlight means AcquireFrame was called before the previous frame was presented.
	ErrFrameInFlight = errors.New("gpu: previous frame not yet presented")
)

// IsSurfaceError reports whether err is a recoverable swapchain acquisition failure.
func IsSurfaceError(err error) bool {
	return errors.Is(err, ErrSurfaceLost) || errors.Is(err, ErrSurfaceOutdated) || errors.Is(err, ErrSurfaceTimeout)
}
