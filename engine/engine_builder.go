package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/debugserver"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/charmbracelet/log"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithFrameLimit caps the render loop in frames per second. 0 leaves it uncapped, which is the default.
//
// Parameters:
//   - fps: maximum render frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithWorld renders w instead of a new empty world.
func WithWorld(w scene.World) EngineBuilderOption {
	return func(e *engine) {
		e.world = w
	}
}

// WithCamera renders from c instead of a default orbit camera.
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithProfiler replaces the default profiler, e.g. to change its interval.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithLogger sets the logger for loop events.
func WithLogger(l *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = l
	}
}

// WithWatcher runs w for the lifetime of Run so changed asset files reload.
func WithWatcher(w *asset.Watcher) EngineBuilderOption {
	return func(e *engine) {
		e.watcher = w
	}
}

// WithDebugServer starts s when Run begins and shuts it down when Run returns.
func WithDebugServer(s *debugserver.Server) EngineBuilderOption {
	return func(e *engine) {
		e.debug = s
	}
}

// WithStatsOverlay writes the profiler lines to the renderer's text overlay after every interval.
// The renderer needs a font for the overlay to exist.
func WithStatsOverlay(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.overlayStats = enabled
	}
}
