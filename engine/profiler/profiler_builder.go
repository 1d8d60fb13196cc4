package profiler

import (
	"time"

	"github.com/charmbracelet/log"
)

// ProfilerBuilderOption is a functional option used to configure a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often stats are published and logged.
//
// Parameters:
//   - d: the interval, values at or below zero keep the 1 second default
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval to a profiler
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger the periodic stats line is written to.
func WithLogger(l *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = l
	}
}

// WithClock replaces time.Now. Tests use it to step intervals deterministically.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithMemoryStats toggles runtime.ReadMemStats at each interval.
func WithMemoryStats(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.memory = enabled
	}
}
