package profiler

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/charmbracelet/log"
)

// Stats is the snapshot produced at the end of every profiler interval.
type Stats struct {
	// Frames counts every frame since the profiler was created, skipped frames included.
	Frames    uint64  `json:"frames"`
	Skipped   uint64  `json:"skipped"`
	FPS       float64 `json:"fps"`
	FrameMS   float64 `json:"frame_ms"`
	Draws     float64 `json:"draws"`
	Instances float64 `json:"instances"`

	HeapMB      float64 `json:"heap_mb"`
	AllocRateMB float64 `json:"alloc_rate_mb"`
	SysMB       float64 `json:"sys_mb"`
	GCCount     uint32  `json:"gc_count"`
	LastPauseUs uint64  `json:"last_pause_us"`
	MaxPauseUs  uint64  `json:"max_pause_us"`

	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Profiler accumulates frame reports and logs frame rate, draw counts and memory statistics at a
// configurable interval. Tick is called from the render loop; Stats and Last may be read from any goroutine.
type Profiler struct {
	mu *sync.Mutex

	logger   *log.Logger
	interval time.Duration
	now      func() time.Time
	memory   bool

	lastTime       time.Time
	frames         int
	cpuTime        time.Duration
	draws          int
	instances      int
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	stats Stats
	last  renderer.FrameReport
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - opts: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:       &sync.Mutex{},
		interval: time.Second,
		now:      time.Now,
		memory:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Default()
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame. When the interval has elapsed the accumulated frames are averaged into a new
// Stats snapshot and logged.
//
// Parameters:
//   - report: the report returned by the renderer for this frame
//
// Returns:
//   - bool: true if stats were published this tick, false otherwise
func (p *Profiler) Tick(report renderer.FrameReport) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Frames++
	p.last = report
	if report.Skipped {
		p.stats.Skipped++
	} else {
		p.frames++
		p.cpuTime += report.CPUTime
		p.draws += report.Draws
		p.instances += report.Instances
	}

	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.interval {
		return false
	}

	p.stats.FPS = float64(p.frames) / elapsed.Seconds()
	p.stats.FrameMS, p.stats.Draws, p.stats.Instances = 0, 0, 0
	if p.frames > 0 {
		n := float64(p.frames)
		p.stats.FrameMS = float64(p.cpuTime.Microseconds()) / 1000 / n
		p.stats.Draws = float64(p.draws) / n
		p.stats.Instances = float64(p.instances) / n
	}
	p.stats.Width, p.stats.Height = report.Width, report.Height
	if p.memory {
		p.readMemory(elapsed)
	}

	p.logger.Info("profiler",
		"fps", p.stats.FPS,
		"frame_ms", p.stats.FrameMS,
		"draws", p.stats.Draws,
		"instances", p.stats.Instances,
		"heap_mb", p.stats.HeapMB,
		"alloc_mb_s", p.stats.AllocRateMB,
		"gc", p.stats.GCCount,
		"gc_max_us", p.stats.MaxPauseUs,
	)

	p.frames, p.cpuTime, p.draws, p.instances = 0, 0, 0, 0
	p.lastTime = current
	return true
}

func (p *Profiler) readMemory(elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc only grows and tracks churn, Sys is the process footprint.
	p.stats.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	p.stats.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	p.stats.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	p.stats.GCCount = gcCount
	p.stats.LastPauseUs, p.stats.MaxPauseUs = 0, 0
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		p.stats.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > p.stats.MaxPauseUs {
				p.stats.MaxPauseUs = pause
			}
		}
	}
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

// Stats returns the snapshot published by the most recent interval.
func (p *Profiler) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Last returns the most recent frame report passed to Tick.
func (p *Profiler) Last() renderer.FrameReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.last
	last.Passes = append([]string(nil), p.last.Passes...)
	return last
}

// Lines formats the current stats as text overlay lines.
func (p *Profiler) Lines() []string {
	s := p.Stats()
	return []string{
		fmt.Sprintf("FPS %.1f", s.FPS),
		fmt.Sprintf("Frame %.2f ms", s.FrameMS),
		fmt.Sprintf("Draws %.0f", s.Draws),
		fmt.Sprintf("Instances %.0f", s.Instances),
	}
}
