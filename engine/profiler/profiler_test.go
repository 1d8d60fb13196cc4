package profiler

import (
	"bytes"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestProfiler(buf *bytes.Buffer) (*Profiler, *clock) {
	c := &clock{t: time.Unix(1000, 0)}
	p := NewProfiler(
		WithClock(c.now),
		WithInterval(time.Second),
		WithLogger(logger.NewWithWriter(buf, "info", "test")),
	)
	return p, c
}

func TestTickPublishesOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	p, c := newTestProfiler(&buf)

	for range 3 {
		c.advance(250 * time.Millisecond)
		assert.False(t, p.Tick(renderer.FrameReport{Draws: 4, Instances: 100, CPUTime: 2 * time.Millisecond}))
	}
	assert.Zero(t, p.Stats().FPS)
	assert.Empty(t, buf.String())

	c.advance(250 * time.Millisecond)
	require.True(t, p.Tick(renderer.FrameReport{Draws: 8, Instances: 200, CPUTime: 6 * time.Millisecond, Width: 800, Height: 600}))

	s := p.Stats()
	assert.Equal(t, uint64(4), s.Frames)
	assert.InDelta(t, 4.0, s.FPS, 1e-9)
	assert.InDelta(t, 3.0, s.FrameMS, 1e-9)
	assert.InDelta(t, 5.0, s.Draws, 1e-9)
	assert.InDelta(t, 125.0, s.Instances, 1e-9)
	assert.Equal(t, uint32(800), s.Width)
	assert.Greater(t, s.SysMB, 0.0)
	assert.Contains(t, buf.String(), "fps=4")
}

func TestSkippedFramesAreCountedSeparately(t *testing.T) {
	var buf bytes.Buffer
	p, c := newTestProfiler(&buf)

	p.Tick(renderer.FrameReport{Skipped: true})
	c.advance(time.Second)
	require.True(t, p.Tick(renderer.FrameReport{Draws: 2}))

	s := p.Stats()
	assert.Equal(t, uint64(2), s.Frames)
	assert.Equal(t, uint64(1), s.Skipped)
	assert.InDelta(t, 1.0, s.FPS, 1e-9)
	assert.InDelta(t, 2.0, s.Draws, 1e-9)
}

func TestIntervalResetsAccumulators(t *testing.T) {
	var buf bytes.Buffer
	p, c := newTestProfiler(&buf)

	c.advance(time.Second)
	p.Tick(renderer.FrameReport{Draws: 10})
	c.advance(time.Second)
	p.Tick(renderer.FrameReport{Draws: 2})
	assert.InDelta(t, 2.0, p.Stats().Draws, 1e-9)
}

func TestLastCopiesPasses(t *testing.T) {
	var buf bytes.Buffer
	p, _ := newTestProfiler(&buf)
	passes := []string{"Skybox", "Model"}
	p.Tick(renderer.FrameReport{Frame: 7, Passes: passes})

	last := p.Last()
	assert.Equal(t, uint64(7), last.Frame)
	last.Passes[0] = "changed"
	assert.Equal(t, "Skybox", p.Last().Passes[0])
}

func TestLines(t *testing.T) {
	var buf bytes.Buffer
	p, c := newTestProfiler(&buf)
	c.advance(time.Second)
	p.Tick(renderer.FrameReport{Draws: 3, Instances: 54, CPUTime: 1500 * time.Microsecond})
	assert.Equal(t, []string{"FPS 1.0", "Frame 1.50 ms", "Draws 3", "Instances 54"}, p.Lines())
}
