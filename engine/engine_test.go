package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow stays open for a fixed number of polls and delivers queued events on the next poll.
type fakeWindow struct {
	polls   int
	events  [][]window.Event
	width   int
	height  int
	onEvent func(window.Event)
}

func (w *fakeWindow) SetEventCallback(cb func(window.Event))     { w.onEvent = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) FramebufferSize() (int, int)                { return w.width, w.height }
func (w *fakeWindow) IsRunning() bool                            { return w.polls > 0 }
func (w *fakeWindow) Close() error                               { return nil }

func (w *fakeWindow) PollEvents() bool {
	if w.polls == 0 {
		return false
	}
	w.polls--
	if len(w.events) > 0 {
		for _, e := range w.events[0] {
			if w.onEvent != nil {
				w.onEvent(e)
			}
		}
		w.events = w.events[1:]
	}
	return true
}

type fixture struct {
	rec      *gputest.Recorder
	renderer renderer.Renderer
	quiet    *log.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := gputest.NewRecorder()
	quiet := logger.NewWithWriter(&bytes.Buffer{}, "error", "test")

	layout, err := material.NewLayout(rec)
	require.NoError(t, err)
	models := asset.NewStore[model.Model](model.NewLoader(layout), asset.WithWorkers(0), asset.WithLogger(quiet))
	heightMaps := asset.NewStore[heightmap.HeightMap](heightmap.NewLoader(), asset.WithWorkers(0), asset.WithLogger(quiet))

	r, err := renderer.NewRenderer(rec, renderer.Assets{Models: models, HeightMaps: heightMaps, Materials: layout},
		renderer.WithLogger(quiet), renderer.WithShadowMapSize(128))
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return &fixture{rec: rec, renderer: r, quiet: quiet}
}

func (f *fixture) engine(w window.Window, opts ...EngineBuilderOption) Engine {
	return NewEngine(w, f.renderer, append([]EngineBuilderOption{
		WithLogger(f.quiet),
		WithProfiler(profiler.NewProfiler(profiler.WithLogger(f.quiet), profiler.WithMemoryStats(false))),
	}, opts...)...)
}

func TestNewEngineRequiresWindowAndRenderer(t *testing.T) {
	assert.PanicsWithValue(t, "engine: window and renderer are required", func() {
		NewEngine(nil, nil)
	})
}

func TestRunRendersUntilWindowCloses(t *testing.T) {
	f := newFixture(t)
	e := f.engine(&fakeWindow{polls: 3, width: 1280, height: 720})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, f.rec.Presents)
	assert.Equal(t, uint64(3), e.Profiler().Stats().Frames)
	assert.Equal(t, uint64(3), e.Profiler().Last().Frame)
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	f := newFixture(t)
	w := &fakeWindow{polls: 1 << 30, width: 1280, height: 720}
	e := f.engine(w, WithTickRate(1000), WithFrameLimit(200))
	nested := make(chan error, 1)
	e.SetTickCallback(func(float32) {
		select {
		case nested <- e.Run(context.Background()):
			e.Quit()
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}
	err := <-nested
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestRunAgainAfterCleanExit(t *testing.T) {
	f := newFixture(t)
	w := &fakeWindow{polls: 1, width: 1280, height: 720}
	e := f.engine(w)
	require.NoError(t, e.Run(context.Background()))

	w.polls = 2
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 3, f.rec.Presents)

	w.polls = 1
	w.events = [][]window.Event{{{Kind: window.EventClose}}}
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 4, f.rec.Presents)
}

func TestResizeEventReachesRendererAndCamera(t *testing.T) {
	f := newFixture(t)
	w := &fakeWindow{
		polls:  2,
		width:  1280,
		height: 720,
		events: [][]window.Event{{{Kind: window.EventResize, Width: 800, Height: 400}}},
	}
	e := f.engine(w)

	require.NoError(t, e.Run(context.Background()))
	width, height := f.renderer.DepthSize()
	assert.Equal(t, [2]uint32{800, 400}, [2]uint32{width, height})
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)
}

func TestMinimizedResizeIsIgnored(t *testing.T) {
	f := newFixture(t)
	w := &fakeWindow{
		polls:  1,
		width:  1280,
		height: 720,
		events: [][]window.Event{{{Kind: window.EventResize, Width: 0, Height: 0}}},
	}
	require.NoError(t, f.engine(w).Run(context.Background()))
	width, height := f.renderer.DepthSize()
	assert.Equal(t, [2]uint32{1280, 720}, [2]uint32{width, height})
}

func TestCloseEventStopsAfterCurrentFrame(t *testing.T) {
	f := newFixture(t)
	w := &fakeWindow{
		polls:  10,
		width:  1280,
		height: 720,
		events: [][]window.Event{{{Kind: window.EventClose}}},
	}
	var seen []window.EventKind
	e := f.engine(w)
	e.SetEventCallback(func(ev window.Event) { seen = append(seen, ev.Kind) })

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 1, f.rec.Presents)
	assert.Equal(t, []window.EventKind{window.EventClose}, seen)
}

func TestEscapeKeyStopsRun(t *testing.T) {
	f := newFixture(t)
	w := &fakeWindow{
		polls:  10,
		width:  1280,
		height: 720,
		events: [][]window.Event{{{Kind: window.EventKeyDown, Key: common.KeyEscape}}},
	}
	require.NoError(t, f.engine(w).Run(context.Background()))
	assert.Equal(t, 1, f.rec.Presents)
}

func TestCancelledContextRendersNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.engine(&fakeWindow{polls: 5, width: 1280, height: 720}).Run(ctx))
	assert.Zero(t, f.rec.Presents)
}

func TestFatalFrameErrorStopsRun(t *testing.T) {
	f := newFixture(t)
	f.rec.AcquireErrors = []error{errors.New("device lost")}

	err := f.engine(&fakeWindow{polls: 5, width: 1280, height: 720}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, renderer.ErrFatal)
	assert.Zero(t, f.rec.Presents)
}

func TestRecoverableFrameErrorContinues(t *testing.T) {
	f := newFixture(t)
	f.rec.AcquireErrors = []error{gpu.ErrSurfaceLost}

	e := f.engine(&fakeWindow{polls: 2, width: 1280, height: 720})
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 1, f.rec.Presents)
	assert.Equal(t, uint64(1), e.Profiler().Stats().Skipped)
}

func TestPanicInLoopIsRecovered(t *testing.T) {
	f := newFixture(t)
	w := &fakeWindow{
		polls:  3,
		width:  1280,
		height: 720,
		events: [][]window.Event{{{Kind: window.EventScroll, Delta: 1}}},
	}
	e := f.engine(w)
	e.SetEventCallback(func(window.Event) { panic("boom") })

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestTickCallbackRuns(t *testing.T) {
	f := newFixture(t)
	ticked := make(chan float32, 1)
	w := &fakeWindow{polls: 1 << 30, width: 1280, height: 720}
	e := f.engine(w, WithTickRate(1000), WithFrameLimit(200))
	e.SetTickCallback(func(dt float32) {
		select {
		case ticked <- dt:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	select {
	case dt := <-ticked:
		assert.Greater(t, dt, float32(0))
	case <-time.After(5 * time.Second):
		t.Fatal("tick callback never ran")
	}
	e.SetTickRate(120)
	cancel()
	require.NoError(t, <-done)
}

func TestCameraInput(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithRadius(10))
	in := newCameraInput()

	in.handle(window.Event{Kind: window.EventScroll, Delta: 1}, ctrl)
	assert.Less(t, ctrl.Radius(), float32(10))

	before := ctrl.Target()
	in.handle(window.Event{Kind: window.EventKeyDown, Key: common.KeyD}, ctrl)
	in.apply(1.0/60, ctrl)
	assert.NotEqual(t, before, ctrl.Target(), "D pans the target")

	in.handle(window.Event{Kind: window.EventKeyUp, Key: common.KeyD}, ctrl)
	moved := ctrl.Target()
	in.apply(1.0/60, ctrl)
	assert.Equal(t, moved, ctrl.Target())

	elevation := ctrl.Elevation()
	in.handle(window.Event{Kind: window.EventMouseDown, Button: window.MouseButtonMiddle, X: 100, Y: 100}, ctrl)
	in.handle(window.Event{Kind: window.EventCursor, X: 100, Y: 50}, ctrl)
	assert.Greater(t, ctrl.Elevation(), elevation, "dragging up raises the camera")

	in.handle(window.Event{Kind: window.EventMouseUp, Button: window.MouseButtonMiddle}, ctrl)
	elevation = ctrl.Elevation()
	in.handle(window.Event{Kind: window.EventCursor, X: 100, Y: 0}, ctrl)
	assert.Equal(t, elevation, ctrl.Elevation())

	assert.NotPanics(t, func() { in.apply(1, nil) })
}
