package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/debugserver"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
	"github.com/charmbracelet/log"
)

// engine implements the Engine interface.
// The render loop runs on the goroutine calling Run; the fixed-rate tick and the asset watcher run on their own.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	renderer renderer.Renderer
	world    scene.World
	camera   camera.Camera
	profiler *profiler.Profiler
	logger   *log.Logger
	watcher  *asset.Watcher
	debug    *debugserver.Server
	input    *cameraInput

	tickRate       time.Duration
	tickRateChange chan time.Duration
	tickCallback   func(deltaTime float32)
	eventCallback  func(window.Event)
	frameLimit     time.Duration
	overlayStats   bool

	running bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

// Engine is the main entry point. It drives the window, the renderer and the per-frame bookkeeping.
type Engine interface {
	// Window returns the window the engine polls.
	Window() window.Window

	// Renderer returns the frame orchestrator.
	Renderer() renderer.Renderer

	// World returns the entity world rendered every frame.
	World() scene.World

	// Camera returns the camera rendered from.
	Camera() camera.Camera

	// Profiler returns the frame statistics collector.
	Profiler() *profiler.Profiler

	// SetTickRate sets the fixed update rate in ticks per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, receiving the delta time in seconds.
	SetTickCallback(callback func(deltaTime float32))

	// SetEventCallback registers a function receiving every window event after the engine has handled it.
	SetEventCallback(callback func(window.Event))

	// Run renders frames until the window closes, ctx is cancelled, Quit is called or a frame fails fatally.
	// It may be called again once it has returned; a concurrent call fails.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the fatal frame error, or nil on a normal shutdown
	Run(ctx context.Context) error

	// Quit signals the loop to stop after the current frame. Safe to call more than once.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine over an open window and a constructed renderer.
//
// Parameters:
//   - w: the window to poll
//   - r: the renderer presenting to w's surface
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(w window.Window, r renderer.Renderer, options ...EngineBuilderOption) Engine {
	if w == nil || r == nil {
		panic("engine: window and renderer are required")
	}
	e := &engine{
		mu:             &sync.Mutex{},
		window:         w,
		renderer:       r,
		tickRate:       time.Second / 60,
		tickRateChange: make(chan time.Duration, 1),
		quit:           make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Default()
	}
	if e.world == nil {
		e.world = scene.NewWorld()
	}
	if e.camera == nil {
		e.camera = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.input == nil {
		e.input = newCameraInput()
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) World() scene.World {
	return e.world
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		cancel()
		return fmt.Errorf("engine: already running")
	}
	e.running = true
	quit := e.quit
	e.mu.Unlock()

	e.window.SetEventCallback(e.handleEvent)
	if w, h := e.window.FramebufferSize(); w > 0 && h > 0 {
		e.resize(w, h)
	}

	if e.debug != nil {
		if err := e.debug.Start(); err != nil {
			cancel()
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			return err
		}
	}

	e.wg.Add(1)
	go e.handleTick(ctx, quit)
	if e.watcher != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.watcher.Run(ctx); err != nil {
				e.logger.Error("asset watcher stopped", "err", err)
			}
		}()
	}

	defer func() {
		e.signalQuit()
		cancel()
		e.wg.Wait()
		if e.debug != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			if serr := e.debug.Shutdown(shutdownCtx); serr != nil {
				e.logger.Warn("debug server shutdown", "err", serr)
			}
		}
		// quit is closed by now; a later Run starts with a fresh one
		e.mu.Lock()
		e.running = false
		e.quit = make(chan struct{})
		e.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render loop recovered from panic", "panic", r)
			err = fmt.Errorf("engine: render loop panic: %v", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quit:
			return nil
		default:
		}

		start := time.Now()
		if !e.window.PollEvents() {
			return nil
		}
		if err := e.frame(); err != nil {
			e.logger.Error("frame failed", "err", err)
			return err
		}
		if e.frameLimit > 0 {
			if remaining := e.frameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// frame renders one frame and feeds its report to the profiler and the overlay.
func (e *engine) frame() error {
	e.camera.Update()
	report, err := e.renderer.RenderFrame(e.world, e.camera)
	if err != nil {
		return err
	}
	if e.profiler.Tick(report) && e.overlayStats {
		if o := e.renderer.Overlay(); o != nil {
			o.SetLines(e.profiler.Lines()...)
		}
	}
	return nil
}

func (e *engine) handleEvent(ev window.Event) {
	switch ev.Kind {
	case window.EventResize:
		e.resize(ev.Width, ev.Height)
	case window.EventClose:
		e.signalQuit()
	case window.EventKeyDown:
		if ev.Key == common.KeyEscape {
			e.signalQuit()
			break
		}
		e.input.handle(ev, e.camera.Controller())
	default:
		e.input.handle(ev, e.camera.Controller())
	}
	e.mu.Lock()
	cb := e.eventCallback
	e.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

// resize forwards a framebuffer size to the renderer and the camera. Minimized sizes are ignored.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	e.camera.SetAspect(float32(width) / float32(height))
}

// handleTick runs the fixed-rate tick loop until ctx is cancelled or quit is closed. Rate changes arrive
// through tickRateChange.
func (e *engine) handleTick(ctx context.Context, quit <-chan struct{}) {
	defer e.wg.Done()

	e.mu.Lock()
	rate := e.tickRate
	e.mu.Unlock()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case now := <-ticker.C:
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.input.apply(dt, e.camera.Controller())

			e.mu.Lock()
			cb := e.tickCallback
			e.mu.Unlock()
			if cb != nil {
				cb(dt)
			}
		case next := <-e.tickRateChange:
			ticker.Reset(next)
		}
	}
}

func (e *engine) signalQuit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.quit:
	default:
		close(e.quit)
	}
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	next := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	e.tickRate = next
	running := e.running
	e.mu.Unlock()
	if !running {
		return
	}
	// Replace any pending change so the latest rate wins.
	select {
	case e.tickRateChange <- next:
	default:
		select {
		case <-e.tickRateChange:
		default:
		}
		e.tickRateChange <- next
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetEventCallback(callback func(window.Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventCallback = callback
}
