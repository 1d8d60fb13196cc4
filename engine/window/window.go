package window

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides the platform window the renderer presents to and the input events the engine consumes.
type Window interface {
	// SetEventCallback sets the function receiving every input and window event on the polling goroutine.
	//
	// Parameters:
	//   - callback: the event handler, or nil to discard events
	SetEventCallback(callback func(Event))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for the window, created by the wgpuglfw bridge.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents processes pending platform events without blocking.
	//
	// Returns:
	//   - bool: true while the window is still open
	PollEvents() bool

	// FramebufferSize returns the drawable size in pixels, which differs from the window size on high-DPI displays.
	FramebufferSize() (int, int)

	// IsRunning returns true until the window is closed.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	mu *sync.Mutex

	title     string
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height track the framebuffer, not the window frame.
	width  int
	height int

	// internalWindow holds the platform window (glfwWindow).
	internalWindow any

	onEvent func(Event)
}

var _ Window = &engineWindow{}

// NewWindow creates the platform window. Defaults are applied first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "oxy-frame",
		maxWidth:  0,
		maxHeight: 0,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// emit records size changes and forwards e to the callback.
func (w *engineWindow) emit(e Event) {
	w.mu.Lock()
	if e.Kind == EventResize {
		w.width, w.height = e.Width, e.Height
	}
	cb := w.onEvent
	w.mu.Unlock()
	if cb != nil {
		cb(e)
	}
}

func (w *engineWindow) SetEventCallback(callback func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onEvent = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) FramebufferSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}
