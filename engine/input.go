package engine

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
)

// cameraInput maps window events to camera controller moves: WASD pans, Q/E orbit, the scroll wheel zooms
// and a middle mouse drag orbits. Key state is sampled on every tick.
type cameraInput struct {
	mu       *sync.Mutex
	keys     map[uint32]bool
	dragging bool
	lastX    float32
	lastY    float32
}

func newCameraInput() *cameraInput {
	return &cameraInput{
		mu:   &sync.Mutex{},
		keys: make(map[uint32]bool),
	}
}

func (in *cameraInput) handle(ev window.Event, ctrl camera.CameraController) {
	in.mu.Lock()
	defer in.mu.Unlock()

	switch ev.Kind {
	case window.EventKeyDown:
		in.keys[ev.Key] = true
	case window.EventKeyUp:
		in.keys[ev.Key] = false
	case window.EventMouseDown:
		if ev.Button == window.MouseButtonMiddle {
			in.dragging = true
			in.lastX, in.lastY = ev.X, ev.Y
		}
	case window.EventMouseUp:
		if ev.Button == window.MouseButtonMiddle {
			in.dragging = false
		}
	case window.EventCursor:
		if in.dragging && ctrl != nil {
			s := ctrl.MouseSensitivity()
			ctrl.Orbit((ev.X-in.lastX)*s, -(ev.Y-in.lastY)*s)
		}
		in.lastX, in.lastY = ev.X, ev.Y
	case window.EventScroll:
		if ctrl != nil {
			ctrl.Zoom(ev.Delta)
		}
	}
}

// apply moves the controller for every held key. Steps are scaled to a 60 Hz tick.
func (in *cameraInput) apply(dt float32, ctrl camera.CameraController) {
	if ctrl == nil {
		return
	}
	in.mu.Lock()
	var right, up, orbit float32
	if in.keys[common.KeyD] {
		right++
	}
	if in.keys[common.KeyA] {
		right--
	}
	if in.keys[common.KeyW] {
		up++
	}
	if in.keys[common.KeyS] {
		up--
	}
	if in.keys[common.KeyE] {
		orbit++
	}
	if in.keys[common.KeyQ] {
		orbit--
	}
	in.mu.Unlock()

	step := dt * 60
	if right != 0 || up != 0 {
		ctrl.Pan(right*step, up*step)
	}
	if orbit != 0 {
		ctrl.Orbit(orbit*ctrl.OrbitSpeed()*step, 0)
	}
}
