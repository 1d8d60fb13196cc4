package window

// EventKind identifies the input or window event carried by an Event.
type EventKind int

const (
	EventKeyDown EventKind = iota
	EventKeyUp
	EventMouseDown
	EventMouseUp
	EventCursor
	EventScroll
	EventResize
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventMouseDown:
		return "mouse_down"
	case EventMouseUp:
		return "mouse_up"
	case EventCursor:
		return "cursor"
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// MouseButton values match GLFW button numbers.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// Event is a single window or input notification. Only the fields relevant to Kind are set:
// Key for key events, Button with X/Y for mouse buttons, X/Y for cursor moves, Delta for scroll
// and Width/Height (framebuffer pixels) for resize.
type Event struct {
	Kind   EventKind
	Key    uint32
	Button MouseButton
	X, Y   float32
	Delta  float32
	Width  int
	Height int
}

// Key actions as reported by GLFW.
const (
	actionRelease = 0
	actionPress   = 1
	actionRepeat  = 2
)

// keyEvent maps a key and action pair to a key event. Repeats are reported as key down.
func keyEvent(key, action int) (Event, bool) {
	switch action {
	case actionPress, actionRepeat:
		return Event{Kind: EventKeyDown, Key: uint32(key)}, true
	case actionRelease:
		return Event{Kind: EventKeyUp, Key: uint32(key)}, true
	}
	return Event{}, false
}

// buttonEvent maps a mouse button and action pair to a button event at the cursor position.
func buttonEvent(button, action int, x, y float64) (Event, bool) {
	e := Event{Button: MouseButton(button), X: float32(x), Y: float32(y)}
	switch action {
	case actionPress:
		e.Kind = EventMouseDown
	case actionRelease:
		e.Kind = EventMouseUp
	default:
		return Event{}, false
	}
	return e, true
}
