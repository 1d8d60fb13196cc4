package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		name   string
		action int
		want   Event
		ok     bool
	}{
		{"press", actionPress, Event{Kind: EventKeyDown, Key: 87}, true},
		{"repeat", actionRepeat, Event{Kind: EventKeyDown, Key: 87}, true},
		{"release", actionRelease, Event{Kind: EventKeyUp, Key: 87}, true},
		{"unknown", 9, Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keyEvent(87, tt.action)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestButtonEvent(t *testing.T) {
	e, ok := buttonEvent(int(MouseButtonMiddle), actionPress, 10.5, 20)
	assert.True(t, ok)
	assert.Equal(t, Event{Kind: EventMouseDown, Button: MouseButtonMiddle, X: 10.5, Y: 20}, e)

	e, ok = buttonEvent(int(MouseButtonLeft), actionRelease, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, EventMouseUp, e.Kind)

	_, ok = buttonEvent(int(MouseButtonLeft), actionRepeat, 0, 0)
	assert.False(t, ok)
}

func TestEmitTracksFramebufferSize(t *testing.T) {
	w := newEngineWindow(WithSize(800, 600))
	width, height := w.FramebufferSize()
	assert.Equal(t, [2]int{800, 600}, [2]int{width, height})

	var got []Event
	w.SetEventCallback(func(e Event) { got = append(got, e) })
	w.emit(Event{Kind: EventResize, Width: 1024, Height: 768})
	w.emit(Event{Kind: EventScroll, Delta: -1})

	width, height = w.FramebufferSize()
	assert.Equal(t, [2]int{1024, 768}, [2]int{width, height})
	assert.Len(t, got, 2)
	assert.Equal(t, EventScroll, got[1].Kind)
}

func TestUninitializedWindow(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.IsRunning())
	assert.False(t, w.PollEvents())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "resize", EventResize.String())
	assert.Equal(t, "unknown", EventKind(99).String())
}
