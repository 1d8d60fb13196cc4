package common

// Key codes as delivered by window key events. Printable keys use their uppercase ASCII value,
// matching GLFW.
const (
	KeyA uint32 = 'A'
	KeyD uint32 = 'D'
	KeyE uint32 = 'E'
	KeyQ uint32 = 'Q'
	KeyS uint32 = 'S'
	KeyW uint32 = 'W'

	// KeyEscape closes the engine.
	KeyEscape uint32 = 256
)
