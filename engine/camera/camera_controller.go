package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the positional state of a camera. Orbit methods move the camera on a sphere
// around the target; pan methods translate position and target together along the camera's local axes.
type CameraController interface {
	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Orbit rotates the camera around the target. Elevation is clamped to the configured bounds.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the camera toward the target. Positive delta zooms in. The radius is clamped.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Pan translates position and target along the camera's right and up axes.
	//
	// Parameters:
	//   - right: pan amount along the right axis
	//   - up: pan amount along the up axis
	Pan(right, up float32)

	// Radius returns the current orbit radius (distance from target).
	Radius() float32

	// Elevation returns the current vertical angle in radians.
	Elevation() float32

	// OrbitSpeed returns the keyboard orbit step in radians.
	OrbitSpeed() float32

	// MouseSensitivity returns the radians per pixel of mouse drag.
	MouseSensitivity() float32
}
