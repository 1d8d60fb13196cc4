package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis (0 = +Z axis).
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.elevation = elevation
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - x: X coordinate of the target
//   - y: Y coordinate of the target
//   - z: Z coordinate of the target
//
// Returns:
//   - CameraControllerOption: functional option to set the target
func WithTarget(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = mgl32.Vec3{x, y, z}
	}
}

// WithRadiusLimits sets the zoom bounds.
func WithRadiusLimits(minRadius, maxRadius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = minRadius
		cc.maxRadius = maxRadius
	}
}

// WithSpeeds sets the orbit step, mouse sensitivity, zoom and pan multipliers.
//
// Parameters:
//   - orbit: radians per keyboard orbit step
//   - mouse: radians per pixel of mouse drag
//   - zoom: radius change per zoom unit
//   - pan: world units per pan unit
//
// Returns:
//   - CameraControllerOption: functional option to set the speeds
func WithSpeeds(orbit, mouse, zoom, pan float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = orbit
		cc.mouseSensitivity = mouse
		cc.zoomSpeed = zoom
		cc.panSpeed = pan
	}
}
