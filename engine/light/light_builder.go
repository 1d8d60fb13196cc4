package light

import "github.com/go-gl/mathgl/mgl32"

// PointLightBuilderOption is a function that configures a PointLight during construction.
type PointLightBuilderOption func(*PointLight)

// DirectionalLightBuilderOption is a function that configures a DirectionalLight during construction.
type DirectionalLightBuilderOption func(*DirectionalLight)

// WithColor sets the diffuse and specular color of a point light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - PointLightBuilderOption: a function that applies the color option to a PointLight
func WithColor(r, g, b float32) PointLightBuilderOption {
	return func(l *PointLight) {
		l.Diffuse = mgl32.Vec3{r, g, b}
		l.Specular = mgl32.Vec3{r, g, b}
	}
}

// WithAmbient sets the ambient term of a point light.
func WithAmbient(r, g, b float32) PointLightBuilderOption {
	return func(l *PointLight) {
		l.Ambient = mgl32.Vec3{r, g, b}
	}
}

// WithAttenuation sets the constant, linear and quadratic attenuation terms.
//
// Parameters:
//   - constant: the constant term
//   - linear: the linear term
//   - quadratic: the quadratic term
//
// Returns:
//   - PointLightBuilderOption: a function that applies the attenuation option to a PointLight
func WithAttenuation(constant, linear, quadratic float32) PointLightBuilderOption {
	return func(l *PointLight) {
		l.Constant = constant
		l.Linear = linear
		l.Quadratic = quadratic
	}
}

// WithCastsShadows sets whether a directional light renders into a shadow atlas layer.
func WithCastsShadows(casts bool) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		l.CastsShadows = casts
	}
}

// WithDirection sets the direction a directional light travels. The direction is normalized before storing;
// a zero vector keeps the default.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - DirectionalLightBuilderOption: a function that applies the direction option to a DirectionalLight
func WithDirection(x, y, z float32) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		d := mgl32.Vec3{x, y, z}
		if d.Len() == 0 {
			return
		}
		l.Direction = d.Normalize()
	}
}

// WithDirectionalColor sets the diffuse and specular color of a directional light.
func WithDirectionalColor(r, g, b float32) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		l.Diffuse = mgl32.Vec3{r, g, b}
		l.Specular = mgl32.Vec3{r, g, b}
	}
}

// WithDirectionalAmbient sets the ambient term of a directional light.
func WithDirectionalAmbient(r, g, b float32) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		l.Ambient = mgl32.Vec3{r, g, b}
	}
}

// WithShadowVolume sets the orthographic shadow volume of a directional light.
//
// Parameters:
//   - halfExtent: half the width and height of the volume
//   - distance: distance of the light eye from the origin
//   - near: near plane
//   - far: far plane
//
// Returns:
//   - DirectionalLightBuilderOption: a function that applies the volume to a DirectionalLight
func WithShadowVolume(halfExtent, distance, near, far float32) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		l.HalfExtent = halfExtent
		l.Distance = distance
		l.Near = near
		l.Far = far
	}
}
