// Package light holds the light components attached to scene entities, their raw GPU layouts,
// per-frame aggregation into the light uniform and shadow layer bookkeeping.
package light

import "github.com/go-gl/mathgl/mgl32"

// PointLight is an omnidirectional light. Its position comes from the Transform of the entity carrying it.
type PointLight struct {
	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3

	// Constant, Linear and Quadratic are the attenuation coefficients of
	// 1 / (constant + linear*d + quadratic*d^2).
	Constant  float32
	Linear    float32
	Quadratic float32
}

// NewPointLight creates a white point light with a ~50 unit falloff and any provided options applied.
//
// Parameters:
//   - opts: variadic list of PointLightBuilderOption functions to configure the light
//
// Returns:
//   - PointLight: the configured light
func NewPointLight(opts ...PointLightBuilderOption) PointLight {
	l := PointLight{
		Ambient:   mgl32.Vec3{0.01, 0.01, 0.01},
		Diffuse:   mgl32.Vec3{1, 1, 1},
		Specular:  mgl32.Vec3{1, 1, 1},
		Constant:  1.0,
		Linear:    0.09,
		Quadratic: 0.032,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Default volume of the directional light's orthographic shadow projection.
const (
	DefaultShadowHalfExtent float32 = 10.0
	DefaultShadowDistance   float32 = 10.0
	DefaultShadowNear       float32 = 1.0
	DefaultShadowFar        float32 = 100.0
)

// DirectionalLight is a light with no position, only a travel direction. A scene uses at most one;
// the first one found wins.
type DirectionalLight struct {
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Direction mgl32.Vec3

	// HalfExtent, Distance, Near and Far shape the shadow volume, see common.DirectionalLightViewProjection.
	HalfExtent float32
	Distance   float32
	Near       float32
	Far        float32

	CastsShadows bool
}

// NewDirectionalLight creates a white light pointing straight down with any provided options applied.
//
// Parameters:
//   - opts: variadic list of DirectionalLightBuilderOption functions to configure the light
//
// Returns:
//   - DirectionalLight: the configured light
func NewDirectionalLight(opts ...DirectionalLightBuilderOption) DirectionalLight {
	l := DirectionalLight{
		Ambient:      mgl32.Vec3{0.01, 0.01, 0.01},
		Diffuse:      mgl32.Vec3{1, 1, 1},
		Specular:     mgl32.Vec3{1, 1, 1},
		Direction:    mgl32.Vec3{0, -1, 0},
		HalfExtent:   DefaultShadowHalfExtent,
		Distance:     DefaultShadowDistance,
		Near:         DefaultShadowNear,
		Far:          DefaultShadowFar,
		CastsShadows: true,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}
