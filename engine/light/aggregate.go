package light

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// PointLightSample is one point light as read from the frame snapshot.
type PointLightSample struct {
	Entity   uuid.UUID
	Light    PointLight
	Position mgl32.Vec3
}

// DirectionalLightSample is one directional light as read from the frame snapshot.
type DirectionalLightSample struct {
	Entity uuid.UUID
	Light  DirectionalLight
}

// AggregatePointLights packs samples into the light array in iteration order. Slot i holds the i-th sample.
// LightsUsed is min(len(samples), MaxPointLights), unused slots stay zero and lights past the capacity
// are dropped.
//
// Parameters:
//   - samples: the point lights in snapshot order
//
// Returns:
//   - GPULightUniform: the packed uniform
//   - int: the number of dropped lights
func AggregatePointLights(samples []PointLightSample) (GPULightUniform, int) {
	var u GPULightUniform
	used := common.Clamp(len(samples), 0, MaxPointLights)
	for i := range used {
		u.Lights[i] = ToGPUPointLight(samples[i].Light, samples[i].Position)
	}
	u.LightsUsed = uint32(used)
	return u, len(samples) - used
}

// LightSpaceMatrix returns projection x view of the light's orthographic shadow volume.
//
// Returns:
//   - mgl32.Mat4: the light-space matrix
func (l DirectionalLight) LightSpaceMatrix() mgl32.Mat4 {
	return common.DirectionalLightViewProjection(l.Direction, l.HalfExtent, l.Distance, l.Near, l.Far)
}

// ToGPUDirectionalLight packs a directional light with the shadow layer it samples, -1 for none.
//
// Parameters:
//   - l: the light
//   - shadowLayer: the atlas layer or -1
//
// Returns:
//   - GPUDirectionalLight: the raw form
func ToGPUDirectionalLight(l DirectionalLight, shadowLayer int32) GPUDirectionalLight {
	return GPUDirectionalLight{
		Ambient:     l.Ambient,
		Diffuse:     l.Diffuse,
		Specular:    l.Specular,
		Direction:   l.Direction,
		ShadowLayer: shadowLayer,
		LightSpace:  l.LightSpaceMatrix(),
	}
}

// Aggregator wraps AggregatePointLights and logs once when lights start and stop being dropped.
type Aggregator struct {
	logger   *log.Logger
	dropping bool
}

// AggregatorBuilderOption is a function that configures an Aggregator during construction.
type AggregatorBuilderOption func(*Aggregator)

// WithLogger sets the logger used for clamp notices.
func WithLogger(l *log.Logger) AggregatorBuilderOption {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// NewAggregator creates an aggregator logging to logger.Default unless overridden.
func NewAggregator(opts ...AggregatorBuilderOption) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Default()
	}
	return a
}

// Aggregate packs the samples and reports clamp transitions at debug level.
//
// Parameters:
//   - samples: the point lights in snapshot order
//
// Returns:
//   - GPULightUniform: the packed uniform
func (a *Aggregator) Aggregate(samples []PointLightSample) GPULightUniform {
	u, dropped := AggregatePointLights(samples)
	switch {
	case dropped > 0 && !a.dropping:
		a.logger.Debug("point lights over capacity, dropping extras", "lights", len(samples), "capacity", MaxPointLights)
	case dropped == 0 && a.dropping:
		a.logger.Debug("point lights back within capacity", "lights", len(samples), "capacity", MaxPointLights)
	}
	a.dropping = dropped > 0
	return u
}

// Dropping reports whether the last Aggregate call dropped lights.
func (a *Aggregator) Dropping() bool {
	return a.dropping
}
