package scene

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
)

// EntityBuilderOption attaches a component while the entity is spawned. Options run under the world lock.
type EntityBuilderOption func(w *world, e Entity)

// WithTransform is an option builder that places the entity.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - EntityBuilderOption: a function that attaches the transform
func WithTransform(t Transform) EntityBuilderOption {
	return func(w *world, e Entity) {
		w.transforms[e] = t
	}
}

// WithModel is an option builder that attaches a model asset.
//
// Parameters:
//   - h: the model handle from an asset store
//
// Returns:
//   - EntityBuilderOption: a function that attaches the model reference
func WithModel(h asset.Handle[model.Model]) EntityBuilderOption {
	return func(w *world, e Entity) {
		w.models[e] = ModelRef{Handle: h}
	}
}

// WithPointLight is an option builder that attaches a point light. An entity with a point light and a
// model draws in the light debug pass.
func WithPointLight(l light.PointLight) EntityBuilderOption {
	return func(w *world, e Entity) {
		w.pointLights[e] = l
	}
}

// WithDirectionalLight is an option builder that attaches a directional light.
func WithDirectionalLight(l light.DirectionalLight) EntityBuilderOption {
	return func(w *world, e Entity) {
		w.directionalLights[e] = l
	}
}

// WithHeightMap is an option builder that attaches a height map surface.
//
// Parameters:
//   - h: the height map handle from an asset store
//   - heightScale: the displacement in model units at full intensity
//
// Returns:
//   - EntityBuilderOption: a function that attaches the height map reference
func WithHeightMap(h asset.Handle[heightmap.HeightMap], heightScale float32) EntityBuilderOption {
	return func(w *world, e Entity) {
		w.heightMaps[e] = HeightMapRef{Handle: h, HeightScale: heightScale}
	}
}

// WithLightMarker tags the entity as a light marker without a point light.
func WithLightMarker() EntityBuilderOption {
	return func(w *world, e Entity) {
		w.markers[e] = struct{}{}
	}
}
