package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/google/uuid"
)

// DefaultShadowMapSize is the edge length of one shadow atlas layer in pixels.
const DefaultShadowMapSize = 2048

// ShadowAtlas is a Depth32Float texture array of light.MaxShadowLayers layers. The shadow pass renders
// into one layer view per light; the model pass samples the whole array through a comparison sampler.
type ShadowAtlas struct {
	size       uint32
	texture    gpu.Texture
	layerViews []gpu.TextureView
	arrayView  gpu.TextureView
	sampler    gpu.Sampler
	binding    bind_group_provider.BindGroupProvider
	layers     *light.ShadowLayers
}

// NewShadowAtlas allocates the texture, its views, the comparison sampler and the shared bind group.
//
// Parameters:
//   - backend: the GPU backend
//   - size: the edge length of a layer in pixels
//
// Returns:
//   - *ShadowAtlas: the atlas
//   - error: error if a GPU object cannot be created
func NewShadowAtlas(backend gpu.Backend, size uint32) (*ShadowAtlas, error) {
	if size == 0 {
		size = DefaultShadowMapSize
	}
	a := &ShadowAtlas{size: size, layers: light.NewShadowLayers(light.MaxShadowLayers)}

	var err error
	a.texture, err = backend.CreateTexture(gpu.TextureDescriptor{
		Label:         "Shadow Atlas",
		Size:          gpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: light.MaxShadowLayers},
		Format:        gpu.TextureFormatDepth32Float,
		Dimension:     gpu.TextureDimension2D,
		Usage:         gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	for layer := range uint32(light.MaxShadowLayers) {
		view, err := a.texture.CreateView(&gpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("Shadow Layer %d", layer),
			Dimension:       gpu.TextureViewDimension2D,
			BaseArrayLayer:  layer,
			ArrayLayerCount: 1,
		})
		if err != nil {
			a.Release()
			return nil, err
		}
		a.layerViews = append(a.layerViews, view)
	}

	if a.arrayView, err = a.texture.CreateView(&gpu.TextureViewDescriptor{
		Label:           "Shadow Atlas View",
		Dimension:       gpu.TextureViewDimension2DArray,
		ArrayLayerCount: light.MaxShadowLayers,
	}); err != nil {
		a.Release()
		return nil, err
	}

	if a.sampler, err = backend.CreateSampler(gpu.SamplerDescriptor{
		Label:        "Shadow Sampler",
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		AddressModeW: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
		Compare:      gpu.CompareFunctionLessEqual,
	}); err != nil {
		a.Release()
		return nil, err
	}

	if a.binding, err = bind_group_provider.NewTextureBinding(backend, "Shadow Atlas",
		a.arrayView, a.sampler, gpu.TextureSampleTypeDepth, gpu.TextureViewDimension2DArray); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

// Assign binds the light to the next free layer on first call and returns the same binding afterwards.
// Once every layer is taken, further lights stay Unassigned.
func (a *ShadowAtlas) Assign(id uuid.UUID) light.ShadowBinding {
	return a.layers.Assign(id)
}

// Binding returns the light's binding without assigning one.
func (a *ShadowAtlas) Binding(id uuid.UUID) light.ShadowBinding {
	return a.layers.Binding(id)
}

// Retain frees the layers of lights no longer in live.
func (a *ShadowAtlas) Retain(live map[uuid.UUID]struct{}) {
	a.layers.Retain(live)
}

// LayerView returns the render view of a bound light's layer.
//
// Parameters:
//   - b: the light's binding
//
// Returns:
//   - gpu.TextureView: the layer view
//   - bool: false when the binding is Unassigned
func (a *ShadowAtlas) LayerView(b light.ShadowBinding) (gpu.TextureView, bool) {
	layer, ok := b.Layer()
	if !ok || int(layer) >= len(a.layerViews) {
		return nil, false
	}
	return a.layerViews[layer], true
}

// Size returns the edge length of a layer in pixels.
func (a *ShadowAtlas) Size() uint32 {
	return a.size
}

func (a *ShadowAtlas) Layout() gpu.BindGroupLayout {
	return a.binding.BindGroupLayout()
}

func (a *ShadowAtlas) BindGroup() gpu.BindGroup {
	return a.binding.BindGroup()
}

func (a *ShadowAtlas) Release() {
	if a.binding != nil {
		a.binding.Release()
		a.binding = nil
	}
	if a.sampler != nil {
		a.sampler.Release()
		a.sampler = nil
	}
	if a.arrayView != nil {
		a.arrayView.Release()
		a.arrayView = nil
	}
	for _, v := range a.layerViews {
		v.Release()
	}
	a.layerViews = nil
	if a.texture != nil {
		a.texture.Release()
		a.texture = nil
	}
}
