package bind_group_provider

import "github.com/Carmen-Shannon/oxy-frame/engine/gpu"

// NewTextureBinding creates a fragment-visible bind group with the texture view at binding 0
// and the sampler at binding 1. The view and sampler stay owned by the caller.
//
// Parameters:
//   - backend: the GPU backend
//   - label: a debug label
//   - view: the texture view
//   - sampler: the sampler
//   - sampleType: how the shader samples the texture
//   - dimension: the view dimension the shader declares
//
// Returns:
//   - BindGroupProvider: the initialized provider
//   - error: error if the layout or bind group cannot be created
func NewTextureBinding(backend gpu.Backend, label string, view gpu.TextureView, sampler gpu.Sampler, sampleType gpu.TextureSampleType, dimension gpu.TextureViewDimension) (BindGroupProvider, error) {
	samplerType := gpu.SamplerBindingTypeFiltering
	if sampleType == gpu.TextureSampleTypeDepth {
		samplerType = gpu.SamplerBindingTypeComparison
	}

	p := NewBindGroupProvider(label,
		WithEntries(
			gpu.BindGroupLayoutEntry{
				Binding:    0,
				Visibility: gpu.ShaderStageFragment,
				Texture:    &gpu.TextureBindingLayout{SampleType: sampleType, ViewDimension: dimension},
			},
			gpu.BindGroupLayoutEntry{
				Binding:    1,
				Visibility: gpu.ShaderStageFragment,
				Sampler:    &gpu.SamplerBindingLayout{Type: samplerType},
			},
		),
		WithTextureView(0, view),
		WithSampler(1, sampler),
	)
	if err := p.Init(backend); err != nil {
		return nil, err
	}
	return p, nil
}
