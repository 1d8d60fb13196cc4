package light

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
)

// Uniforms is the shared lights bind group: the point light array at binding 0 and the
// directional light at binding 1. The frame orchestrator is its only writer.
type Uniforms struct {
	provider bind_group_provider.BindGroupProvider
}

// NewUniforms allocates both buffers and the bind group, zero-filled.
//
// Parameters:
//   - backend: the GPU backend
//
// Returns:
//   - *Uniforms: the bind group
//   - error: error if a GPU object cannot be created
func NewUniforms(backend gpu.Backend) (*Uniforms, error) {
	stages := gpu.ShaderStageVertex | gpu.ShaderStageFragment
	p := bind_group_provider.NewBindGroupProvider("Lights",
		bind_group_provider.WithEntries(
			gpu.BindGroupLayoutEntry{
				Binding:    0,
				Visibility: stages,
				Buffer:     &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform, MinBindingSize: uint64(GPULightUniform{}.Size())},
			},
			gpu.BindGroupLayoutEntry{
				Binding:    1,
				Visibility: stages,
				Buffer:     &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform, MinBindingSize: uint64(GPUDirectionalLight{}.Size())},
			},
		),
	)
	if err := p.Init(backend); err != nil {
		return nil, err
	}
	return &Uniforms{provider: p}, nil
}

// Update serializes both values into writes for batching with bind_group_provider.WriteBuffers.
//
// Parameters:
//   - points: the aggregated point lights
//   - directional: the packed directional light
//
// Returns:
//   - []bind_group_provider.BufferWrite: one write per binding
func (u *Uniforms) Update(points GPULightUniform, directional GPUDirectionalLight) []bind_group_provider.BufferWrite {
	return []bind_group_provider.BufferWrite{
		{Provider: u.provider, Binding: 0, Data: points.Marshal()},
		{Provider: u.provider, Binding: 1, Data: directional.Marshal()},
	}
}

func (u *Uniforms) Layout() gpu.BindGroupLayout {
	return u.provider.BindGroupLayout()
}

func (u *Uniforms) BindGroup() gpu.BindGroup {
	return u.provider.BindGroup()
}

func (u *Uniforms) Release() {
	u.provider.Release()
}
