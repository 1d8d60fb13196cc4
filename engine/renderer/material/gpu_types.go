package material

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
)

// DefaultShininess is the specular exponent used when a material does not set one.
const DefaultShininess float32 = 32

// GPUMaterialSource is the canonical WGSL declaration of the material bind group (group 0 of the model pass).
// Shaders pull it in with //@oxy:include material.
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUMaterialParams is the GPU-aligned uniform at binding 3 of the material group.
// Size: 32 bytes.
//
// Layout:
//
//	vec4<f32> base_color (offset  0)
//	f32       shininess  (offset 16)  pad to 32
type GPUMaterialParams struct {
	BaseColor [4]float32
	Shininess float32
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g GPUMaterialParams) Size() int {
	return 32
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g GPUMaterialParams) Marshal() []byte {
	w := common.NewGPUWriter(g.Size())
	for _, c := range g.BaseColor {
		w.Float32(c)
	}
	return w.Float32(g.Shininess).Pad(12).Bytes()
}

// LayoutEntries returns the bind group layout of a material: diffuse texture (0), specular texture (1),
// filtering sampler (2) and the params uniform (3).
//
// Returns:
//   - []gpu.BindGroupLayoutEntry: the entries sorted by binding
func LayoutEntries() []gpu.BindGroupLayoutEntry {
	tex := func(binding uint32) gpu.BindGroupLayoutEntry {
		return gpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gpu.ShaderStageFragment,
			Texture:    &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeFloat, ViewDimension: gpu.TextureViewDimension2D},
		}
	}
	return []gpu.BindGroupLayoutEntry{
		tex(0),
		tex(1),
		{Binding: 2, Visibility: gpu.ShaderStageFragment, Sampler: &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeFiltering}},
		{Binding: 3, Visibility: gpu.ShaderStageFragment, Buffer: &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform, MinBindingSize: 32}},
	}
}
