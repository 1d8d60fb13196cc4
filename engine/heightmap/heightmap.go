// Package heightmap holds water and terrain surfaces: a flat grid mesh displaced in the vertex shader by
// a height texture.
package heightmap

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
)

const (
	// DefaultSegments is the number of grid quads along each axis.
	DefaultSegments = 512
	// DefaultExtent is the edge length of the grid in model units.
	DefaultExtent float32 = 10
)

// heightMap is the implementation of the HeightMap interface.
type heightMap struct {
	name         string
	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexCount   uint32
	texture      gpu.Texture
	view         gpu.TextureView
	sampler      gpu.Sampler
	provider     bind_group_provider.BindGroupProvider
}

// HeightMap is a GPU-resident surface grid and its height texture. It has no instance buffer; the
// surface pass supplies the model matrix through its own uniform.
type HeightMap interface {
	// Name retrieves the height map identifier.
	//
	// Returns:
	//   - string: the name
	Name() string

	// IndexCount retrieves the number of grid indices.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// BindGroupProvider retrieves the group holding the height texture (0) and its sampler (1),
	// visible to both the vertex and fragment stages.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Draw records the grid with the height texture bound at textureGroup.
	//
	// Parameters:
	//   - pass: the open render pass with a pipeline set
	//   - textureGroup: the bind group index the pipeline declares for the height texture
	Draw(pass gpu.RenderPassEncoder, textureGroup uint32)

	// Release frees every GPU object of the height map.
	Release()
}

var _ HeightMap = &heightMap{}

// LayoutEntries returns the bind group layout of a height texture: a float texture at 0 and a filtering
// sampler at 1, both visible to the vertex and fragment stages.
func LayoutEntries() []gpu.BindGroupLayoutEntry {
	stages := gpu.ShaderStageVertex | gpu.ShaderStageFragment
	return []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: stages, Texture: &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeFloat, ViewDimension: gpu.TextureViewDimension2D}},
		{Binding: 1, Visibility: stages, Sampler: &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeFiltering}},
	}
}

// NewHeightMap uploads a grid and a height texture.
//
// Parameters:
//   - backend: the GPU backend
//   - name: a debug label
//   - heights: the staged height image; the red channel is the height
//   - vertices, indices: the grid, usually from BuildGrid
//
// Returns:
//   - HeightMap: the uploaded height map
//   - error: error if a GPU object cannot be created
func NewHeightMap(backend gpu.Backend, name string, heights common.TextureStagingData, vertices []GPUVertex, indices []uint32) (HeightMap, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("height map %q has an empty grid", name)
	}
	h := &heightMap{name: name, indexCount: uint32(len(indices))}

	var err error
	w := common.NewGPUWriter(len(vertices) * GPUVertex{}.Size())
	for _, v := range vertices {
		w.Vec3(v.Position).Vec2(v.TexCoord)
	}
	if h.vertexBuffer, err = createFilled(backend, name+" Vertices", gpu.BufferUsageVertex, w.Bytes()); err != nil {
		return nil, err
	}

	iw := common.NewGPUWriter(len(indices) * 4)
	for _, i := range indices {
		iw.Uint32(i)
	}
	if h.indexBuffer, err = createFilled(backend, name+" Indices", gpu.BufferUsageIndex, iw.Bytes()); err != nil {
		h.Release()
		return nil, err
	}

	if h.texture, h.view, err = bind_group_provider.UploadTexture(backend, name+" Heights",
		gpu.TextureFormatRGBA8Unorm, gpu.TextureViewDimension2D, heights); err != nil {
		h.Release()
		return nil, err
	}

	if h.sampler, err = backend.CreateSampler(gpu.SamplerDescriptor{
		Label:        name + " Sampler",
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		AddressModeW: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
	}); err != nil {
		h.Release()
		return nil, err
	}

	h.provider = bind_group_provider.NewBindGroupProvider(name+" Height Texture",
		bind_group_provider.WithEntries(LayoutEntries()...),
		bind_group_provider.WithTextureView(0, h.view),
		bind_group_provider.WithSampler(1, h.sampler),
	)
	if err := h.provider.Init(backend); err != nil {
		h.Release()
		return nil, err
	}
	return h, nil
}

func createFilled(backend gpu.Backend, label string, usage gpu.BufferUsage, data []byte) (gpu.Buffer, error) {
	buf, err := backend.CreateBuffer(gpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	backend.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (h *heightMap) Name() string {
	return h.name
}

func (h *heightMap) IndexCount() uint32 {
	return h.indexCount
}

func (h *heightMap) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return h.provider
}

func (h *heightMap) Draw(pass gpu.RenderPassEncoder, textureGroup uint32) {
	pass.SetBindGroup(textureGroup, h.provider.BindGroup())
	pass.SetVertexBuffer(0, h.vertexBuffer, 0, gpu.WholeSize)
	pass.SetIndexBuffer(h.indexBuffer, gpu.IndexFormatUint32, 0, gpu.WholeSize)
	pass.DrawIndexed(h.indexCount, 1, 0, 0, 0)
}

func (h *heightMap) Release() {
	if h.provider != nil {
		h.provider.Release()
		h.provider = nil
	}
	for _, r := range []gpu.Resource{h.sampler, h.view, h.texture, h.indexBuffer, h.vertexBuffer} {
		if r != nil {
			r.Release()
		}
	}
	h.sampler, h.view, h.texture, h.indexBuffer, h.vertexBuffer = nil, nil, nil, nil, nil
}
