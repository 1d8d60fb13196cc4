// Package material holds the surface description of a mesh and the GPU bind group the model pass binds
// for it at group 0.
package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
)

// Layout is the bind group layout and filtering sampler shared by every material.
// One Layout is created at renderer start and handed to both the model loader and the model pass.
type Layout struct {
	layout  gpu.BindGroupLayout
	sampler gpu.Sampler
}

// NewLayout creates the shared material layout and sampler.
//
// Parameters:
//   - backend: the GPU backend
//
// Returns:
//   - *Layout: the shared layout
//   - error: error if a GPU object cannot be created
func NewLayout(backend gpu.Backend) (*Layout, error) {
	layout, err := backend.CreateBindGroupLayout(gpu.BindGroupLayoutDescriptor{
		Label:   "Material Layout",
		Entries: LayoutEntries(),
	})
	if err != nil {
		return nil, err
	}
	sampler, err := backend.CreateSampler(gpu.SamplerDescriptor{
		Label:        "Material Sampler",
		AddressModeU: gpu.AddressModeRepeat,
		AddressModeV: gpu.AddressModeRepeat,
		AddressModeW: gpu.AddressModeRepeat,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
	})
	if err != nil {
		layout.Release()
		return nil, err
	}
	return &Layout{layout: layout, sampler: sampler}, nil
}

func (l *Layout) BindGroupLayout() gpu.BindGroupLayout {
	return l.layout
}

func (l *Layout) Sampler() gpu.Sampler {
	return l.sampler
}

func (l *Layout) Release() {
	l.sampler.Release()
	l.layout.Release()
}

// material is the implementation of the Material interface.
type material struct {
	name      string
	baseColor [4]float32
	shininess float32
	diffuse   *common.TextureStagingData
	specular  *common.TextureStagingData

	provider bind_group_provider.BindGroupProvider
	textures []gpu.Texture
	views    []gpu.TextureView
}

// Material defines the interface for a render material: the diffuse and specular maps of a mesh and
// the bind group the model pass sets before drawing it.
//
// Surface properties are set at decode time and are read-only. GPU resources exist only after Upload.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA colour multiplied into the diffuse map.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Shininess retrieves the specular exponent.
	//
	// Returns:
	//   - float32: the exponent
	Shininess() float32

	// DiffuseTexture retrieves the staged diffuse map. Without an image it is a 1x1 white pixel.
	//
	// Returns:
	//   - common.TextureStagingData: the diffuse pixels
	DiffuseTexture() common.TextureStagingData

	// SpecularTexture retrieves the staged specular map. Without an image it falls back to the diffuse map.
	//
	// Returns:
	//   - common.TextureStagingData: the specular pixels
	SpecularTexture() common.TextureStagingData

	// Upload creates both textures, the params uniform and the bind group against the shared layout.
	// Calling Upload again replaces the previous GPU resources.
	//
	// Parameters:
	//   - backend: the GPU backend
	//   - layout: the shared material layout
	//
	// Returns:
	//   - error: error if a GPU object cannot be created
	Upload(backend gpu.Backend, layout *Layout) error

	// BindGroupProvider retrieves the provider holding the material bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil before Upload
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Release frees the textures and bind group. The shared layout is not released.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		shininess: DefaultShininess,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) DiffuseTexture() common.TextureStagingData {
	if m.diffuse == nil {
		return common.SolidTexture(255, 255, 255, 255)
	}
	return *m.diffuse
}

func (m *material) SpecularTexture() common.TextureStagingData {
	if m.specular == nil {
		return m.DiffuseTexture()
	}
	return *m.specular
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.provider
}

func (m *material) Upload(backend gpu.Backend, layout *Layout) error {
	if layout == nil {
		panic(fmt.Sprintf("material: %q uploaded without a layout", m.name))
	}
	m.Release()

	label := "Material " + m.name
	diffuseTex, diffuseView, err := bind_group_provider.UploadTexture(backend, label+" Diffuse",
		gpu.TextureFormatRGBA8UnormSrgb, gpu.TextureViewDimension2D, m.DiffuseTexture())
	if err != nil {
		return err
	}
	m.textures = append(m.textures, diffuseTex)
	m.views = append(m.views, diffuseView)

	specularTex, specularView, err := bind_group_provider.UploadTexture(backend, label+" Specular",
		gpu.TextureFormatRGBA8Unorm, gpu.TextureViewDimension2D, m.SpecularTexture())
	if err != nil {
		m.Release()
		return err
	}
	m.textures = append(m.textures, specularTex)
	m.views = append(m.views, specularView)

	p := bind_group_provider.NewBindGroupProvider(label,
		bind_group_provider.WithBindGroupLayout(layout.BindGroupLayout()),
		bind_group_provider.WithTextureView(0, diffuseView),
		bind_group_provider.WithTextureView(1, specularView),
		bind_group_provider.WithSampler(2, layout.Sampler()),
	)
	if err := p.Init(backend); err != nil {
		m.Release()
		return err
	}
	bind_group_provider.WriteBuffers(backend, []bind_group_provider.BufferWrite{{
		Provider: p,
		Binding:  3,
		Data:     GPUMaterialParams{BaseColor: m.baseColor, Shininess: m.shininess}.Marshal(),
	}})
	m.provider = p
	return nil
}

func (m *material) Release() {
	if m.provider != nil {
		m.provider.Release()
		m.provider = nil
	}
	for _, v := range m.views {
		v.Release()
	}
	for _, t := range m.textures {
		t.Release()
	}
	m.views = nil
	m.textures = nil
}
