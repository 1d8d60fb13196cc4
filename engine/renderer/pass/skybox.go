package pass

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
)

// SkyboxPass clears the color target and fills it with the sky cube map. It has no depth attachment and
// reads nothing from the snapshot.
type SkyboxPass struct {
	camera   Bindable
	clear    gpu.Color
	texture  gpu.Texture
	view     gpu.TextureView
	sampler  gpu.Sampler
	binding  bind_group_provider.BindGroupProvider
	pipeline pipeline.Pipeline
}

var _ Pass = &SkyboxPass{}

// NewSkyboxPass uploads the cube map and builds the pipeline.
//
// Parameters:
//   - backend: the GPU backend
//   - shared: the shared bind groups, Camera is required
//   - opts: variadic list of PassBuilderOption functions
//
// Returns:
//   - *SkyboxPass: the pass
//   - error: error if the cube map, shader or pipeline cannot be created
func NewSkyboxPass(backend gpu.Backend, shared Shared, opts ...PassBuilderOption) (*SkyboxPass, error) {
	mustBindable("Skybox", "camera", shared.Camera)
	cfg := newConfig(opts)
	p := &SkyboxPass{camera: shared.Camera, clear: cfg.clearColor}

	faces := cfg.skyFaces
	if len(faces) == 0 {
		c := cfg.clearColor
		solid := common.SolidTexture(unorm8(c.R), unorm8(c.G), unorm8(c.B), 255)
		faces = []common.TextureStagingData{solid, solid, solid, solid, solid, solid}
	}

	var err error
	if p.texture, p.view, err = bind_group_provider.UploadTexture(backend, "Skybox",
		gpu.TextureFormatRGBA8UnormSrgb, gpu.TextureViewDimensionCube, faces...); err != nil {
		return nil, err
	}
	if p.sampler, err = backend.CreateSampler(gpu.SamplerDescriptor{
		Label:        "Skybox Sampler",
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		AddressModeW: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
	}); err != nil {
		p.Release()
		return nil, err
	}
	if p.binding, err = bind_group_provider.NewTextureBinding(backend, "Skybox Cube",
		p.view, p.sampler, gpu.TextureSampleTypeFloat, gpu.TextureViewDimensionCube); err != nil {
		p.Release()
		return nil, err
	}

	p.pipeline, err = buildPipeline(backend, cfg, "Skybox", "skybox.wgsl", nil,
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithColorFormats(backend.SurfaceFormat()),
		pipeline.WithSampleCount(backend.SampleCount()),
		pipeline.WithBindGroupLayouts(shared.Camera.Layout(), p.binding.BindGroupLayout()),
	)
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func unorm8(v float64) uint8 {
	return uint8(common.Clamp(v, 0, 1)*255 + 0.5)
}

func (p *SkyboxPass) Name() string {
	return "Skybox"
}

func (p *SkyboxPass) Render(f *Frame) error {
	rp := f.Begin(gpu.RenderPassDescriptor{
		Label:            p.Name(),
		ColorAttachments: []gpu.RenderPassColorAttachment{f.colorAttachment(gpu.LoadOpClear, p.clear)},
	})
	rp.SetPipeline(p.pipeline.RenderPipeline())
	rp.SetBindGroup(0, p.camera.BindGroup())
	rp.SetBindGroup(1, p.binding.BindGroup())
	rp.Draw(3, 1, 0, 0)
	f.Draws++
	rp.End()
	return nil
}

func (p *SkyboxPass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.binding != nil {
		p.binding.Release()
		p.binding = nil
	}
	for _, r := range []gpu.Resource{p.sampler, p.view, p.texture} {
		if r != nil {
			r.Release()
		}
	}
	p.sampler, p.view, p.texture = nil, nil, nil
}
