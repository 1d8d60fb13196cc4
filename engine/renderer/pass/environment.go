package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/instancing"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// environmentTarget is the reflection map of one height map surface.
type environmentTarget struct {
	color     gpu.Texture
	colorView gpu.TextureView
	depth     gpu.Texture
	depthView gpu.TextureView
	binding   bind_group_provider.BindGroupProvider
	camera    *bind_group_provider.Uniform[camera.GPUCameraUniform]
}

func (t *environmentTarget) release() {
	if t.camera != nil {
		t.camera.Release()
	}
	if t.binding != nil {
		t.binding.Release()
	}
	for _, r := range []gpu.Resource{t.depthView, t.depth, t.colorView, t.color} {
		if r != nil {
			r.Release()
		}
	}
}

// EnvironmentPass renders the opaque scene mirrored about each water surface into that surface's
// environment map. Targets are created on demand, one per surface position in the frame.
type EnvironmentPass struct {
	backend  gpu.Backend
	size     uint32
	clear    gpu.Color
	lights   Bindable
	sampler  gpu.Sampler
	pipeline pipeline.Pipeline
	targets  []*environmentTarget
}

var _ Pass = &EnvironmentPass{}

// NewEnvironmentPass builds the pipeline and the first target.
//
// Parameters:
//   - backend: the GPU backend
//   - shared: the shared bind groups, Lights is required
//   - opts: variadic list of PassBuilderOption functions
//
// Returns:
//   - *EnvironmentPass: the pass
//   - error: error if the shader, pipeline or target cannot be created
func NewEnvironmentPass(backend gpu.Backend, shared Shared, opts ...PassBuilderOption) (*EnvironmentPass, error) {
	mustBindable("Environment", "lights", shared.Lights)
	cfg := newConfig(opts)
	p := &EnvironmentPass{
		backend: backend,
		size:    cfg.environmentSize,
		clear:   cfg.clearColor,
		lights:  shared.Lights,
	}

	var err error
	if p.sampler, err = backend.CreateSampler(gpu.SamplerDescriptor{
		Label:        "Environment Sampler",
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		AddressModeW: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeLinear,
		MinFilter:    gpu.FilterModeLinear,
	}); err != nil {
		return nil, err
	}

	first, err := p.target(0)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.pipeline, err = buildPipeline(backend, cfg, "Environment", "environment.wgsl", nil,
		pipeline.WithColorFormats(gpu.TextureFormatBGRA8UnormSrgb),
		pipeline.WithBindGroupLayouts(first.camera.Layout(), shared.Lights.Layout()),
		pipeline.WithVertexBuffers(model.VertexLayout(), model.InstanceLayout()),
	)
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// target returns the environment target of surface i, creating it and any before it on first use.
func (p *EnvironmentPass) target(i int) (*environmentTarget, error) {
	for len(p.targets) <= i {
		t, err := p.newTarget(len(p.targets))
		if err != nil {
			return nil, err
		}
		p.targets = append(p.targets, t)
	}
	return p.targets[i], nil
}

func (p *EnvironmentPass) newTarget(i int) (*environmentTarget, error) {
	label := fmt.Sprintf("Environment %d", i)
	t := &environmentTarget{}
	size := gpu.Extent3D{Width: p.size, Height: p.size, DepthOrArrayLayers: 1}

	var err error
	if t.color, err = p.backend.CreateTexture(gpu.TextureDescriptor{
		Label:         label,
		Size:          size,
		Format:        gpu.TextureFormatBGRA8UnormSrgb,
		Dimension:     gpu.TextureDimension2D,
		Usage:         gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
		MipLevelCount: 1,
		SampleCount:   1,
	}); err != nil {
		return nil, err
	}
	if t.colorView, err = t.color.CreateView(nil); err != nil {
		t.release()
		return nil, err
	}
	if t.depth, err = p.backend.CreateTexture(gpu.TextureDescriptor{
		Label:         label + " Depth",
		Size:          size,
		Format:        gpu.TextureFormatDepth32Float,
		Dimension:     gpu.TextureDimension2D,
		Usage:         gpu.TextureUsageRenderAttachment,
		MipLevelCount: 1,
		SampleCount:   1,
	}); err != nil {
		t.release()
		return nil, err
	}
	if t.depthView, err = t.depth.CreateView(nil); err != nil {
		t.release()
		return nil, err
	}
	if t.binding, err = bind_group_provider.NewTextureBinding(p.backend, label+" Map",
		t.colorView, p.sampler, gpu.TextureSampleTypeFloat, gpu.TextureViewDimension2D); err != nil {
		t.release()
		return nil, err
	}
	if t.camera, err = bind_group_provider.NewUniform(p.backend, label+" Camera",
		gpu.ShaderStageVertex|gpu.ShaderStageFragment, camera.GPUCameraUniform{}); err != nil {
		t.release()
		return nil, err
	}
	return t, nil
}

// Map returns the environment map bind group of surface i, or nil when no target exists for it yet.
func (p *EnvironmentPass) Map(i int) gpu.BindGroup {
	if i < 0 || i >= len(p.targets) {
		return nil
	}
	return p.targets[i].binding.BindGroup()
}

// MapLayout returns the layout every environment map binding shares.
func (p *EnvironmentPass) MapLayout() gpu.BindGroupLayout {
	return p.targets[0].binding.BindGroupLayout()
}

// Targets returns the number of environment maps allocated.
func (p *EnvironmentPass) Targets() int {
	return len(p.targets)
}

// ReflectedCamera mirrors a camera about the horizontal plane y = level.
//
// Parameters:
//   - c: the frame camera
//   - level: the water plane height in world space
//
// Returns:
//   - camera.GPUCameraUniform: the camera seen from below the plane
func ReflectedCamera(c camera.GPUCameraUniform, level float32) camera.GPUCameraUniform {
	mirror := mgl32.Translate3D(0, level, 0).
		Mul4(mgl32.Scale3D(1, -1, 1)).
		Mul4(mgl32.Translate3D(0, -level, 0))
	return camera.GPUCameraUniform{
		View:       c.View.Mul4(mirror),
		Projection: c.Projection,
		Eye:        mgl32.TransformCoordinate(c.Eye, mirror),
	}
}

func (p *EnvironmentPass) Name() string {
	return "Environment"
}

// Render draws one environment map per loaded surface.
func (p *EnvironmentPass) Render(f *Frame) error {
	for i, s := range f.surfaces() {
		t, err := p.target(i)
		if err != nil {
			return err
		}
		t.camera.Write(f.Backend, ReflectedCamera(f.Camera, s.Transform.Position.Y()))

		rp := f.Begin(gpu.RenderPassDescriptor{
			Label: p.Name(),
			ColorAttachments: []gpu.RenderPassColorAttachment{{
				View:       t.colorView,
				LoadOp:     gpu.LoadOpClear,
				StoreOp:    gpu.StoreOpStore,
				ClearValue: p.clear,
			}},
			DepthStencilAttachment: &gpu.RenderPassDepthStencilAttachment{
				View:            t.depthView,
				DepthLoadOp:     gpu.LoadOpClear,
				DepthStoreOp:    gpu.StoreOpDiscard,
				DepthClearValue: 1,
			},
		})
		rp.SetPipeline(p.pipeline.RenderPipeline())
		rp.SetBindGroup(0, t.camera.BindGroup())
		rp.SetBindGroup(1, p.lights.BindGroup())
		f.eachRange(scene.CategoryOpaque, func(m model.Model, r instancing.Range) {
			m.DrawUntextured(rp, r.First, r.Count)
		})
		rp.End()
	}
	return nil
}

func (p *EnvironmentPass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	for _, t := range p.targets {
		t.release()
	}
	p.targets = nil
	if p.sampler != nil {
		p.sampler.Release()
		p.sampler = nil
	}
}
