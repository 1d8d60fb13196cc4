package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
)

// Bind group indices of the water surface pipeline.
const (
	WaterGroupSurface     = 0
	WaterGroupCamera      = 1
	WaterGroupHeight      = 2
	WaterGroupEnvironment = 3
)

// WaterSurfacePass draws every loaded height map surface displaced by its height texture and blended
// with the environment map rendered for it this frame.
type WaterSurfacePass struct {
	backend      gpu.Backend
	camera       Bindable
	environment  *EnvironmentPass
	heightLayout gpu.BindGroupLayout
	pipeline     pipeline.Pipeline
	surfaces     []*bind_group_provider.Uniform[heightmap.GPUSurfaceModel]
}

var _ Pass = &WaterSurfacePass{}

// NewWaterSurfacePass builds the surface pipeline. It must be created after the environment pass whose
// maps it samples.
//
// Parameters:
//   - backend: the GPU backend
//   - shared: the shared bind groups, Camera is required
//   - environment: the environment pass
//   - opts: variadic list of PassBuilderOption functions
//
// Returns:
//   - *WaterSurfacePass: the pass
//   - error: error if the shader or pipeline cannot be created
func NewWaterSurfacePass(backend gpu.Backend, shared Shared, environment *EnvironmentPass, opts ...PassBuilderOption) (*WaterSurfacePass, error) {
	mustBindable("Water Surface", "camera", shared.Camera)
	if environment == nil {
		panic("pass: Water Surface requires the environment pass")
	}
	cfg := newConfig(opts)
	p := &WaterSurfacePass{backend: backend, camera: shared.Camera, environment: environment}

	first, err := p.surface(0)
	if err != nil {
		return nil, err
	}
	if p.heightLayout, err = backend.CreateBindGroupLayout(gpu.BindGroupLayoutDescriptor{
		Label:   "Height Texture Layout",
		Entries: heightmap.LayoutEntries(),
	}); err != nil {
		p.Release()
		return nil, err
	}

	p.pipeline, err = buildPipeline(backend, cfg, "Water Surface", "water_surface.wgsl", nil,
		pipeline.WithBlendEnabled(true),
		pipeline.WithColorFormats(backend.SurfaceFormat()),
		pipeline.WithSampleCount(backend.SampleCount()),
		pipeline.WithBindGroupLayouts(
			first.Layout(),
			shared.Camera.Layout(),
			p.heightLayout,
			environment.MapLayout(),
		),
		pipeline.WithVertexBuffers(heightmap.VertexLayout()),
	)
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// surface returns the model uniform of surface i, creating it and any before it on first use.
func (p *WaterSurfacePass) surface(i int) (*bind_group_provider.Uniform[heightmap.GPUSurfaceModel], error) {
	for len(p.surfaces) <= i {
		u, err := bind_group_provider.NewUniform(p.backend, fmt.Sprintf("Surface Model %d", len(p.surfaces)),
			gpu.ShaderStageVertex, heightmap.GPUSurfaceModel{})
		if err != nil {
			return nil, err
		}
		p.surfaces = append(p.surfaces, u)
	}
	return p.surfaces[i], nil
}

func (p *WaterSurfacePass) Name() string {
	return "Water Surface"
}

func (p *WaterSurfacePass) Render(f *Frame) error {
	surfaces := f.surfaces()
	for i, s := range surfaces {
		u, err := p.surface(i)
		if err != nil {
			return err
		}
		u.Write(f.Backend, heightmap.GPUSurfaceModel{
			Model:       s.Transform.Matrix(),
			HeightScale: s.HeightScale,
			Time:        f.Time,
		})
	}

	rp := f.Begin(gpu.RenderPassDescriptor{
		Label:                  p.Name(),
		ColorAttachments:       []gpu.RenderPassColorAttachment{f.colorAttachment(gpu.LoadOpLoad, gpu.Color{})},
		DepthStencilAttachment: f.depthAttachment(gpu.LoadOpLoad),
	})
	rp.SetPipeline(p.pipeline.RenderPipeline())
	rp.SetBindGroup(WaterGroupCamera, p.camera.BindGroup())
	for i, s := range surfaces {
		env := p.environment.Map(i)
		if env == nil {
			continue
		}
		rp.SetBindGroup(WaterGroupSurface, p.surfaces[i].BindGroup())
		rp.SetBindGroup(WaterGroupEnvironment, env)
		s.heightMap.Draw(rp, WaterGroupHeight)
		f.Draws++
	}
	rp.End()
	return nil
}

func (p *WaterSurfacePass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.heightLayout != nil {
		p.heightLayout.Release()
		p.heightLayout = nil
	}
	for _, u := range p.surfaces {
		u.Release()
	}
	p.surfaces = nil
}
