package pass

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/instancing"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
)

// LightDebugPass draws light marker instances unlit in a flat color.
type LightDebugPass struct {
	camera   Bindable
	pipeline pipeline.Pipeline
}

var _ Pass = &LightDebugPass{}

// NewLightDebugPass builds the unlit pipeline.
//
// Parameters:
//   - backend: the GPU backend
//   - shared: the shared bind groups, Camera is required
//   - opts: variadic list of PassBuilderOption functions
//
// Returns:
//   - *LightDebugPass: the pass
//   - error: error if the shader or pipeline cannot be created
func NewLightDebugPass(backend gpu.Backend, shared Shared, opts ...PassBuilderOption) (*LightDebugPass, error) {
	mustBindable("Light Debug", "camera", shared.Camera)
	cfg := newConfig(opts)

	pl, err := buildPipeline(backend, cfg, "Light Debug", "light_debug.wgsl", nil,
		pipeline.WithCullMode(gpu.CullModeBack),
		pipeline.WithColorFormats(backend.SurfaceFormat()),
		pipeline.WithSampleCount(backend.SampleCount()),
		pipeline.WithBindGroupLayouts(shared.Camera.Layout()),
		pipeline.WithVertexBuffers(model.VertexLayout(), model.InstanceLayout()),
	)
	if err != nil {
		return nil, err
	}
	return &LightDebugPass{camera: shared.Camera, pipeline: pl}, nil
}

func (p *LightDebugPass) Name() string {
	return "Light Debug"
}

func (p *LightDebugPass) Render(f *Frame) error {
	rp := f.Begin(gpu.RenderPassDescriptor{
		Label:                  p.Name(),
		ColorAttachments:       []gpu.RenderPassColorAttachment{f.colorAttachment(gpu.LoadOpLoad, gpu.Color{})},
		DepthStencilAttachment: f.depthAttachment(gpu.LoadOpLoad),
	})
	rp.SetPipeline(p.pipeline.RenderPipeline())
	rp.SetBindGroup(0, p.camera.BindGroup())
	f.eachRange(scene.CategoryLightMarker, func(m model.Model, r instancing.Range) {
		m.DrawUntextured(rp, r.First, r.Count)
	})
	rp.End()
	return nil
}

func (p *LightDebugPass) Release() {
	p.pipeline.Release()
}
