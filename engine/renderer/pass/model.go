package pass

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/instancing"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
)

// Bind group indices of the model pipeline.
const (
	ModelGroupMaterial = 0
	ModelGroupCamera   = 1
	ModelGroupLights   = 2
	ModelGroupShadow   = 3
)

// ModelPass draws the opaque instances of every uploaded model, lit and shadowed. It loads the color
// written by the skybox and clears the shared depth buffer.
type ModelPass struct {
	shared   Shared
	pipeline pipeline.Pipeline
}

var _ Pass = &ModelPass{}

// NewModelPass builds the lit pipeline.
//
// Parameters:
//   - backend: the GPU backend
//   - shared: the shared bind groups, all of Camera, Lights, Shadow and Materials are required
//   - opts: variadic list of PassBuilderOption functions
//
// Returns:
//   - *ModelPass: the pass
//   - error: error if the shader or pipeline cannot be created
func NewModelPass(backend gpu.Backend, shared Shared, opts ...PassBuilderOption) (*ModelPass, error) {
	mustBindable("Model", "camera", shared.Camera)
	mustBindable("Model", "lights", shared.Lights)
	mustBindable("Model", "shadow", shared.Shadow)
	if shared.Materials == nil {
		panic("pass: Model requires the material layout")
	}
	cfg := newConfig(opts)

	pl, err := buildPipeline(backend, cfg, "Model", "model.wgsl", nil,
		pipeline.WithCullMode(gpu.CullModeBack),
		pipeline.WithColorFormats(backend.SurfaceFormat()),
		pipeline.WithSampleCount(backend.SampleCount()),
		pipeline.WithBindGroupLayouts(
			shared.Materials.BindGroupLayout(),
			shared.Camera.Layout(),
			shared.Lights.Layout(),
			shared.Shadow.Layout(),
		),
		pipeline.WithVertexBuffers(model.VertexLayout(), model.InstanceLayout()),
	)
	if err != nil {
		return nil, err
	}
	return &ModelPass{shared: shared, pipeline: pl}, nil
}

func (p *ModelPass) Name() string {
	return "Model"
}

func (p *ModelPass) Render(f *Frame) error {
	rp := f.Begin(gpu.RenderPassDescriptor{
		Label:                  p.Name(),
		ColorAttachments:       []gpu.RenderPassColorAttachment{f.colorAttachment(gpu.LoadOpLoad, gpu.Color{})},
		DepthStencilAttachment: f.depthAttachment(gpu.LoadOpClear),
	})
	rp.SetPipeline(p.pipeline.RenderPipeline())
	rp.SetBindGroup(ModelGroupCamera, p.shared.Camera.BindGroup())
	rp.SetBindGroup(ModelGroupLights, p.shared.Lights.BindGroup())
	rp.SetBindGroup(ModelGroupShadow, p.shared.Shadow.BindGroup())
	f.eachRange(scene.CategoryOpaque, func(m model.Model, r instancing.Range) {
		m.DrawInstanced(rp, ModelGroupMaterial, r.First, r.Count)
	})
	rp.End()
	return nil
}

func (p *ModelPass) Release() {
	p.pipeline.Release()
}
