package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/instancing"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
)

// Shadow depth bias applied to every caster.
const (
	ShadowDepthBias      = 2
	ShadowDepthBiasSlope = 2.0
)

// Sun returns the directional light of the frame: the first one in snapshot order.
//
// Parameters:
//   - snap: the frame snapshot
//
// Returns:
//   - light.DirectionalLightSample: the light
//   - bool: false when the scene has no directional light
func Sun(snap scene.Snapshot) (light.DirectionalLightSample, bool) {
	if len(snap.DirectionalLights) == 0 {
		return light.DirectionalLightSample{}, false
	}
	return snap.DirectionalLights[0], true
}

// ShadowPass renders the opaque instances once into the atlas layer of every shadow-casting directional light.
// Each layer has a private light-space uniform so several layers can be rendered in one submission.
type ShadowPass struct {
	backend  gpu.Backend
	atlas    *ShadowAtlas
	pipeline pipeline.Pipeline
	uniforms []*bind_group_provider.Uniform[light.GPULightSpace]
}

var _ Pass = &ShadowPass{}

// NewShadowPass builds the depth-only pipeline.
//
// Parameters:
//   - backend: the GPU backend
//   - atlas: the shadow atlas the pass renders into
//   - opts: variadic list of PassBuilderOption functions
//
// Returns:
//   - *ShadowPass: the pass
//   - error: error if the shader or pipeline cannot be created
func NewShadowPass(backend gpu.Backend, atlas *ShadowAtlas, opts ...PassBuilderOption) (*ShadowPass, error) {
	if atlas == nil {
		panic("pass: Shadow requires a shadow atlas")
	}
	cfg := newConfig(opts)
	p := &ShadowPass{
		backend:  backend,
		atlas:    atlas,
		uniforms: make([]*bind_group_provider.Uniform[light.GPULightSpace], light.MaxShadowLayers),
	}

	first, err := p.uniform(0)
	if err != nil {
		return nil, err
	}

	p.pipeline, err = buildPipeline(backend, cfg, "Shadow", "shadow.wgsl",
		[]shader.ShaderBuilderOption{shader.WithEntryPoints(shader.DefaultVertexEntry, "")},
		pipeline.WithCullMode(gpu.CullModeFront),
		pipeline.WithDepthBias(ShadowDepthBias, ShadowDepthBiasSlope),
		pipeline.WithBindGroupLayouts(first.Layout()),
		pipeline.WithVertexBuffers(model.VertexLayout(), model.InstanceLayout()),
	)
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// uniform returns the light-space uniform of a layer, creating it on first use.
func (p *ShadowPass) uniform(layer uint32) (*bind_group_provider.Uniform[light.GPULightSpace], error) {
	if u := p.uniforms[layer]; u != nil {
		return u, nil
	}
	u, err := bind_group_provider.NewUniform(p.backend, fmt.Sprintf("Light Space %d", layer), gpu.ShaderStageVertex, light.GPULightSpace{})
	if err != nil {
		return nil, err
	}
	p.uniforms[layer] = u
	return u, nil
}

func (p *ShadowPass) Name() string {
	return "Shadow"
}

// Render draws one depth pass per shadow-casting light in snapshot order. Lights without a layer are skipped.
func (p *ShadowPass) Render(f *Frame) error {
	for _, d := range f.Snapshot.DirectionalLights {
		if !d.Light.CastsShadows {
			continue
		}
		binding := p.atlas.Binding(d.Entity)
		view, ok := p.atlas.LayerView(binding)
		if !ok {
			continue
		}
		layer, _ := binding.Layer()
		if err := p.renderLayer(f, layer, view, d.Light); err != nil {
			return err
		}
	}
	return nil
}

func (p *ShadowPass) renderLayer(f *Frame, layer uint32, view gpu.TextureView, l light.DirectionalLight) error {
	u, err := p.uniform(layer)
	if err != nil {
		return err
	}
	u.Write(f.Backend, light.GPULightSpace{Matrix: l.LightSpaceMatrix()})

	rp := f.Begin(gpu.RenderPassDescriptor{
		Label: p.Name(),
		DepthStencilAttachment: &gpu.RenderPassDepthStencilAttachment{
			View:            view,
			DepthLoadOp:     gpu.LoadOpClear,
			DepthStoreOp:    gpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	rp.SetPipeline(p.pipeline.RenderPipeline())
	rp.SetBindGroup(0, u.BindGroup())
	f.eachRange(scene.CategoryOpaque, func(m model.Model, r instancing.Range) {
		m.DrawUntextured(rp, r.First, r.Count)
	})
	rp.End()
	return nil
}

func (p *ShadowPass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	for i, u := range p.uniforms {
		if u != nil {
			u.Release()
			p.uniforms[i] = nil
		}
	}
}
