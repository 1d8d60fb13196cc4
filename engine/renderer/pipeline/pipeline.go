package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	"github.com/pkg/errors"
)

// pipeline is the implementation of the Pipeline interface.
// It collects the rasterization, depth and target configuration for one render pipeline and creates it on demand.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used as the GPU label
	pipelineKey string

	// shader holds the vertex and fragment stages, it is required before Build
	shader shader.Shader

	renderPipeline gpu.RenderPipeline

	// The following properties are toggled/set with the builder options.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthFormat         gpu.TextureFormat
	depthCompare        gpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	blendState          gpu.BlendState
	cullMode            gpu.CullMode
	topology            gpu.PrimitiveTopology
	frontFace           gpu.FrontFace
	colorFormats        []gpu.TextureFormat
	sampleCount         uint32
	bindGroupLayouts    []gpu.BindGroupLayout
	vertexBuffers       []gpu.VertexBufferLayout
}

// Pipeline defines the interface for a render pipeline. It holds all configuration state required for
// pipeline creation including depth, blend, cull and topology settings, and the created GPU pipeline.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the shader the pipeline was configured with.
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if not set
	Shader() shader.Shader

	// Descriptor assembles the GPU descriptor from the current configuration.
	//
	// Returns:
	//   - gpu.RenderPipelineDescriptor: the descriptor passed to the backend by Build
	Descriptor() gpu.RenderPipelineDescriptor

	// Build checks the shader against the configured layouts and vertex buffers, then creates the GPU pipeline.
	// Calling Build again replaces and releases the previous pipeline.
	//
	// Parameters:
	//   - backend: the GPU backend
	//
	// Returns:
	//   - error: error carrying the pipeline key if the shader interface mismatches or creation fails
	Build(backend gpu.Backend) error

	// RenderPipeline returns the created GPU pipeline, nil before Build.
	//
	// Returns:
	//   - gpu.RenderPipeline: the pipeline
	RenderPipeline() gpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() gpu.CullMode

	// Release releases the GPU pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new render pipeline configuration with the given key and options.
// Defaults: depth test and write enabled against Depth32Float, no culling, triangle list, CCW front face,
// blending disabled, one sample.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - opts: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the configured pipeline, not yet built
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       key,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthFormat:       gpu.TextureFormatDepth32Float,
		depthCompare:      gpu.CompareFunctionLess,
		blendState:        gpu.AlphaBlending,
		cullMode:          gpu.CullModeNone,
		topology:          gpu.PrimitiveTopologyTriangleList,
		frontFace:         gpu.FrontFaceCCW,
		sampleCount:       1,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Descriptor() gpu.RenderPipelineDescriptor {
	desc := gpu.RenderPipelineDescriptor{
		Label:            p.pipelineKey,
		BindGroupLayouts: p.bindGroupLayouts,
		VertexBuffers:    p.vertexBuffers,
		Primitive: gpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		SampleCount: p.sampleCount,
	}

	if p.shader != nil {
		desc.Source = p.shader.Source()
		desc.VertexEntry = p.shader.VertexEntry()
		desc.FragmentEntry = p.shader.FragmentEntry()
	}

	if p.depthTestEnabled || p.depthWriteEnabled {
		compare := gpu.CompareFunctionAlways
		if p.depthTestEnabled {
			compare = p.depthCompare
		}
		desc.DepthStencil = &gpu.DepthStencilState{
			Format:              p.depthFormat,
			DepthWriteEnabled:   p.depthWriteEnabled,
			DepthCompare:        compare,
			DepthBias:           p.depthBias,
			DepthBiasSlopeScale: p.depthBiasSlopeScale,
		}
	}

	if desc.FragmentEntry != "" {
		for _, f := range p.colorFormats {
			target := gpu.ColorTargetState{Format: f}
			if p.blendEnabled {
				blend := p.blendState
				target.Blend = &blend
			}
			desc.Targets = append(desc.Targets, target)
		}
	}

	return desc
}

func (p *pipeline) Build(backend gpu.Backend) error {
	if p.shader == nil {
		panic(fmt.Sprintf("pipeline: %q has no shader", p.pipelineKey))
	}

	if err := p.checkInterface(); err != nil {
		return p.wrap(err)
	}

	rp, err := backend.CreateRenderPipeline(p.Descriptor())
	if err != nil {
		return p.wrap(err)
	}

	if p.renderPipeline != nil {
		p.renderPipeline.Release()
	}
	p.renderPipeline = rp
	return nil
}

func (p *pipeline) wrap(err error) error {
	if path := p.shader.Path(); path != "" {
		return errors.Wrapf(err, "create pipeline %s (%s)", p.pipelineKey, path)
	}
	return errors.Wrapf(err, "create pipeline %s", p.pipelineKey)
}

// checkInterface matches the shader's declared bindings and vertex inputs against the configured bind group
// layouts and vertex buffers.
func (p *pipeline) checkInterface() error {
	r, err := shader.Reflect(p.shader.Source(), p.shader.VertexEntry())
	if err != nil {
		return err
	}

	for _, b := range r.Bindings {
		if int(b.Group) >= len(p.bindGroupLayouts) || p.bindGroupLayouts[b.Group] == nil {
			return errors.Errorf("%s: @group(%d) has no bind group layout", b.Name, b.Group)
		}
		if !hasBinding(p.bindGroupLayouts[b.Group], b.Binding) {
			return errors.Errorf("%s: @group(%d) @binding(%d) is missing from layout %q",
				b.Name, b.Group, b.Binding, p.bindGroupLayouts[b.Group].Label())
		}
	}

	for _, in := range r.VertexInputs {
		if !hasLocation(p.vertexBuffers, in.Location) {
			return errors.Errorf("%s: @location(%d) has no vertex attribute", in.Name, in.Location)
		}
	}
	return nil
}

func hasBinding(layout gpu.BindGroupLayout, binding uint32) bool {
	for _, e := range layout.Entries() {
		if e.Binding == binding {
			return true
		}
	}
	return false
}

func hasLocation(buffers []gpu.VertexBufferLayout, location uint32) bool {
	for _, vb := range buffers {
		for _, a := range vb.Attributes {
			if a.ShaderLocation == location {
				return true
			}
		}
	}
	return false
}

func (p *pipeline) RenderPipeline() gpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() gpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
