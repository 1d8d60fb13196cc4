package pipeline

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithShader sets the shader providing the vertex and fragment stages.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - PipelineBuilderOption: a function that applies the shader to a pipeline
func WithShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.shader = s
	}
}

// WithDepthTestEnabled sets whether fragments are tested against the depth attachment.
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether fragments write to the depth attachment.
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthFormat sets the depth attachment format.
func WithDepthFormat(format gpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithDepthCompare sets the depth test function used while depth testing is enabled. An Always compare keeps
// a depth attachment bound without the test rejecting anything.
func WithDepthCompare(compare gpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompare = compare
	}
}

// WithDepthBias sets the constant depth bias and slope scale, used by shadow pipelines against acne.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: a function that applies the depth bias to a pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled enables the blend state on every color target.
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendState replaces the default alpha blend state.
func WithBlendState(state gpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}

// WithCullMode sets the face culling mode.
func WithCullMode(mode gpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
func WithTopology(topology gpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding.
func WithFrontFace(face gpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = face
	}
}

// WithColorFormats sets the color target formats, one per attachment.
//
// Parameters:
//   - formats: the attachment formats in location order
//
// Returns:
//   - PipelineBuilderOption: a function that applies the targets to a pipeline
func WithColorFormats(formats ...gpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorFormats = formats
	}
}

// WithSampleCount sets the multisample count of the targets.
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.sampleCount = count
	}
}

// WithBindGroupLayouts sets the bind group layouts in group index order.
//
// Parameters:
//   - layouts: layouts for groups 0..n-1
//
// Returns:
//   - PipelineBuilderOption: a function that applies the layouts to a pipeline
func WithBindGroupLayouts(layouts ...gpu.BindGroupLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayouts = layouts
	}
}

// WithVertexBuffers sets the vertex buffer layouts in slot order.
func WithVertexBuffers(layouts ...gpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexBuffers = layouts
	}
}
