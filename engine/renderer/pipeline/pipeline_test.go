package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubShader struct {
	fragment string
	source   string
}

func (s stubShader) Key() string           { return "stub" }
func (s stubShader) Path() string          { return "stub.wgsl" }
func (s stubShader) Source() string        { return s.source }
func (s stubShader) VertexEntry() string   { return "vs_main" }
func (s stubShader) FragmentEntry() string { return s.fragment }
func (s stubShader) Includes() []string    { return nil }

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("model", WithShader(stubShader{fragment: "fs_main"}), WithColorFormats(gpu.TextureFormatBGRA8UnormSrgb))
	desc := p.Descriptor()

	assert.Equal(t, "model", desc.Label)
	assert.Equal(t, "vs_main", desc.VertexEntry)
	assert.Equal(t, "fs_main", desc.FragmentEntry)
	require.NotNil(t, desc.DepthStencil)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, gpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.Equal(t, gpu.TextureFormatDepth32Float, desc.DepthStencil.Format)
	assert.Equal(t, gpu.CullModeNone, desc.Primitive.CullMode)
	assert.Equal(t, gpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, uint32(1), desc.SampleCount)
	require.Len(t, desc.Targets, 1)
	assert.Nil(t, desc.Targets[0].Blend)
}

func TestDescriptorOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []PipelineBuilderOption
		check func(t *testing.T, desc gpu.RenderPipelineDescriptor)
	}{
		{
			name: "no depth",
			opts: []PipelineBuilderOption{WithDepthTestEnabled(false), WithDepthWriteEnabled(false)},
			check: func(t *testing.T, desc gpu.RenderPipelineDescriptor) {
				assert.Nil(t, desc.DepthStencil)
			},
		},
		{
			name: "attached but ignored",
			opts: []PipelineBuilderOption{WithDepthCompare(gpu.CompareFunctionAlways), WithDepthWriteEnabled(false)},
			check: func(t *testing.T, desc gpu.RenderPipelineDescriptor) {
				require.NotNil(t, desc.DepthStencil)
				assert.False(t, desc.DepthStencil.DepthWriteEnabled)
				assert.Equal(t, gpu.CompareFunctionAlways, desc.DepthStencil.DepthCompare)
			},
		},
		{
			name: "test without write",
			opts: []PipelineBuilderOption{WithDepthWriteEnabled(false)},
			check: func(t *testing.T, desc gpu.RenderPipelineDescriptor) {
				require.NotNil(t, desc.DepthStencil)
				assert.False(t, desc.DepthStencil.DepthWriteEnabled)
				assert.Equal(t, gpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
			},
		},
		{
			name: "shadow bias and culling",
			opts: []PipelineBuilderOption{WithDepthBias(2, 2.0), WithCullMode(gpu.CullModeFront)},
			check: func(t *testing.T, desc gpu.RenderPipelineDescriptor) {
				assert.Equal(t, int32(2), desc.DepthStencil.DepthBias)
				assert.Equal(t, float32(2.0), desc.DepthStencil.DepthBiasSlopeScale)
				assert.Equal(t, gpu.CullModeFront, desc.Primitive.CullMode)
			},
		},
		{
			name: "blending",
			opts: []PipelineBuilderOption{WithBlendEnabled(true)},
			check: func(t *testing.T, desc gpu.RenderPipelineDescriptor) {
				require.NotNil(t, desc.Targets[0].Blend)
				assert.Equal(t, gpu.AlphaBlending, *desc.Targets[0].Blend)
			},
		},
		{
			name: "line topology and msaa",
			opts: []PipelineBuilderOption{WithTopology(gpu.PrimitiveTopologyLineList), WithSampleCount(4), WithFrontFace(gpu.FrontFaceCW)},
			check: func(t *testing.T, desc gpu.RenderPipelineDescriptor) {
				assert.Equal(t, gpu.PrimitiveTopologyLineList, desc.Primitive.Topology)
				assert.Equal(t, gpu.FrontFaceCW, desc.Primitive.FrontFace)
				assert.Equal(t, uint32(4), desc.SampleCount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]PipelineBuilderOption{
				WithShader(stubShader{fragment: "fs_main"}),
				WithColorFormats(gpu.TextureFormatBGRA8UnormSrgb),
			}, tt.opts...)
			tt.check(t, NewPipeline(tt.name, opts...).Descriptor())
		})
	}
}

func TestDepthOnlyPipelineHasNoTargets(t *testing.T) {
	p := NewPipeline("shadow", WithShader(stubShader{}), WithColorFormats(gpu.TextureFormatBGRA8UnormSrgb))
	assert.Empty(t, p.Descriptor().Targets)
}

const cameraSource = `
@group(0) @binding(0) var<uniform> view_proj: mat4x4<f32>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
}

@vertex
fn vs_main(in: VertexInput, @location(3) offset: vec4<f32>) -> @builtin(position) vec4<f32> {
    return view_proj * vec4<f32>(in.position + in.normal * 0.0, 1.0) + offset;
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func cameraLayout(t *testing.T, rec *gputest.Recorder, bindings ...uint32) gpu.BindGroupLayout {
	t.Helper()
	desc := gpu.BindGroupLayoutDescriptor{Label: "camera"}
	for _, b := range bindings {
		desc.Entries = append(desc.Entries, gpu.BindGroupLayoutEntry{
			Binding:    b,
			Visibility: gpu.ShaderStageVertex,
			Buffer:     &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform},
		})
	}
	layout, err := rec.CreateBindGroupLayout(desc)
	require.NoError(t, err)
	return layout
}

func vertexBuffers(locations ...uint32) gpu.VertexBufferLayout {
	vb := gpu.VertexBufferLayout{ArrayStride: 16}
	for _, l := range locations {
		vb.Attributes = append(vb.Attributes, gpu.VertexAttribute{Format: gpu.VertexFormatFloat32x4, ShaderLocation: l})
	}
	return vb
}

func TestBuildReplacesPipeline(t *testing.T) {
	rec := gputest.NewRecorder()
	layout := cameraLayout(t, rec, 0)

	p := NewPipeline("model",
		WithShader(stubShader{fragment: "fs_main", source: cameraSource}),
		WithBindGroupLayouts(layout),
		WithVertexBuffers(vertexBuffers(0, 1), vertexBuffers(3)),
	)
	require.NoError(t, p.Build(rec))
	first := p.RenderPipeline()
	require.NotNil(t, first)
	assert.Equal(t, 1, first.GroupCount())

	require.NoError(t, p.Build(rec))
	assert.NotSame(t, first, p.RenderPipeline())
	assert.True(t, rec.Pipelines[0].Desc.Label == "model")

	p.Release()
	assert.Nil(t, p.RenderPipeline())
}

func TestBuildWithoutShaderPanics(t *testing.T) {
	assert.Panics(t, func() {
		_ = NewPipeline("broken").Build(gputest.NewRecorder())
	})
}

func TestBuildRejectsShaderInterfaceMismatch(t *testing.T) {
	tests := []struct {
		name    string
		layouts func(rec *gputest.Recorder) []gpu.BindGroupLayout
		buffers []gpu.VertexBufferLayout
		want    string
	}{
		{
			name:    "missing group",
			layouts: func(*gputest.Recorder) []gpu.BindGroupLayout { return nil },
			buffers: []gpu.VertexBufferLayout{vertexBuffers(0, 1, 3)},
			want:    "view_proj: @group(0) has no bind group layout",
		},
		{
			name: "missing binding",
			layouts: func(rec *gputest.Recorder) []gpu.BindGroupLayout {
				return []gpu.BindGroupLayout{cameraLayout(t, rec, 1)}
			},
			buffers: []gpu.VertexBufferLayout{vertexBuffers(0, 1, 3)},
			want:    `view_proj: @group(0) @binding(0) is missing from layout "camera"`,
		},
		{
			name: "missing struct member location",
			layouts: func(rec *gputest.Recorder) []gpu.BindGroupLayout {
				return []gpu.BindGroupLayout{cameraLayout(t, rec, 0)}
			},
			buffers: []gpu.VertexBufferLayout{vertexBuffers(0, 3)},
			want:    "in.normal: @location(1) has no vertex attribute",
		},
		{
			name: "missing argument location",
			layouts: func(rec *gputest.Recorder) []gpu.BindGroupLayout {
				return []gpu.BindGroupLayout{cameraLayout(t, rec, 0)}
			},
			buffers: []gpu.VertexBufferLayout{vertexBuffers(0, 1)},
			want:    "offset: @location(3) has no vertex attribute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gputest.NewRecorder()
			p := NewPipeline("model",
				WithShader(stubShader{fragment: "fs_main", source: cameraSource}),
				WithBindGroupLayouts(tt.layouts(rec)...),
				WithVertexBuffers(tt.buffers...),
			)
			err := p.Build(rec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "create pipeline model (stub.wgsl)")
			assert.Nil(t, p.RenderPipeline())
			assert.Empty(t, rec.Pipelines)
		})
	}
}

func TestBuildRejectsMissingVertexEntry(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewPipeline("model", WithShader(stubShader{source: "@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }"}))
	err := p.Build(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no vertex entry point "vs_main"`)
}
