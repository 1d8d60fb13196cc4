package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litSource = `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(2) uv: vec2<f32>,
}

@group(1) @binding(0) var<uniform> view_proj: mat4x4<f32>;
@group(0) @binding(1) var s_diffuse: sampler;
@group(0) @binding(0) var t_diffuse: texture_2d<f32>;

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(instance_index) id: u32, vertex: VertexInput, @location(5) tint: vec4<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.clip = view_proj * vec4<f32>(vertex.position, 1.0) + tint * f32(id);
    out.uv = vertex.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_diffuse, s_diffuse, in.uv);
}
`

func TestReflect(t *testing.T) {
	r, err := Reflect(litSource, "vs_main")
	require.NoError(t, err)

	assert.Equal(t, []ResourceBinding{
		{Group: 0, Binding: 0, Name: "t_diffuse"},
		{Group: 0, Binding: 1, Name: "s_diffuse"},
		{Group: 1, Binding: 0, Name: "view_proj"},
	}, r.Bindings)
	assert.Equal(t, []VertexInput{
		{Location: 0, Name: "vertex.position"},
		{Location: 2, Name: "vertex.uv"},
		{Location: 5, Name: "tint"},
	}, r.VertexInputs)
}

func TestReflectBuiltinOnlyVertex(t *testing.T) {
	r, err := Reflect(fullscreenSource, "vs_main")
	require.NoError(t, err)
	assert.Empty(t, r.Bindings)
	assert.Empty(t, r.VertexInputs)
}

func TestReflectErrors(t *testing.T) {
	_, err := Reflect(fullscreenSource, "vs_other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no vertex entry point "vs_other"`)

	_, err = Reflect(triangleSource, "fs_main")
	assert.Error(t, err)

	_, err = Reflect("fn broken(", "vs_main")
	assert.Error(t, err)
}
