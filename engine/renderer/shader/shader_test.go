package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleSource = `//@oxy:include fullscreen
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

const fullscreenSource = `@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(i) - 1);
    let y = f32(i32(i & 1u) * 2 - 1);
    return vec4<f32>(x, y, 0.0, 1.0);
}
`

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Annotation
		wantErr bool
	}{
		{name: "plain code", line: "let x = 1.0;"},
		{name: "plain comment", line: "// just a comment"},
		{name: "include", line: "  //@oxy:include camera", want: &Annotation{Type: AnnotationTypeInclude, Arg: "camera", Line: 3}},
		{name: "include with space", line: "// @oxy:include lights.wgsl", want: &Annotation{Type: AnnotationTypeInclude, Arg: "lights.wgsl", Line: 3}},
		{name: "missing argument", line: "//@oxy:include", wantErr: true},
		{name: "unknown type", line: "//@oxy:group 0 0", wantErr: true},
		{name: "empty", line: "//@oxy:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnnotation(tt.line, 3)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreProcessorExpandsOnce(t *testing.T) {
	pp := NewPreProcessor("", map[string]string{
		"a": "//@oxy:include b\nconst A: f32 = 1.0;",
		"b": "const B: f32 = 2.0;",
	})

	out, err := pp.Process("//@oxy:include a\n//@oxy:include b\n//@oxy:include a\nconst C: f32 = 3.0;")
	require.NoError(t, err)
	assert.Equal(t, "const B: f32 = 2.0;\nconst A: f32 = 1.0;\nconst C: f32 = 3.0;", out)
	assert.Equal(t, []string{"b", "a"}, pp.Included())
}

func TestPreProcessorDetectsCycle(t *testing.T) {
	pp := NewPreProcessor("", map[string]string{
		"a": "//@oxy:include b",
		"b": "//@oxy:include a",
	})

	_, err := pp.Process("//@oxy:include a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestPreProcessorFileIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.wgsl"), []byte("const PI: f32 = 3.14159;"), 0o644))

	pp := NewPreProcessor(dir, nil)
	out, err := pp.Process("//@oxy:include common.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "const PI: f32 = 3.14159;", out)

	_, err = pp.Process("//@oxy:include missing.wgsl")
	assert.Error(t, err)

	_, err = pp.Process("//@oxy:include ../escape.wgsl")
	assert.Error(t, err)
}

func TestNewShaderFromSource(t *testing.T) {
	s, err := NewShaderFromSource("triangle", triangleSource, WithIncludes(map[string]string{"fullscreen": fullscreenSource}))
	require.NoError(t, err)

	assert.Equal(t, "triangle", s.Key())
	assert.Equal(t, DefaultVertexEntry, s.VertexEntry())
	assert.Equal(t, DefaultFragmentEntry, s.FragmentEntry())
	assert.Equal(t, []string{"fullscreen"}, s.Includes())
	assert.Contains(t, s.Source(), "fn vs_main")
	assert.Empty(t, s.Path())
}

func TestNewShaderFromSourceEntryPoints(t *testing.T) {
	s, err := NewShaderFromSource("depth", fullscreenSource, WithEntryPoints("vs_main", ""))
	require.NoError(t, err)
	assert.Empty(t, s.FragmentEntry())
}

func TestLoadShaderReportsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("fn vs_main( {"), 0o644))

	_, err := LoadShader("broken", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)

	_, err = LoadShader("missing", filepath.Join(dir, "missing.wgsl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.wgsl")
}

func TestLoadShaderResolvesSiblingIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fullscreen.wgsl"), []byte(fullscreenSource), 0o644))
	main := "//@oxy:include fullscreen.wgsl\n@fragment\nfn fs_main() -> @location(0) vec4<f32> {\n    return vec4<f32>(0.0);\n}\n"
	path := filepath.Join(dir, "main.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(main), 0o644))

	s, err := LoadShader("main", path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	assert.Equal(t, []string{"fullscreen.wgsl"}, s.Includes())
}
