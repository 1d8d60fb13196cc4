package model

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() *ImportedModel {
	return &ImportedModel{
		Name: "tri",
		Meshes: []ImportedMesh{{
			Name: "tri",
			Vertices: []GPUVertex{
				{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}},
				{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}},
				{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
			},
			Indices:       []uint32{0, 1, 2},
			MaterialIndex: 3,
		}},
	}
}

func TestGPULayouts(t *testing.T) {
	assert.Len(t, GPUVertex{}.Marshal(), 32)
	assert.Len(t, GPUInstance{Model: mgl32.Ident4()}.Marshal(), 64)

	vl := VertexLayout()
	assert.Equal(t, uint64(32), vl.ArrayStride)
	var end uint64
	for _, a := range vl.Attributes {
		end = max(end, a.Offset+a.Format.Size())
	}
	assert.Equal(t, vl.ArrayStride, end, "attributes cover the whole stride")

	il := InstanceLayout()
	assert.Equal(t, gpu.VertexStepModeInstance, il.StepMode)
	require.Len(t, il.Attributes, 4)
	for i, a := range il.Attributes {
		assert.Equal(t, uint32(3+i), a.ShaderLocation)
		assert.Equal(t, uint64(16*i), a.Offset)
	}

	dst := make([]byte, 64)
	GPUInstance{Model: mgl32.Translate3D(1, 2, 3)}.MarshalInto(dst)
	assert.Equal(t, GPUInstance{Model: mgl32.Translate3D(1, 2, 3)}.Marshal(), dst)
}

func TestNewModelUploadsAndDraws(t *testing.T) {
	rec := gputest.NewRecorder()
	layout, err := material.NewLayout(rec)
	require.NoError(t, err)

	m, err := NewModel(rec, triangle(), layout, WithMaxInstances(8))
	require.NoError(t, err)
	assert.Equal(t, 8, m.MaxInstances())
	assert.Equal(t, uint64(8*64), m.InstanceBuffer().Size())
	require.Len(t, m.Materials(), 1, "a default material is added")
	require.Len(t, m.Meshes(), 1)
	assert.Equal(t, 0, m.Meshes()[0].MaterialIndex, "out of range material index falls back to 0")
	assert.Equal(t, uint32(3), m.Meshes()[0].IndexCount)
	assert.InDelta(t, 1.0, m.BoundingRadius(), 1e-6)

	pl, err := rec.CreateRenderPipeline(gpu.RenderPipelineDescriptor{
		Label: "Model", Source: "src", VertexEntry: "vs_main",
		BindGroupLayouts: []gpu.BindGroupLayout{layout.BindGroupLayout()},
	})
	require.NoError(t, err)

	enc, err := rec.CreateCommandEncoder("test")
	require.NoError(t, err)
	pass := enc.BeginRenderPass(gpu.RenderPassDescriptor{Label: "Draw"})
	pass.SetPipeline(pl)
	m.DrawInstanced(pass, 0, 2, 5)
	m.DrawUntextured(pass, 0, 0)
	pass.End()

	draws := rec.Pass("Draw").Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(5), draws[0].InstanceCount)
	assert.Equal(t, uint32(2), draws[0].FirstInstance)
	assert.Equal(t, "SetBindGroup", rec.Pass("Draw").Commands[1].Op)

	instances := m.InstanceBuffer().(*gputest.Buffer)
	m.Release()
	assert.True(t, instances.Released())
}

func TestNewModelRejectsEmptyMesh(t *testing.T) {
	rec := gputest.NewRecorder()
	layout, err := material.NewLayout(rec)
	require.NoError(t, err)

	_, err = NewModel(rec, &ImportedModel{Name: "empty", Meshes: []ImportedMesh{{}}}, layout)
	assert.ErrorContains(t, err, "empty")
}

func writeGLB(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range 4 {
		img.Set(i%2, i/2, color.RGBA{R: 200, A: 255})
	}
	var pngBytes bytes.Buffer
	require.NoError(t, png.Encode(&pngBytes, img))

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2, 2, 1, 3})
	imgIndex, err := modeler.WriteImage(doc, "red", "image/png", bytes.NewReader(pngBytes.Bytes()))
	require.NoError(t, err)

	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(imgIndex)})
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]uint32{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
			Material:   gltf.Index(0),
		}},
	})

	path := filepath.Join(dir, "quad.glb")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	enc := gltf.NewEncoder(f)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	return path
}

func TestDecodeGLTF(t *testing.T) {
	path := writeGLB(t, t.TempDir())

	imported, err := DecodeGLTF(path)
	require.NoError(t, err)
	assert.Equal(t, "quad", imported.Name)
	require.Len(t, imported.Meshes, 1)
	mesh := imported.Meshes[0]
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, mesh.Indices)
	assert.Equal(t, [3]float32{0, 1, 0}, mesh.Vertices[0].Normal, "missing normals default to +Y")
	assert.Equal(t, [2]float32{1, 1}, mesh.Vertices[3].TexCoord)

	require.Len(t, imported.Materials, 1)
	diffuse := imported.Materials[0].DiffuseTexture()
	assert.Equal(t, uint32(2), diffuse.Width)
	assert.Equal(t, byte(200), diffuse.Pixels[0])
}

func TestLoaderThroughStore(t *testing.T) {
	dir := t.TempDir()
	path := writeGLB(t, dir)

	rec := gputest.NewRecorder()
	layout, err := material.NewLayout(rec)
	require.NoError(t, err)

	store := asset.NewStore[Model](NewLoader(layout, WithLoaderMaxInstances(16)), asset.WithWorkers(1))
	defer store.Release()

	h, err := store.Load(path)
	require.NoError(t, err)
	_, ok := store.Get(h)
	assert.False(t, ok, "not loaded before the queue drains")

	report, err := store.DrainPending(asset.UploadContext{Backend: rec})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Len())

	m, ok := store.Get(h)
	require.True(t, ok)
	assert.Equal(t, 16, m.MaxInstances())
	assert.Equal(t, "quad", m.Name())
}

func TestLoaderRejectsUnknownFormat(t *testing.T) {
	rec := gputest.NewRecorder()
	layout, err := material.NewLayout(rec)
	require.NoError(t, err)

	_, err = NewLoader(layout).Decode("scene.fbx")
	assert.ErrorContains(t, err, "unsupported model format")
}
