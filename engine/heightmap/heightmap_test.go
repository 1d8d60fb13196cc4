package heightmap

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGridCounts(t *testing.T) {
	tests := []struct {
		name       string
		segX, segZ int
		vertices   int
		indices    int
	}{
		{"single quad", 1, 1, 4, 6},
		{"strip", 4, 1, 10, 24},
		{"square", 8, 8, 81, 384},
		{"clamped", 0, -3, 4, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, i := BuildGrid(10, 10, tt.segX, tt.segZ)
			assert.Len(t, v, tt.vertices)
			assert.Len(t, i, tt.indices)
			for _, idx := range i {
				require.Less(t, int(idx), len(v))
			}
		})
	}
}

func TestBuildGridExtentAndWinding(t *testing.T) {
	v, i := BuildGrid(4, 2, 2, 2)
	assert.Equal(t, [3]float32{-2, 0, -1}, v[0].Position)
	assert.Equal(t, [3]float32{2, 0, 1}, v[len(v)-1].Position)
	assert.Equal(t, [2]float32{1, 1}, v[len(v)-1].TexCoord)

	p := func(k uint32) mgl32.Vec3 { return mgl32.Vec3(v[k].Position) }
	for k := 0; k < len(i); k += 3 {
		n := p(i[k+1]).Sub(p(i[k])).Cross(p(i[k+2]).Sub(p(i[k])))
		assert.Greater(t, n.Y(), float32(0), "triangle %d faces up", k/3)
	}
}

func TestSurfaceModelLayout(t *testing.T) {
	raw := GPUSurfaceModel{Model: mgl32.Ident4(), HeightScale: 0.5, Time: 2}.Marshal()
	require.Len(t, raw, 80)
	assert.Equal(t, common.NewGPUWriter(8).Float32(0.5).Float32(2).Bytes(), raw[64:72])
	assert.Equal(t, 20, len(GPUVertex{}.Marshal()))
}

func TestLoaderUploadsThroughStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waves.png")
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Gray{Y: 128})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	rec := gputest.NewRecorder()
	store := asset.NewStore[HeightMap](NewLoader(WithSegments(4), WithExtent(20)), asset.WithWorkers(0))
	defer store.Release()

	h, err := store.Load(path)
	require.NoError(t, err)
	_, err = store.DrainPending(asset.UploadContext{Backend: rec})
	require.NoError(t, err)

	hm, ok := store.Get(h)
	require.True(t, ok)
	assert.Equal(t, "waves", hm.Name())
	assert.Equal(t, uint32(4*4*6), hm.IndexCount())

	layout := hm.BindGroupProvider().BindGroupLayout()
	pl, err := rec.CreateRenderPipeline(gpu.RenderPipelineDescriptor{
		Label: "Surface", Source: "src", VertexEntry: "vs_main",
		BindGroupLayouts: []gpu.BindGroupLayout{layout, layout},
	})
	require.NoError(t, err)
	enc, err := rec.CreateCommandEncoder("test")
	require.NoError(t, err)
	pass := enc.BeginRenderPass(gpu.RenderPassDescriptor{Label: "Surface"})
	pass.SetPipeline(pl)
	hm.Draw(pass, 1)
	pass.End()

	draws := rec.Pass("Surface").Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(96), draws[0].Count)
	assert.Equal(t, uint32(1), draws[0].InstanceCount)
}

func TestNewHeightMapRejectsEmptyGrid(t *testing.T) {
	_, err := NewHeightMap(gputest.NewRecorder(), "empty", common.SolidTexture(0, 0, 0, 255), nil, nil)
	assert.Error(t, err)
}
