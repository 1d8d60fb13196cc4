package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	a, b float32
}

func (p pair) Size() int { return 16 }

func (p pair) Marshal() []byte {
	return common.NewGPUWriter(16).Float32(p.a).Float32(p.b).Pad(8).Bytes()
}

type short struct{}

func (short) Size() int       { return 16 }
func (short) Marshal() []byte { return make([]byte, 8) }

func TestUniformWritesExactlyOnePerUpdate(t *testing.T) {
	rec := gputest.NewRecorder()
	u, err := NewUniform(rec, "Test Uniform", gpu.ShaderStageVertex, pair{a: 1})
	require.NoError(t, err)
	require.NotNil(t, u.BindGroup())
	require.NotNil(t, u.Layout())
	assert.Equal(t, uint64(16), u.Buffer().Size())
	require.Len(t, rec.Writes, 1)

	rec.Reset()
	WriteBuffers(rec, []BufferWrite{u.Update(pair{a: 2, b: 3})})
	require.Len(t, rec.Writes, 1)

	data := u.Buffer().(*gputest.Buffer).Data
	assert.Equal(t, common.NewGPUWriter(16).Float32(2).Float32(3).Pad(8).Bytes(), data)
}

func TestUniformPanicsOnLayoutMismatch(t *testing.T) {
	rec := gputest.NewRecorder()
	assert.Panics(t, func() {
		_, _ = NewUniform(rec, "Short", gpu.ShaderStageFragment, short{})
	})
}

func TestProviderInitRequiresResources(t *testing.T) {
	rec := gputest.NewRecorder()
	p := NewBindGroupProvider("Textured", WithEntries(
		gpu.BindGroupLayoutEntry{Binding: 1, Visibility: gpu.ShaderStageFragment, Sampler: &gpu.SamplerBindingLayout{}},
		gpu.BindGroupLayoutEntry{Binding: 0, Visibility: gpu.ShaderStageFragment, Texture: &gpu.TextureBindingLayout{}},
	))
	assert.Error(t, p.Init(rec))

	assert.Equal(t, uint32(0), p.Entries()[0].Binding, "entries are sorted by binding")
}

func TestTextureBindingRebind(t *testing.T) {
	rec := gputest.NewRecorder()
	tex, err := rec.CreateTexture(gpu.TextureDescriptor{Label: "A", Size: gpu.Extent3D{Width: 2, Height: 2}})
	require.NoError(t, err)
	view, err := tex.CreateView(nil)
	require.NoError(t, err)
	samp, err := rec.CreateSampler(gpu.SamplerDescriptor{Label: "S"})
	require.NoError(t, err)

	p, err := NewTextureBinding(rec, "Tex", view, samp, gpu.TextureSampleTypeFloat, gpu.TextureViewDimension2D)
	require.NoError(t, err)
	first := p.BindGroup()

	other, err := tex.CreateView(nil)
	require.NoError(t, err)
	p.SetTextureView(0, other)
	require.NoError(t, p.Rebind(rec))

	assert.NotSame(t, first, p.BindGroup())
	assert.True(t, first.(*gputest.BindGroup).Released())
	assert.Same(t, other, p.TextureView(0))

	p.Release()
	assert.False(t, view.(*gputest.TextureView).Released(), "caller-owned views survive provider release")
}

func TestUploadTexture(t *testing.T) {
	rec := gputest.NewRecorder()
	white := common.SolidTexture(255, 255, 255, 255)

	tex, view, err := UploadTexture(rec, "Sky", gpu.TextureFormatRGBA8UnormSrgb, gpu.TextureViewDimensionCube,
		white, white, white, white, white, white)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), tex.Layers())
	assert.Len(t, rec.TextureWrites, 6)
	assert.Equal(t, gpu.TextureViewDimensionCube, view.(*gputest.TextureView).Dimension)

	_, _, err = UploadTexture(rec, "Bad Cube", gpu.TextureFormatRGBA8UnormSrgb, gpu.TextureViewDimensionCube, white)
	assert.Error(t, err)

	_, _, err = UploadTexture(rec, "Mismatch", gpu.TextureFormatRGBA8Unorm, gpu.TextureViewDimension2DArray,
		white, common.TextureStagingData{Pixels: make([]byte, 16), Width: 2, Height: 2})
	assert.ErrorContains(t, err, "layer 1")
}
