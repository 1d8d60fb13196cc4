package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialParamsLayout(t *testing.T) {
	raw := GPUMaterialParams{BaseColor: [4]float32{1, 0.5, 0.25, 1}, Shininess: 64}.Marshal()
	require.Len(t, raw, 32)
	assert.Equal(t, common.NewGPUWriter(4).Float32(64).Bytes(), raw[16:20])
}

func TestSpecularFallsBackToDiffuse(t *testing.T) {
	red := common.SolidTexture(255, 0, 0, 255)
	m := NewMaterial(WithName("brick"), WithDiffuseTexture(red))
	assert.Equal(t, red, m.SpecularTexture())

	plain := NewMaterial()
	assert.Equal(t, common.SolidTexture(255, 255, 255, 255), plain.DiffuseTexture())
	assert.Equal(t, DefaultShininess, plain.Shininess())
}

func TestMaterialUpload(t *testing.T) {
	rec := gputest.NewRecorder()
	layout, err := NewLayout(rec)
	require.NoError(t, err)

	m := NewMaterial(WithName("brick"), WithShininess(16))
	require.NoError(t, m.Upload(rec, layout))
	require.NotNil(t, m.BindGroupProvider())

	group := m.BindGroupProvider().BindGroup().(*gputest.BindGroup)
	assert.Same(t, layout.BindGroupLayout(), group.Desc.Layout)
	assert.Len(t, group.Desc.Entries, 4)
	assert.Len(t, rec.TextureWrites, 2)

	diffuse := rec.TextureByLabel("Material brick Diffuse")
	require.NotNil(t, diffuse)
	assert.Equal(t, gpu.TextureFormatRGBA8UnormSrgb, diffuse.Format())

	m.Release()
	assert.True(t, group.Released())
	assert.True(t, diffuse.Released())
	assert.False(t, layout.BindGroupLayout().(*gputest.BindGroupLayout).Released(), "shared layout outlives materials")
}

func TestUploadWithoutLayoutPanics(t *testing.T) {
	assert.PanicsWithValue(t, `material: "x" uploaded without a layout`, func() {
		_ = NewMaterial(WithName("x")).Upload(gputest.NewRecorder(), nil)
	})
}
