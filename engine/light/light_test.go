package light

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(n int) []PointLightSample {
	out := make([]PointLightSample, n)
	for i := range out {
		out[i] = PointLightSample{
			Entity:   uuid.New(),
			Light:    NewPointLight(WithColor(1, 0.5, 0.25)),
			Position: mgl32.Vec3{float32(i), 2, 3},
		}
	}
	return out
}

func TestGPUSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
		raw  []byte
	}{
		{name: "point light", size: 64, raw: GPUPointLight{}.Marshal()},
		{name: "light uniform", size: 1040, raw: GPULightUniform{}.Marshal()},
		{name: "directional light", size: 128, raw: GPUDirectionalLight{}.Marshal()},
		{name: "light space", size: 64, raw: GPULightSpace{}.Marshal()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.raw, tt.size)
		})
	}
}

func TestPointLightLayout(t *testing.T) {
	raw := ToGPUPointLight(NewPointLight(WithAttenuation(1, 0.5, 0.25)), mgl32.Vec3{4, 5, 6}).Marshal()

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])) }
	assert.Equal(t, float32(4), f(0))
	assert.Equal(t, float32(6), f(8))
	assert.Equal(t, float32(1), f(12))
	assert.Equal(t, float32(0.5), f(28))
	assert.Equal(t, float32(0.25), f(44))
	assert.Equal(t, float32(0), f(60))
}

func TestAggregateClampsToCapacity(t *testing.T) {
	for _, n := range []int{0, 1, 5, 16, 17, 40} {
		u, dropped := AggregatePointLights(samples(n))

		used := min(n, MaxPointLights)
		assert.Equal(t, uint32(used), u.LightsUsed, "n=%d", n)
		assert.Equal(t, n-used, dropped, "n=%d", n)

		for i := 0; i < used; i++ {
			assert.Equal(t, float32(i), u.Lights[i].Position.X())
		}
		for i := used; i < MaxPointLights; i++ {
			assert.Equal(t, GPUPointLight{}, u.Lights[i], "slot %d must be zero", i)
		}

		raw := u.Marshal()
		assert.Equal(t, uint32(used), binary.LittleEndian.Uint32(raw))
		assert.True(t, bytes.Equal(make([]byte, (MaxPointLights-used)*64), raw[16+used*64:]))
	}
}

func TestAggregatorLogsOncePerTransition(t *testing.T) {
	var buf bytes.Buffer
	a := NewAggregator(WithLogger(logger.NewWithWriter(&buf, "debug", "test")))

	a.Aggregate(samples(20))
	a.Aggregate(samples(20))
	assert.True(t, a.Dropping())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("dropping extras")))

	a.Aggregate(samples(3))
	assert.False(t, a.Dropping())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("back within capacity")))
}

func TestDirectionalLight(t *testing.T) {
	l := NewDirectionalLight(WithDirection(0, -2, 0), WithDirectionalColor(0.5, 0.5, 0.5))
	assert.InDelta(t, 1.0, l.Direction.Len(), 1e-6)

	d := ToGPUDirectionalLight(l, -1)
	assert.Equal(t, int32(-1), d.ShadowLayer)
	assert.Equal(t, l.LightSpaceMatrix(), d.LightSpace)

	// the origin sits between the near and far planes of the light volume
	clip := d.LightSpace.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.Greater(t, clip.Z(), float32(0))
	assert.Less(t, clip.Z(), float32(1))
}

func TestShadowLayersNeverReassign(t *testing.T) {
	s := NewShadowLayers(2)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.False(t, s.Binding(a).Bound())

	ba := s.Assign(a)
	layer, ok := ba.Layer()
	require.True(t, ok)
	assert.Equal(t, uint32(0), layer)
	assert.Equal(t, ba, s.Assign(a))

	bb := s.Assign(b)
	assert.Equal(t, int32(1), bb.ShaderLayer())

	bc := s.Assign(c)
	assert.False(t, bc.Bound(), "no layer left")
	assert.Equal(t, int32(-1), bc.ShaderLayer())

	assert.Equal(t, ba, s.Assign(a), "a keeps its layer")

	s.Retain(map[uuid.UUID]struct{}{b: {}, c: {}})
	assert.Equal(t, 1, s.Len())
	got, ok := s.Assign(c).Layer()
	require.True(t, ok)
	assert.Equal(t, uint32(0), got)
}
