package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComposeDecomposeRoundTrip verifies translation comes back exactly and scale within tolerance.
func TestComposeDecomposeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		position mgl32.Vec3
		rotation mgl32.Quat
		scale    mgl32.Vec3
	}{
		{"identity", mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}},
		{"translated", mgl32.Vec3{3, -2, 7.5}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}},
		{"rotated y", mgl32.Vec3{1, 2, 3}, mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0}), mgl32.Vec3{2, 2, 2}},
		{"non uniform", mgl32.Vec3{-10, 0, 4}, mgl32.QuatRotate(1.2, mgl32.Vec3{1, 1, 0}.Normalize()), mgl32.Vec3{0.5, 3, 1.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComposeModelMatrix(tt.position, tt.rotation, tt.scale)
			pos, rot, scale := DecomposeMatrix(m)

			assert.Equal(t, tt.position, pos)
			for i := range 3 {
				assert.InDelta(t, tt.scale[i], scale[i], 1e-4)
			}
			assert.True(t, rot.ApproxEqualThreshold(tt.rotation.Normalize(), 1e-4) ||
				rot.ApproxEqualThreshold(tt.rotation.Normalize().Scale(-1), 1e-4))
		})
	}
}

func TestComposeModelMatrixOrder(t *testing.T) {
	// scale applies before translation, so a unit x point lands at scale.x + position.x
	m := ComposeModelMatrix(mgl32.Vec3{10, 0, 0}, mgl32.QuatIdent(), mgl32.Vec3{2, 1, 1})
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 12, p.X(), 1e-6)
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	proj := Perspective(float32(math.Pi/3), 16.0/9.0, near, far)

	pn := proj.Mul4x1(mgl32.Vec4{0, 0, -near, 1})
	pf := proj.Mul4x1(mgl32.Vec4{0, 0, -far, 1})
	assert.InDelta(t, 0, pn.Z()/pn.W(), 1e-5)
	assert.InDelta(t, 1, pf.Z()/pf.W(), 1e-5)
}

func TestScreenOrthographicCorners(t *testing.T) {
	proj := ScreenOrthographic(800, 600)

	tl := proj.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	br := proj.Mul4x1(mgl32.Vec4{800, 600, 0, 1})
	assert.InDelta(t, -1, tl.X(), 1e-6)
	assert.InDelta(t, 1, tl.Y(), 1e-6)
	assert.InDelta(t, 1, br.X(), 1e-6)
	assert.InDelta(t, -1, br.Y(), 1e-6)
}

func TestDirectionalLightViewProjection(t *testing.T) {
	tests := []struct {
		name string
		dir  mgl32.Vec3
	}{
		{"straight down", mgl32.Vec3{0, -1, 0}},
		{"zero falls back to down", mgl32.Vec3{}},
		{"angled", mgl32.Vec3{1, -1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DirectionalLightViewProjection(tt.dir, 10, 10, 1, 100)
			// origin sits in front of the light and inside the volume
			o := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
			require.False(t, math.IsNaN(float64(o.Z())))
			assert.InDelta(t, 0, o.X(), 1e-4)
			assert.InDelta(t, 0, o.Y(), 1e-4)
			assert.Greater(t, o.Z(), float32(0))
			assert.Less(t, o.Z(), float32(1))
		})
	}
}
