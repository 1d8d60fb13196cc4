package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFrustumContainsSphere(t *testing.T) {
	proj := mgl32.Perspective(float32(math.Pi/2), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := NewFrustum(proj.Mul4(view))

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"ahead", mgl32.Vec3{0, 0, -10}, 1, true},
		{"behind", mgl32.Vec3{0, 0, 10}, 1, false},
		{"far left", mgl32.Vec3{-100, 0, -10}, 1, false},
		{"straddles left plane", mgl32.Vec3{-10.5, 0, -10}, 1, true},
		{"beyond far plane", mgl32.Vec3{0, 0, -200}, 1, false},
		{"above", mgl32.Vec3{0, 50, -10}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ContainsSphere(tt.center, tt.radius))
		})
	}
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := NewFrustum(mgl32.Perspective(1, 1.5, 0.5, 50))
	for i, p := range f.Planes {
		assert.InDelta(t, 1.0, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}
