package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is ax + by + cz + d = 0 with (a, b, c) the unit normal.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum holds the six planes of a view volume, oriented so the positive half-space is inside.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustum extracts the planes of a projection * view matrix with the Gribb/Hartmann method.
// The near plane uses the [0, 1] clip depth of WebGPU.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the frustum with normalized planes
func NewFrustum(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	for i, v := range [6]mgl32.Vec4{
		FrustumLeft:   r3.Add(r0),
		FrustumRight:  r3.Sub(r0),
		FrustumBottom: r3.Add(r1),
		FrustumTop:    r3.Sub(r1),
		FrustumNear:   r2,
		FrustumFar:    r3.Sub(r2),
	} {
		p := Plane{Normal: v.Vec3(), Distance: v.W()}
		if l := p.Normal.Len(); l > 0 {
			p.Normal = p.Normal.Mul(1 / l)
			p.Distance /= l
		}
		f.Planes[i] = p
	}
	return f
}

// ContainsSphere reports whether any part of the sphere lies inside the frustum.
//
// Parameters:
//   - center: the sphere center in world space
//   - radius: the sphere radius
//
// Returns:
//   - bool: false only when the sphere is fully outside one plane
func (f Frustum) ContainsSphere(center mgl32.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.Normal.Dot(center)+p.Distance < -radius {
			return false
		}
	}
	return true
}
