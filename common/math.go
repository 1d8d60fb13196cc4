package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ComposeModelMatrix builds a model matrix as T * R * S from a translation, an orientation and a per-axis scale.
// All matrices are column-major (mgl32 and WGSL convention).
//
// Parameters:
//   - position: translation in world space
//   - rotation: orientation quaternion (normalized before use)
//   - scale: scale factors along each local axis
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func ComposeModelMatrix(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// DecomposeMatrix splits a T * R * S model matrix back into its translation, orientation and scale.
// Translation is read directly from the fourth column. Scale is the length of each basis column.
// Negative scales are not recovered; the sign is folded into the orientation.
//
// Parameters:
//   - m: the model matrix to decompose
//
// Returns:
//   - mgl32.Vec3: translation
//   - mgl32.Quat: orientation
//   - mgl32.Vec3: scale
func DecomposeMatrix(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	translation := mgl32.Vec3{m[12], m[13], m[14]}

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	scale := mgl32.Vec3{sx, sy, sz}

	rot := mgl32.Ident3()
	for col, s := range []float32{sx, sy, sz} {
		if s == 0 {
			continue
		}
		c := m.Col(col).Vec3().Mul(1 / s)
		rot.SetCol(col, c)
	}

	return translation, mgl32.Mat4ToQuat(rot.Mat4()).Normalize(), scale
}

// Perspective creates a right-handed perspective projection with WebGPU clip-space depth [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// Orthographic creates a right-handed orthographic projection with WebGPU clip-space depth [0, 1].
//
// Parameters:
//   - left, right, bottom, top: the view volume extents on the x and y axes
//   - near, far: the clipping plane distances along -z
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Orthographic(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	var out mgl32.Mat4
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
	out[15] = 1
	return out
}

// ScreenOrthographic maps pixel coordinates (origin top-left, y down) to clip space.
// Used by screen-space passes whose vertices are expressed in display pixels.
//
// Parameters:
//   - width: display width in pixels
//   - height: display height in pixels
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func ScreenOrthographic(width, height float32) mgl32.Mat4 {
	return Orthographic(0, width, height, 0, -1, 1)
}

// DirectionalLightViewProjection computes the light-space matrix of a directional light.
// The light is placed at -direction * distance looking at the origin, with an orthographic
// volume of +/- halfExtent on x and y.
//
// Parameters:
//   - direction: the direction the light travels (does not need to be normalized)
//   - halfExtent: half the width/height of the orthographic volume
//   - distance: how far back along -direction the light eye is placed
//   - near, far: the clipping plane distances of the light volume
//
// Returns:
//   - mgl32.Mat4: projection * view
func DirectionalLightViewProjection(direction mgl32.Vec3, halfExtent, distance, near, far float32) mgl32.Mat4 {
	dir := direction
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, -1, 0}
	}
	dir = dir.Normalize()
	eye := dir.Mul(-distance)

	// lookAt degenerates when the light points straight along the up axis
	up := mgl32.Vec3{0, 1, 0}
	if abs32(dir.Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}

	view := mgl32.LookAtV(eye, mgl32.Vec3{}, up)
	proj := Orthographic(-halfExtent, halfExtent, -halfExtent, halfExtent, near, far)
	return proj.Mul4(view)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
