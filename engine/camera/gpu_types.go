package camera

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the Camera struct.
// Shaders pull it in with //@oxy:include camera.
//
//go:embed assets/camera.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Size: 144 bytes.
//
// Layout:
//
//	mat4x4<f32> view        (offset   0)
//	mat4x4<f32> projection  (offset  64)
//	vec3<f32>   eye         (offset 128)
//	f32         _pad        (offset 140)
type GPUCameraUniform struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Eye        mgl32.Vec3
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g GPUCameraUniform) Size() int {
	return 144
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g GPUCameraUniform) Marshal() []byte {
	return common.NewGPUWriter(g.Size()).
		Mat4(g.View).
		Mat4(g.Projection).
		Vec3(g.Eye).Pad(4).
		Bytes()
}
