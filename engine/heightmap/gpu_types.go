package heightmap

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUHeightMapSource is the canonical WGSL definition of SurfaceVertexInput and SurfaceModel.
// Shaders pull it in with //@oxy:include heightmap.
//
//go:embed assets/heightmap.wgsl
var GPUHeightMapSource string

// GPUVertex is one grid vertex of a height map surface.
// Size: 20 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0, location 0
	TexCoord [2]float32 // offset 12, location 1
}

func (g GPUVertex) Size() int {
	return 20
}

func (g GPUVertex) Marshal() []byte {
	return common.NewGPUWriter(g.Size()).Vec3(g.Position).Vec2(g.TexCoord).Bytes()
}

// VertexLayout is the vertex buffer layout of GPUVertex at slot 0.
func VertexLayout() gpu.VertexBufferLayout {
	return gpu.VertexBufferLayout{
		ArrayStride: 20,
		StepMode:    gpu.VertexStepModeVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}
}

// GPUSurfaceModel is the private uniform of the water surface pass, written once per surface.
// Size: 80 bytes.
//
// Layout:
//
//	mat4x4<f32> model        (offset  0)
//	f32         height_scale (offset 64)
//	f32         time         (offset 68)  pad to 80
type GPUSurfaceModel struct {
	Model       mgl32.Mat4
	HeightScale float32
	Time        float32
}

// Size returns the size of the GPUSurfaceModel struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g GPUSurfaceModel) Size() int {
	return 80
}

// Marshal serializes the GPUSurfaceModel struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload
func (g GPUSurfaceModel) Marshal() []byte {
	return common.NewGPUWriter(g.Size()).Mat4(g.Model).Float32(g.HeightScale).Float32(g.Time).Pad(8).Bytes()
}
