package ui

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUUISource is the canonical WGSL definition of UIVertexInput and UIProjection.
// Shaders pull it in with //@oxy:include ui.
//
//go:embed assets/ui.wgsl
var GPUUISource string

// Vertex is one UI vertex in screen pixels. Color is packed RGBA8, red in the low byte.
// Size: 20 bytes.
//
// Layout:
//
//	vec2<f32> position    (offset  0)
//	vec2<f32> tex_coords  (offset  8)
//	unorm8x4  color       (offset 16)
type Vertex struct {
	Position [2]float32
	UV       [2]float32
	Color    uint32
}

// VertexSize is the stride of Vertex.
const VertexSize = 20

// PackColor packs RGBA8 channels the way the unorm8x4 attribute reads them.
func PackColor(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// White is opaque white.
var White = PackColor(255, 255, 255, 255)

// MarshalVertices serializes vertices tightly packed.
func MarshalVertices(vertices []Vertex) []byte {
	w := common.NewGPUWriter(len(vertices) * VertexSize)
	for _, v := range vertices {
		w.Float32(v.Position[0]).Float32(v.Position[1]).Float32(v.UV[0]).Float32(v.UV[1]).Uint32(v.Color)
	}
	return w.Bytes()
}

// MarshalIndices serializes indices as little-endian uint32.
func MarshalIndices(indices []uint32) []byte {
	w := common.NewGPUWriter(len(indices) * 4)
	for _, i := range indices {
		w.Uint32(i)
	}
	return w.Bytes()
}

// VertexLayout is the vertex buffer layout of Vertex at slot 0.
func VertexLayout() gpu.VertexBufferLayout {
	return gpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    gpu.VertexStepModeVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			{Format: gpu.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
		},
	}
}

// GPUProjection is the UI vertex uniform: a pixel to clip space orthographic projection.
// Size: 64 bytes.
type GPUProjection struct {
	Matrix mgl32.Mat4
}

// ProjectionFor returns the projection for a display of the given size, origin top-left.
func ProjectionFor(width, height float32) GPUProjection {
	return GPUProjection{Matrix: common.ScreenOrthographic(width, height)}
}

// Size returns the size of the GPUProjection struct in bytes.
func (p GPUProjection) Size() int {
	return 64
}

// Marshal serializes the matrix column-major.
func (p GPUProjection) Marshal() []byte {
	return common.NewGPUWriter(p.Size()).Mat4(p.Matrix).Bytes()
}
