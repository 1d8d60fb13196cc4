package model

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the canonical WGSL definition of VertexInput and InstanceInput for mesh pipelines.
// Shaders pull it in with //@oxy:include vertex.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Size: 32 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0, location 0
	Normal   [3]float32 // offset 12, location 1
	TexCoord [2]float32 // offset 24, location 2
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (32)
func (g GPUVertex) Size() int {
	return 32
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g GPUVertex) Marshal() []byte {
	w := common.NewGPUWriter(g.Size())
	g.write(w)
	return w.Bytes()
}

func (g GPUVertex) write(w *common.GPUWriter) {
	w.Vec3(g.Position).Vec3(g.Normal).Vec2(g.TexCoord)
}

// MarshalVertices packs vertices back to back.
func MarshalVertices(vertices []GPUVertex) []byte {
	w := common.NewGPUWriter(len(vertices) * GPUVertex{}.Size())
	for _, v := range vertices {
		v.write(w)
	}
	return w.Bytes()
}

// MarshalIndices packs u32 indices little-endian.
func MarshalIndices(indices []uint32) []byte {
	w := common.NewGPUWriter(len(indices) * 4)
	for _, i := range indices {
		w.Uint32(i)
	}
	return w.Bytes()
}

// VertexLayout is the vertex buffer layout of GPUVertex at slot 0.
func VertexLayout() gpu.VertexBufferLayout {
	return gpu.VertexBufferLayout{
		ArrayStride: 32,
		StepMode:    gpu.VertexStepModeVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: gpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
}

// GPUInstance is the per-instance model matrix streamed through vertex slot 1.
// Size: 64 bytes (four vec4 columns).
type GPUInstance struct {
	Model mgl32.Mat4
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (64)
func (g GPUInstance) Size() int {
	return 64
}

// Marshal serializes the GPUInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g GPUInstance) Marshal() []byte {
	return common.NewGPUWriter(g.Size()).Mat4(g.Model).Bytes()
}

// MarshalInto writes the instance into dst, which must be exactly 64 bytes.
func (g GPUInstance) MarshalInto(dst []byte) {
	common.NewGPUWriterInto(dst).Mat4(g.Model).Bytes()
}

// InstanceLayout is the vertex buffer layout of GPUInstance at slot 1, one column per location 3..6.
func InstanceLayout() gpu.VertexBufferLayout {
	attrs := make([]gpu.VertexAttribute, 4)
	for i := range attrs {
		attrs[i] = gpu.VertexAttribute{Format: gpu.VertexFormatFloat32x4, Offset: uint64(i * 16), ShaderLocation: uint32(3 + i)}
	}
	return gpu.VertexBufferLayout{
		ArrayStride: 64,
		StepMode:    gpu.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
