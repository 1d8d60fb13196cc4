// Package model holds instanced mesh assets: vertex and index buffers per mesh, the materials they
// reference and one instance buffer the instance upload pass fills every frame.
package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaxInstances is the instance buffer capacity of a model unless configured otherwise.
const DefaultMaxInstances = 1024

// Mesh is one indexed triangle list of a model.
type Mesh struct {
	Name          string
	VertexBuffer  gpu.Buffer
	IndexBuffer   gpu.Buffer
	IndexCount    uint32
	MaterialIndex int
}

// model is the implementation of the Model interface.
type model struct {
	name           string
	maxInstances   int
	meshes         []Mesh
	materials      []material.Material
	instanceBuffer gpu.Buffer
	radius         float32
}

// Model is a GPU-resident mesh asset drawn with instancing.
//
// The instance buffer holds MaxInstances GPUInstance records. Draws select a contiguous range of it,
// so callers must have uploaded that range earlier in the same frame.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the name of the model
	Name() string

	// Meshes retrieves the meshes in decode order.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// Materials retrieves the uploaded materials referenced by the meshes.
	//
	// Returns:
	//   - []material.Material: the materials
	Materials() []material.Material

	// InstanceBuffer retrieves the per-instance vertex buffer.
	//
	// Returns:
	//   - gpu.Buffer: the buffer, MaxInstances * 64 bytes
	InstanceBuffer() gpu.Buffer

	// BoundingRadius retrieves the radius of the origin-centered sphere enclosing every vertex.
	//
	// Returns:
	//   - float32: the radius in model units
	BoundingRadius() float32

	// MaxInstances retrieves the instance buffer capacity in instances.
	//
	// Returns:
	//   - int: the capacity
	MaxInstances() int

	// DrawInstanced records every mesh with its material bound at materialGroup.
	//
	// Parameters:
	//   - pass: the open render pass with a pipeline set
	//   - materialGroup: the bind group index the pipeline declares for materials
	//   - first: the first instance
	//   - count: the number of instances
	DrawInstanced(pass gpu.RenderPassEncoder, materialGroup uint32, first, count uint32)

	// DrawUntextured records every mesh without binding materials, for depth-only and colour-only pipelines.
	//
	// Parameters:
	//   - pass: the open render pass with a pipeline set
	//   - first: the first instance
	//   - count: the number of instances
	DrawUntextured(pass gpu.RenderPassEncoder, first, count uint32)

	// Release frees every buffer and material of the model.
	Release()
}

var _ Model = &model{}

// NewModel uploads an imported model: one vertex and index buffer per mesh, every material against the
// shared layout and an instance buffer of MaxInstances records. A model without materials gets a plain
// white one so every mesh can be drawn textured.
//
// Parameters:
//   - backend: the GPU backend
//   - imported: the decoded model
//   - layout: the shared material layout
//   - options: variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the uploaded model
//   - error: error if a GPU object cannot be created
func NewModel(backend gpu.Backend, imported *ImportedModel, layout *material.Layout, options ...ModelBuilderOption) (Model, error) {
	m := &model{
		name:         imported.Name,
		maxInstances: DefaultMaxInstances,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.maxInstances <= 0 {
		panic(fmt.Sprintf("model: %q has non-positive instance capacity %d", m.name, m.maxInstances))
	}

	materials := imported.Materials
	if len(materials) == 0 {
		materials = []material.Material{material.NewMaterial(material.WithName(m.name + " Default"))}
	}
	for _, mat := range materials {
		if err := mat.Upload(backend, layout); err != nil {
			m.Release()
			return nil, fmt.Errorf("material %q: %w", mat.Name(), err)
		}
		m.materials = append(m.materials, mat)
	}

	for i, im := range imported.Meshes {
		mesh, err := m.uploadMesh(backend, i, im)
		if err != nil {
			m.Release()
			return nil, err
		}
		m.meshes = append(m.meshes, mesh)
		for _, v := range im.Vertices {
			m.radius = max(m.radius, mgl32.Vec3(v.Position).Len())
		}
	}

	buf, err := backend.CreateBuffer(gpu.BufferDescriptor{
		Label: m.name + " Instances",
		Size:  uint64(m.maxInstances * GPUInstance{}.Size()),
		Usage: gpu.BufferUsageVertex | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		m.Release()
		return nil, err
	}
	m.instanceBuffer = buf
	return m, nil
}

func (m *model) uploadMesh(backend gpu.Backend, index int, im ImportedMesh) (Mesh, error) {
	if len(im.Vertices) == 0 || len(im.Indices) == 0 {
		return Mesh{}, fmt.Errorf("mesh %d of %q is empty", index, m.name)
	}
	label := fmt.Sprintf("%s Mesh %d", m.name, index)

	vb, err := backend.CreateBuffer(gpu.BufferDescriptor{
		Label: label + " Vertices",
		Size:  uint64(len(im.Vertices) * GPUVertex{}.Size()),
		Usage: gpu.BufferUsageVertex | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return Mesh{}, err
	}
	backend.WriteBuffer(vb, 0, MarshalVertices(im.Vertices))

	ib, err := backend.CreateBuffer(gpu.BufferDescriptor{
		Label: label + " Indices",
		Size:  uint64(len(im.Indices) * 4),
		Usage: gpu.BufferUsageIndex | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return Mesh{}, err
	}
	backend.WriteBuffer(ib, 0, MarshalIndices(im.Indices))

	matIndex := im.MaterialIndex
	if matIndex < 0 || matIndex >= len(m.materials) {
		matIndex = 0
	}
	return Mesh{
		Name:          im.Name,
		VertexBuffer:  vb,
		IndexBuffer:   ib,
		IndexCount:    uint32(len(im.Indices)),
		MaterialIndex: matIndex,
	}, nil
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) Materials() []material.Material {
	return m.materials
}

func (m *model) InstanceBuffer() gpu.Buffer {
	return m.instanceBuffer
}

func (m *model) BoundingRadius() float32 {
	return m.radius
}

func (m *model) MaxInstances() int {
	return m.maxInstances
}

func (m *model) DrawInstanced(pass gpu.RenderPassEncoder, materialGroup uint32, first, count uint32) {
	if count == 0 {
		return
	}
	for _, mesh := range m.meshes {
		pass.SetBindGroup(materialGroup, m.materials[mesh.MaterialIndex].BindGroupProvider().BindGroup())
		m.drawMesh(pass, mesh, first, count)
	}
}

func (m *model) DrawUntextured(pass gpu.RenderPassEncoder, first, count uint32) {
	if count == 0 {
		return
	}
	for _, mesh := range m.meshes {
		m.drawMesh(pass, mesh, first, count)
	}
}

func (m *model) drawMesh(pass gpu.RenderPassEncoder, mesh Mesh, first, count uint32) {
	pass.SetVertexBuffer(0, mesh.VertexBuffer, 0, gpu.WholeSize)
	pass.SetVertexBuffer(1, m.instanceBuffer, 0, gpu.WholeSize)
	pass.SetIndexBuffer(mesh.IndexBuffer, gpu.IndexFormatUint32, 0, gpu.WholeSize)
	pass.DrawIndexed(mesh.IndexCount, count, 0, 0, first)
}

func (m *model) Release() {
	for _, mesh := range m.meshes {
		mesh.VertexBuffer.Release()
		mesh.IndexBuffer.Release()
	}
	m.meshes = nil
	for _, mat := range m.materials {
		mat.Release()
	}
	m.materials = nil
	if m.instanceBuffer != nil {
		m.instanceBuffer.Release()
		m.instanceBuffer = nil
	}
}
