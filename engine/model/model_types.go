package model

import "github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"

// --- Import Types ---

// ImportedModel is a model decoded from disk that has not touched the GPU yet.
// Decoders produce it on any goroutine; NewModel turns it into GPU buffers on the frame goroutine.
type ImportedModel struct {
	// Name is the model identifier, usually the file name.
	Name string

	// Meshes contains one entry per triangle primitive.
	Meshes []ImportedMesh

	// Materials are referenced by ImportedMesh.MaterialIndex. They carry staged pixels only.
	Materials []material.Material
}

// ImportedMesh represents a single mesh within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Vertices are the mesh vertices.
	Vertices []GPUVertex

	// Indices are the triangle indices.
	Indices []uint32

	// MaterialIndex references ImportedModel.Materials.
	MaterialIndex int
}
