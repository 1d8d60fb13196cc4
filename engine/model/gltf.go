package model

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// DecodeGLTF reads a .gltf or .glb file into an ImportedModel. Every triangle primitive becomes one mesh.
// Missing normals default to +Y and missing texture coordinates to zero. Images are decoded from buffer
// views, data URIs or files next to the document.
//
// Parameters:
//   - path: the document path
//
// Returns:
//   - *ImportedModel: the decoded model
//   - error: error if the document cannot be read or a primitive is malformed
func DecodeGLTF(path string) (*ImportedModel, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open gltf")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result := &ImportedModel{Name: name}

	images := map[uint32]common.TextureStagingData{}
	for i, mat := range doc.Materials {
		m, err := extractMaterial(doc, filepath.Dir(path), mat, images)
		if err != nil {
			return nil, errors.Wrapf(err, "material %d", i)
		}
		result.Materials = append(result.Materials, m)
	}

	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			im, err := extractPrimitive(doc, prim)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", mi, pi)
			}
			im.Name = mesh.Name
			if len(mesh.Primitives) > 1 {
				im.Name = fmt.Sprintf("%s.%d", mesh.Name, pi)
			}
			result.Meshes = append(result.Meshes, im)
		}
	}
	if len(result.Meshes) == 0 {
		return nil, fmt.Errorf("no meshes")
	}
	return result, nil
}

func extractPrimitive(doc *gltf.Document, prim *gltf.Primitive) (ImportedMesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return ImportedMesh{}, fmt.Errorf("unsupported primitive mode %v (only triangles supported)", prim.Mode)
	}

	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return ImportedMesh{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return ImportedMesh{}, errors.Wrap(err, "read positions")
	}

	vertices := make([]GPUVertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
		vertices[i].Normal = [3]float32{0, 1, 0}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return ImportedMesh{}, errors.Wrap(err, "read normals")
		}
		for i := range min(len(normals), len(vertices)) {
			vertices[i].Normal = normals[i]
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return ImportedMesh{}, errors.Wrap(err, "read texcoords")
		}
		for i := range min(len(uvs), len(vertices)) {
			vertices[i].TexCoord = uvs[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return ImportedMesh{}, errors.Wrap(err, "read indices")
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return ImportedMesh{}, fmt.Errorf("index %d out of range of %d vertices", i, len(vertices))
		}
	}

	matIndex := 0
	if prim.Material != nil {
		matIndex = int(*prim.Material)
	}
	return ImportedMesh{Vertices: vertices, Indices: indices, MaterialIndex: matIndex}, nil
}

func extractMaterial(doc *gltf.Document, dir string, mat *gltf.Material, images map[uint32]common.TextureStagingData) (material.Material, error) {
	opts := []material.MaterialBuilderOption{material.WithName(mat.Name)}
	pbr := mat.PBRMetallicRoughness
	if pbr == nil {
		return material.NewMaterial(opts...), nil
	}

	if pbr.BaseColorFactor != nil {
		opts = append(opts, material.WithBaseColor(*pbr.BaseColorFactor))
	}
	if pbr.BaseColorTexture != nil {
		tex, err := loadTexture(doc, dir, pbr.BaseColorTexture.Index, images)
		if err != nil {
			return nil, errors.Wrap(err, "base color texture")
		}
		if tex != nil {
			opts = append(opts, material.WithDiffuseTexture(*tex))
		}
	}
	// the metallic-roughness map stands in for a specular map; roughness lives in green
	if pbr.MetallicRoughnessTexture != nil {
		tex, err := loadTexture(doc, dir, pbr.MetallicRoughnessTexture.Index, images)
		if err != nil {
			return nil, errors.Wrap(err, "metallic-roughness texture")
		}
		if tex != nil {
			opts = append(opts, material.WithSpecularTexture(invertRoughness(*tex)))
		}
	}
	return material.NewMaterial(opts...), nil
}

// loadTexture resolves a texture index to staged pixels. A texture without a source yields nil.
func loadTexture(doc *gltf.Document, dir string, textureIndex uint32, images map[uint32]common.TextureStagingData) (*common.TextureStagingData, error) {
	if int(textureIndex) >= len(doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	tex := doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	imageIndex := *tex.Source
	if staged, ok := images[imageIndex]; ok {
		return &staged, nil
	}
	if int(imageIndex) >= len(doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", imageIndex)
	}

	img := doc.Images[imageIndex]
	var (
		staged common.TextureStagingData
		err    error
	)
	switch {
	case img.BufferView != nil:
		var data []byte
		data, err = readBufferView(doc, *img.BufferView)
		if err == nil {
			staged, err = common.DecodeImageBytes(data)
		}
	case img.IsEmbeddedResource():
		var data []byte
		data, err = img.MarshalData()
		if err == nil {
			staged, err = common.DecodeImageBytes(data)
		}
	case img.URI != "":
		staged, err = common.DecodeImageFile(filepath.Join(dir, filepath.FromSlash(img.URI)))
	default:
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "image %d", imageIndex)
	}
	images[imageIndex] = staged
	return &staged, nil
}

func readBufferView(doc *gltf.Document, index uint32) ([]byte, error) {
	if int(index) >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", index)
	}
	view := doc.BufferViews[index]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data
	end := int(view.ByteOffset) + int(view.ByteLength)
	if end > len(data) {
		return nil, fmt.Errorf("buffer view %d ends at %d past buffer of %d bytes", index, end, len(data))
	}
	return data[view.ByteOffset:end], nil
}

// invertRoughness turns a metallic-roughness map into a grey specular intensity map (1 - roughness).
func invertRoughness(tex common.TextureStagingData) common.TextureStagingData {
	out := common.TextureStagingData{Pixels: make([]byte, len(tex.Pixels)), Width: tex.Width, Height: tex.Height}
	for i := 0; i+3 < len(tex.Pixels); i += 4 {
		s := 255 - tex.Pixels[i+1]
		out.Pixels[i], out.Pixels[i+1], out.Pixels[i+2], out.Pixels[i+3] = s, s, s, 255
	}
	return out
}
