package heightmap

// BuildGrid creates a plane of segX by segZ quads centred on the origin in the XZ plane, facing +Y.
// Texture coordinates run from (0,0) at -X/-Z to (1,1) at +X/+Z. Each quad is two counter-clockwise
// triangles seen from above.
//
// Parameters:
//   - width, depth: the plane extent along X and Z
//   - segX, segZ: the number of quads along X and Z, at least 1
//
// Returns:
//   - []GPUVertex: (segX+1) * (segZ+1) vertices, row major along X
//   - []uint32: segX * segZ * 6 indices
func BuildGrid(width, depth float32, segX, segZ int) ([]GPUVertex, []uint32) {
	segX = max(segX, 1)
	segZ = max(segZ, 1)
	cols, rows := segX+1, segZ+1

	vertices := make([]GPUVertex, 0, cols*rows)
	for i := range rows {
		v := float32(i) / float32(segZ)
		z := v*depth - depth/2
		for j := range cols {
			u := float32(j) / float32(segX)
			x := u*width - width/2
			vertices = append(vertices, GPUVertex{Position: [3]float32{x, 0, z}, TexCoord: [2]float32{u, v}})
		}
	}

	indices := make([]uint32, 0, segX*segZ*6)
	for i := range segZ {
		for j := range segX {
			a := uint32(j + cols*i)
			b := uint32(j + cols*(i+1))
			c := uint32(j + 1 + cols*(i+1))
			d := uint32(j + 1 + cols*i)
			indices = append(indices, a, b, d, b, c, d)
		}
	}
	return vertices, indices
}
