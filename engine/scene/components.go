// Package scene is the entity world the renderer reads every frame. Entities carry plain-value components;
// the frame never walks the world directly but takes a Snapshot that every traversal shares.
package scene

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Entity identifies one object in a World.
type Entity uuid.UUID

// NilEntity is the zero Entity; it is never spawned.
var NilEntity Entity

func (e Entity) String() string {
	return uuid.UUID(e).String()
}

// ComponentKind names a component type for queries.
type ComponentKind uint8

const (
	KindTransform ComponentKind = iota
	KindModel
	KindPointLight
	KindDirectionalLight
	KindHeightMap
	KindLightMarker
)

func (k ComponentKind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindModel:
		return "model"
	case KindPointLight:
		return "point_light"
	case KindDirectionalLight:
		return "directional_light"
	case KindHeightMap:
		return "heightmap"
	case KindLightMarker:
		return "light_marker"
	default:
		return "unknown"
	}
}

// Transform places an entity in world space.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns an unrotated, unit-scale transform at position.
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// TransformFromMatrix decomposes a T * R * S matrix. Translation is exact; scale and rotation are
// recovered within float tolerance.
func TransformFromMatrix(m mgl32.Mat4) Transform {
	p, r, s := common.DecomposeMatrix(m)
	return Transform{Position: p, Rotation: r, Scale: s}
}

// Normalized fills the zero-value fields a literal Transform{Position: p} leaves unset: a zero rotation
// becomes the identity and a zero scale becomes unit scale.
func (t Transform) Normalized() Transform {
	if t.Rotation == (mgl32.Quat{}) {
		t.Rotation = mgl32.QuatIdent()
	}
	if t.Scale == (mgl32.Vec3{}) {
		t.Scale = mgl32.Vec3{1, 1, 1}
	}
	return t
}

// Matrix composes T * R * S of the normalized transform. It is computed on every call.
//
// Returns:
//   - mgl32.Mat4: the model matrix
func (t Transform) Matrix() mgl32.Mat4 {
	n := t.Normalized()
	return common.ComposeModelMatrix(n.Position, n.Rotation, n.Scale)
}

// ModelRef attaches a model asset to an entity. Many entities may share one handle.
type ModelRef struct {
	Handle asset.Handle[model.Model]
}

// HeightMapRef attaches a height map surface to an entity.
type HeightMapRef struct {
	Handle asset.Handle[heightmap.HeightMap]

	// HeightScale multiplies the sampled height in model units.
	HeightScale float32
}
