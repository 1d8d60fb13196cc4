package scene

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/google/uuid"
)

// Category splits the instances of one model between passes.
type Category int

const (
	// CategoryOpaque instances draw in the model, shadow and environment passes.
	CategoryOpaque Category = iota
	// CategoryLightMarker instances draw only in the light debug pass.
	CategoryLightMarker
)

func (c Category) String() string {
	if c == CategoryLightMarker {
		return "light_marker"
	}
	return "opaque"
}

// Instance is one drawable entity with its transform at snapshot time.
type Instance struct {
	Entity    Entity
	Transform Transform
}

// DrawGroup is every instance sharing one model handle, split by category.
type DrawGroup struct {
	Model   asset.Handle[model.Model]
	Opaque  []Instance
	Markers []Instance
}

// Len returns the total instance count of the group.
func (g DrawGroup) Len() int {
	return len(g.Opaque) + len(g.Markers)
}

// Surface is one height map entity.
type Surface struct {
	Entity      Entity
	HeightMap   asset.Handle[heightmap.HeightMap]
	HeightScale float32
	Transform   Transform
}

// Snapshot is an immutable frame-local copy of the world. The upload traversal and every draw traversal
// read the same Snapshot, so instance order agrees across passes.
type Snapshot struct {
	// Groups are keyed by model handle in first-seen spawn order.
	Groups            []DrawGroup
	PointLights       []light.PointLightSample
	DirectionalLights []light.DirectionalLightSample
	Surfaces          []Surface
}

// Instances returns the total number of drawable instances.
func (s Snapshot) Instances() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Len()
	}
	return n
}

// Group returns the group of a model handle.
func (s Snapshot) Group(h asset.Handle[model.Model]) (DrawGroup, bool) {
	for _, g := range s.Groups {
		if g.Model == h {
			return g, true
		}
	}
	return DrawGroup{}, false
}

// categoryLocked classifies an entity: light markers are entities carrying a point light or a LightMarker tag.
func (w *world) categoryLocked(e Entity) Category {
	if _, ok := w.pointLights[e]; ok {
		return CategoryLightMarker
	}
	if _, ok := w.markers[e]; ok {
		return CategoryLightMarker
	}
	return CategoryOpaque
}

// transformLocked returns the entity transform, or the identity when it has none.
func (w *world) transformLocked(e Entity) Transform {
	if t, ok := w.transforms[e]; ok {
		return t
	}
	return NewTransform([3]float32{})
}

func (w *world) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var snap Snapshot
	groupIndex := map[asset.Handle[model.Model]]int{}

	for _, e := range w.order {
		t := w.transformLocked(e)

		if ref, ok := w.models[e]; ok && ref.Handle.Valid() {
			gi, seen := groupIndex[ref.Handle]
			if !seen {
				gi = len(snap.Groups)
				groupIndex[ref.Handle] = gi
				snap.Groups = append(snap.Groups, DrawGroup{Model: ref.Handle})
			}
			inst := Instance{Entity: e, Transform: t}
			if w.categoryLocked(e) == CategoryLightMarker {
				snap.Groups[gi].Markers = append(snap.Groups[gi].Markers, inst)
			} else {
				snap.Groups[gi].Opaque = append(snap.Groups[gi].Opaque, inst)
			}
		}

		if l, ok := w.pointLights[e]; ok {
			snap.PointLights = append(snap.PointLights, light.PointLightSample{
				Entity:   uuid.UUID(e),
				Light:    l,
				Position: t.Position,
			})
		}
		if l, ok := w.directionalLights[e]; ok {
			snap.DirectionalLights = append(snap.DirectionalLights, light.DirectionalLightSample{
				Entity: uuid.UUID(e),
				Light:  l,
			})
		}
		if ref, ok := w.heightMaps[e]; ok && ref.Handle.Valid() {
			snap.Surfaces = append(snap.Surfaces, Surface{
				Entity:      e,
				HeightMap:   ref.Handle,
				HeightScale: ref.HeightScale,
				Transform:   t,
			})
		}
	}
	return snap
}
