package scene

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/google/uuid"
)

// world is the implementation of the World interface.
type world struct {
	mu *sync.RWMutex

	// order keeps spawn order so snapshots are deterministic
	order []Entity
	alive map[Entity]struct{}

	transforms        map[Entity]Transform
	models            map[Entity]ModelRef
	pointLights       map[Entity]light.PointLight
	directionalLights map[Entity]light.DirectionalLight
	heightMaps        map[Entity]HeightMapRef
	markers           map[Entity]struct{}
}

// World is the entity container. Every method is safe for concurrent use; the renderer only reads
// through Snapshot.
type World interface {
	// Spawn creates an entity and applies the component options in order.
	//
	// Parameters:
	//   - options: variadic list of EntityBuilderOption functions
	//
	// Returns:
	//   - Entity: the new entity
	Spawn(options ...EntityBuilderOption) Entity

	// Despawn removes the entity and every component it carries.
	//
	// Parameters:
	//   - e: the entity
	//
	// Returns:
	//   - bool: false if the entity was not alive
	Despawn(e Entity) bool

	// Alive reports whether the entity exists.
	Alive(e Entity) bool

	// Len returns the number of live entities.
	Len() int

	// Entities returns the live entities in spawn order.
	Entities() []Entity

	SetTransform(e Entity, t Transform)
	Transform(e Entity) (Transform, bool)

	SetModel(e Entity, ref ModelRef)
	Model(e Entity) (ModelRef, bool)

	SetPointLight(e Entity, l light.PointLight)
	PointLight(e Entity) (light.PointLight, bool)

	SetDirectionalLight(e Entity, l light.DirectionalLight)
	DirectionalLight(e Entity) (light.DirectionalLight, bool)

	SetHeightMap(e Entity, ref HeightMapRef)
	HeightMap(e Entity) (HeightMapRef, bool)

	// SetLightMarker tags the entity so its model draws in the light debug pass instead of the model pass.
	SetLightMarker(e Entity, marker bool)
	LightMarker(e Entity) bool

	// Remove detaches one component from the entity.
	//
	// Parameters:
	//   - e: the entity
	//   - kind: the component to remove
	Remove(e Entity, kind ComponentKind)

	// Has reports whether the entity carries the component.
	Has(e Entity, kind ComponentKind) bool

	// Query returns the live entities, in spawn order, that pass every filter.
	//
	// Parameters:
	//   - filters: variadic list of With and Without filters
	//
	// Returns:
	//   - []Entity: the matching entities
	Query(filters ...Filter) []Entity

	// Snapshot copies everything one frame needs under a single read lock.
	//
	// Returns:
	//   - Snapshot: the frame-local copy
	Snapshot() Snapshot
}

var _ World = &world{}

// NewWorld creates an empty World.
//
// Returns:
//   - World: the world
func NewWorld() World {
	return &world{
		mu:                &sync.RWMutex{},
		alive:             make(map[Entity]struct{}),
		transforms:        make(map[Entity]Transform),
		models:            make(map[Entity]ModelRef),
		pointLights:       make(map[Entity]light.PointLight),
		directionalLights: make(map[Entity]light.DirectionalLight),
		heightMaps:        make(map[Entity]HeightMapRef),
		markers:           make(map[Entity]struct{}),
	}
}

func (w *world) Spawn(options ...EntityBuilderOption) Entity {
	e := Entity(uuid.New())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.order = append(w.order, e)
	w.alive[e] = struct{}{}
	for _, opt := range options {
		opt(w, e)
	}
	return e
}

func (w *world) Despawn(e Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.alive[e]; !ok {
		return false
	}
	delete(w.alive, e)
	w.order = slices.DeleteFunc(w.order, func(o Entity) bool { return o == e })
	for _, k := range []ComponentKind{KindTransform, KindModel, KindPointLight, KindDirectionalLight, KindHeightMap, KindLightMarker} {
		w.removeLocked(e, k)
	}
	return true
}

func (w *world) Alive(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.alive[e]
	return ok
}

func (w *world) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

func (w *world) Entities() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.order)
}

// set stores a component on a live entity; writes to dead entities are dropped.
func set[T any](w *world, m map[Entity]T, e Entity, v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.alive[e]; ok {
		m[e] = v
	}
}

func get[T any](w *world, m map[Entity]T, e Entity) (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := m[e]
	return v, ok
}

func (w *world) SetTransform(e Entity, t Transform) { set(w, w.transforms, e, t) }
func (w *world) Transform(e Entity) (Transform, bool) {
	return get(w, w.transforms, e)
}

func (w *world) SetModel(e Entity, ref ModelRef) { set(w, w.models, e, ref) }
func (w *world) Model(e Entity) (ModelRef, bool) {
	return get(w, w.models, e)
}

func (w *world) SetPointLight(e Entity, l light.PointLight) { set(w, w.pointLights, e, l) }
func (w *world) PointLight(e Entity) (light.PointLight, bool) {
	return get(w, w.pointLights, e)
}

func (w *world) SetDirectionalLight(e Entity, l light.DirectionalLight) {
	set(w, w.directionalLights, e, l)
}
func (w *world) DirectionalLight(e Entity) (light.DirectionalLight, bool) {
	return get(w, w.directionalLights, e)
}

func (w *world) SetHeightMap(e Entity, ref HeightMapRef) { set(w, w.heightMaps, e, ref) }
func (w *world) HeightMap(e Entity) (HeightMapRef, bool) {
	return get(w, w.heightMaps, e)
}

func (w *world) SetLightMarker(e Entity, marker bool) {
	if !marker {
		w.Remove(e, KindLightMarker)
		return
	}
	set(w, w.markers, e, struct{}{})
}

func (w *world) LightMarker(e Entity) bool {
	_, ok := get(w, w.markers, e)
	return ok
}

func (w *world) Remove(e Entity, kind ComponentKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeLocked(e, kind)
}

func (w *world) removeLocked(e Entity, kind ComponentKind) {
	switch kind {
	case KindTransform:
		delete(w.transforms, e)
	case KindModel:
		delete(w.models, e)
	case KindPointLight:
		delete(w.pointLights, e)
	case KindDirectionalLight:
		delete(w.directionalLights, e)
	case KindHeightMap:
		delete(w.heightMaps, e)
	case KindLightMarker:
		delete(w.markers, e)
	}
}

func (w *world) Has(e Entity, kind ComponentKind) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hasLocked(e, kind)
}

func (w *world) hasLocked(e Entity, kind ComponentKind) bool {
	var ok bool
	switch kind {
	case KindTransform:
		_, ok = w.transforms[e]
	case KindModel:
		_, ok = w.models[e]
	case KindPointLight:
		_, ok = w.pointLights[e]
	case KindDirectionalLight:
		_, ok = w.directionalLights[e]
	case KindHeightMap:
		_, ok = w.heightMaps[e]
	case KindLightMarker:
		_, ok = w.markers[e]
	}
	return ok
}

func (w *world) Query(filters ...Filter) []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []Entity
	for _, e := range w.order {
		if w.matchLocked(e, filters) {
			out = append(out, e)
		}
	}
	return out
}

func (w *world) matchLocked(e Entity, filters []Filter) bool {
	for _, f := range filters {
		for _, k := range f.kinds {
			if w.hasLocked(e, k) != f.with {
				return false
			}
		}
	}
	return true
}

// Filter restricts a Query by component presence.
type Filter struct {
	with  bool
	kinds []ComponentKind
}

// With matches entities carrying every listed component.
func With(kinds ...ComponentKind) Filter {
	return Filter{with: true, kinds: kinds}
}

// Without matches entities carrying none of the listed components.
func Without(kinds ...ComponentKind) Filter {
	return Filter{with: false, kinds: kinds}
}
