package light

import (
	"sync"

	"github.com/google/uuid"
)

// MaxShadowLayers is the number of layers of the shadow atlas.
const MaxShadowLayers = 16

// ShadowBinding is the shadow map state of one light. The zero value is Unassigned.
// Once Bound it keeps its layer for as long as the light lives.
type ShadowBinding struct {
	layer uint32
	bound bool
}

// Layer returns the bound layer.
//
// Returns:
//   - uint32: the atlas layer
//   - bool: false while Unassigned
func (b ShadowBinding) Layer() (uint32, bool) {
	return b.layer, b.bound
}

// Bound reports whether the binding has a layer.
func (b ShadowBinding) Bound() bool {
	return b.bound
}

// ShaderLayer returns the layer as the signed index shaders expect, -1 when Unassigned.
func (b ShadowBinding) ShaderLayer() int32 {
	if !b.bound {
		return -1
	}
	return int32(b.layer)
}

// ShadowLayers hands out shadow atlas layers to lights on first request.
// Layers of lights dropped by Retain are reused; a live light never changes layer.
type ShadowLayers struct {
	mu       *sync.Mutex
	capacity uint32
	next     uint32
	free     []uint32
	bindings map[uuid.UUID]ShadowBinding
}

// NewShadowLayers creates an allocator over capacity layers.
//
// Parameters:
//   - capacity: the number of atlas layers
//
// Returns:
//   - *ShadowLayers: the allocator
func NewShadowLayers(capacity uint32) *ShadowLayers {
	return &ShadowLayers{
		mu:       &sync.Mutex{},
		capacity: capacity,
		bindings: make(map[uuid.UUID]ShadowBinding),
	}
}

// Assign returns the light's binding, binding it to a free layer if it is still Unassigned.
// When every layer is taken the binding stays Unassigned and the light is simply not shadowed.
//
// Parameters:
//   - id: the light's entity id
//
// Returns:
//   - ShadowBinding: the current binding
func (s *ShadowLayers) Assign(id uuid.UUID) ShadowBinding {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bindings[id]; ok {
		return b
	}

	var layer uint32
	switch {
	case len(s.free) > 0:
		layer = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	case s.next < s.capacity:
		layer = s.next
		s.next++
	default:
		return ShadowBinding{}
	}

	b := ShadowBinding{layer: layer, bound: true}
	s.bindings[id] = b
	return b
}

// Binding returns the light's binding without assigning one.
func (s *ShadowLayers) Binding(id uuid.UUID) ShadowBinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindings[id]
}

// Retain forgets every bound light not in live.
//
// Parameters:
//   - live: the ids of lights still present in the scene
func (s *ShadowLayers) Retain(live map[uuid.UUID]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.bindings {
		if _, ok := live[id]; !ok {
			delete(s.bindings, id)
			s.free = append(s.free, b.layer)
		}
	}
}

// Len returns the number of bound lights.
func (s *ShadowLayers) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bindings)
}
