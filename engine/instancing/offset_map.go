// Package instancing uploads the per-instance model matrices of a frame snapshot and records where each
// model's instances landed. Offsets are instance counts, never bytes; every pass draws from the same map.
package instancing

import (
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
)

// Range is a contiguous run of instances in a model's instance buffer.
type Range struct {
	First uint32
	Count uint32
}

// End returns the exclusive end of the range.
func (r Range) End() uint32 {
	return r.First + r.Count
}

// Empty reports whether the range holds no instances.
func (r Range) Empty() bool {
	return r.Count == 0
}

// Entry is the layout of one model for the frame: opaque instances first, then light markers.
type Entry struct {
	Count   uint32
	Opaque  Range
	Markers Range
}

// Range returns the sub-range of a category.
func (e Entry) Range(c scene.Category) Range {
	if c == scene.CategoryLightMarker {
		return e.Markers
	}
	return e.Opaque
}

// OffsetMap maps each uploaded model handle to its instance layout for one frame.
// Handles whose model is not loaded, or that have no instances, are absent.
type OffsetMap struct {
	entries map[asset.Handle[model.Model]]Entry
	order   []asset.Handle[model.Model]
}

// NewOffsetMap creates an empty map.
func NewOffsetMap() *OffsetMap {
	return &OffsetMap{entries: make(map[asset.Handle[model.Model]]Entry)}
}

func (m *OffsetMap) put(h asset.Handle[model.Model], e Entry) {
	if _, ok := m.entries[h]; !ok {
		m.order = append(m.order, h)
	}
	m.entries[h] = e
}

// Entry returns the layout of a handle.
//
// Parameters:
//   - h: the model handle
//
// Returns:
//   - Entry: the instance layout
//   - bool: false when nothing was uploaded for the handle this frame
func (m *OffsetMap) Entry(h asset.Handle[model.Model]) (Entry, bool) {
	e, ok := m.entries[h]
	return e, ok
}

// Count returns the number of instances uploaded for a handle, 0 when absent.
func (m *OffsetMap) Count(h asset.Handle[model.Model]) uint32 {
	return m.entries[h].Count
}

// Range returns the instance range of one category of a handle.
func (m *OffsetMap) Range(h asset.Handle[model.Model], c scene.Category) (Range, bool) {
	e, ok := m.entries[h]
	if !ok {
		return Range{}, false
	}
	return e.Range(c), true
}

// Handles returns the uploaded handles in upload order.
func (m *OffsetMap) Handles() []asset.Handle[model.Model] {
	return m.order
}

// Len returns the number of uploaded handles.
func (m *OffsetMap) Len() int {
	return len(m.order)
}

// Total returns the number of uploaded instances across every handle.
func (m *OffsetMap) Total() int {
	n := 0
	for _, e := range m.entries {
		n += int(e.Count)
	}
	return n
}

// Counts returns handle to instance count, the form frame reports and tests compare against.
func (m *OffsetMap) Counts() map[asset.Handle[model.Model]]uint32 {
	out := make(map[asset.Handle[model.Model]]uint32, len(m.entries))
	for h, e := range m.entries {
		out[h] = e.Count
	}
	return out
}
