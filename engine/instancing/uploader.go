package instancing

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/charmbracelet/log"
)

// ErrCapacityExceeded is returned when one model has more instances in a frame than its instance buffer holds.
var ErrCapacityExceeded = errors.New("instancing: instance capacity exceeded")

const instanceSize = 64

// ModelSource resolves handles to loaded models, usually an *asset.Store[model.Model].
type ModelSource interface {
	Get(h asset.Handle[model.Model]) (model.Model, bool)
}

// Uploader writes a snapshot's model matrices into the instance buffers of their models.
// All matrices of a frame go into one staging buffer with a single write, then one copy per model
// moves each model's slice into place.
type Uploader struct {
	backend gpu.Backend
	logger  *log.Logger
	initial int

	staging gpu.Buffer
	host    []byte
	stats   Stats
}

// Stats describes the last Upload.
type Stats struct {
	Models    int
	Instances int
	Copies    int
	Skipped   int
}

// NewUploader creates an uploader. The staging buffer is created on the first non-empty upload.
//
// Parameters:
//   - backend: the GPU backend
//   - opts: variadic list of UploaderBuilderOption functions
//
// Returns:
//   - *Uploader: the uploader
func NewUploader(backend gpu.Backend, opts ...UploaderBuilderOption) *Uploader {
	u := &Uploader{backend: backend, initial: 256}
	for _, opt := range opts {
		opt(u)
	}
	if u.logger == nil {
		u.logger = logger.Default()
	}
	return u
}

type pending struct {
	handle asset.Handle[model.Model]
	model  model.Model
	offset uint64
	entry  Entry
}

// Upload lays out every loaded model group of snap, writes the staging bytes and records the copies
// into enc. Groups whose model is not loaded yet are skipped and left out of the map.
//
// Parameters:
//   - enc: the frame's command encoder, no render pass may be open
//   - snap: the frame snapshot
//   - models: resolves model handles
//
// Returns:
//   - *OffsetMap: the frame's instance layout
//   - error: ErrCapacityExceeded wrapped with the model name, or a staging allocation error
func (u *Uploader) Upload(enc gpu.CommandEncoder, snap scene.Snapshot, models ModelSource) (*OffsetMap, error) {
	offsets := NewOffsetMap()
	u.stats = Stats{}
	u.host = u.host[:0]

	var groups []pending
	for _, g := range snap.Groups {
		if g.Len() == 0 {
			continue
		}
		m, ok := models.Get(g.Model)
		if !ok {
			u.stats.Skipped++
			continue
		}
		if g.Len() > m.MaxInstances() {
			return nil, fmt.Errorf("%w: model %q has %d instances, capacity %d", ErrCapacityExceeded, m.Name(), g.Len(), m.MaxInstances())
		}

		entry := Entry{
			Count:   uint32(g.Len()),
			Opaque:  Range{First: 0, Count: uint32(len(g.Opaque))},
			Markers: Range{First: uint32(len(g.Opaque)), Count: uint32(len(g.Markers))},
		}
		p := pending{handle: g.Model, model: m, offset: uint64(len(u.host)), entry: entry}
		for _, inst := range g.Opaque {
			u.appendInstance(inst)
		}
		for _, inst := range g.Markers {
			u.appendInstance(inst)
		}
		groups = append(groups, p)
	}

	if len(groups) == 0 {
		return offsets, nil
	}
	if err := u.ensureStaging(uint64(len(u.host))); err != nil {
		return nil, err
	}
	u.backend.WriteBuffer(u.staging, 0, u.host)

	for _, p := range groups {
		size := uint64(p.entry.Count) * instanceSize
		enc.CopyBufferToBuffer(u.staging, p.offset, p.model.InstanceBuffer(), 0, size)
		offsets.put(p.handle, p.entry)
		u.stats.Copies++
		u.stats.Instances += int(p.entry.Count)
	}
	u.stats.Models = len(groups)
	return offsets, nil
}

func (u *Uploader) appendInstance(inst scene.Instance) {
	n := len(u.host)
	u.host = append(u.host, make([]byte, instanceSize)...)
	model.GPUInstance{Model: inst.Transform.Matrix()}.MarshalInto(u.host[n : n+instanceSize])
}

// ensureStaging grows the staging buffer to hold at least size bytes, doubling to amortise growth.
func (u *Uploader) ensureStaging(size uint64) error {
	if u.staging != nil && u.staging.Size() >= size {
		return nil
	}
	capacity := uint64(u.initial) * instanceSize
	if u.staging != nil {
		capacity = u.staging.Size() * 2
	}
	for capacity < size {
		capacity *= 2
	}

	buf, err := u.backend.CreateBuffer(gpu.BufferDescriptor{
		Label: "Instance Staging",
		Size:  capacity,
		Usage: gpu.BufferUsageCopySrc | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("instance staging buffer: %w", err)
	}
	if u.staging != nil {
		u.logger.Debug("instance staging grown", "from", u.staging.Size(), "to", capacity)
		u.staging.Release()
	}
	u.staging = buf
	return nil
}

// Stats returns the counters of the last Upload.
func (u *Uploader) Stats() Stats {
	return u.stats
}

// Release frees the staging buffer.
func (u *Uploader) Release() {
	if u.staging != nil {
		u.staging.Release()
		u.staging = nil
	}
}
