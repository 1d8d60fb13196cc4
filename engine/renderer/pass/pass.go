// Package pass holds the render passes of a frame: the shadow and environment pre-passes and the main
// sequence skybox, model, water surface, light debug and UI. Every pass records into the frame's single
// command encoder and reads only the frame snapshot and offset map.
package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/instancing"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/Carmen-Shannon/oxy-frame/engine/ui"
)

// Pass records one or more render passes into the frame encoder.
type Pass interface {
	// Name returns the render pass label.
	Name() string

	// Render writes the pass's private uniforms and records its render passes.
	//
	// Parameters:
	//   - f: the frame being recorded
	//
	// Returns:
	//   - error: error if a per-frame GPU object cannot be created
	Render(f *Frame) error

	// Release frees every GPU object the pass owns. Shared bind groups stay with their owner.
	Release()
}

// Bindable is a bind group with its layout, such as a bind_group_provider.Uniform.
type Bindable interface {
	Layout() gpu.BindGroupLayout
	BindGroup() gpu.BindGroup
}

// HeightMapSource resolves height map handles, usually an *asset.Store[heightmap.HeightMap].
type HeightMapSource interface {
	Get(h asset.Handle[heightmap.HeightMap]) (heightmap.HeightMap, bool)
}

// Shared are the bind groups and layouts owned by the frame orchestrator and read by passes.
type Shared struct {
	Camera    Bindable
	Lights    Bindable
	Shadow    Bindable
	Materials *material.Layout
}

// Frame is the state of one frame while passes record.
type Frame struct {
	Backend gpu.Backend
	Encoder gpu.CommandEncoder

	// Color is the main color attachment, Resolve its MSAA resolve target or nil.
	Color   gpu.TextureView
	Resolve gpu.TextureView
	Depth   gpu.TextureView
	Width   uint32
	Height  uint32

	// Camera is the camera uniform value written this frame.
	Camera     camera.GPUCameraUniform
	Snapshot   scene.Snapshot
	Offsets    *instancing.OffsetMap
	Models     instancing.ModelSource
	HeightMaps HeightMapSource
	UI         *ui.DrawList
	Time       float32

	// Passes are the recorded render pass labels in recording order.
	Passes []string
	// Draws counts draw calls.
	Draws int
}

// Begin starts a render pass and records its label.
func (f *Frame) Begin(desc gpu.RenderPassDescriptor) gpu.RenderPassEncoder {
	f.Passes = append(f.Passes, desc.Label)
	return f.Encoder.BeginRenderPass(desc)
}

// colorAttachment targets the main color view with its resolve target.
func (f *Frame) colorAttachment(load gpu.LoadOp, clear gpu.Color) gpu.RenderPassColorAttachment {
	return gpu.RenderPassColorAttachment{
		View:          f.Color,
		ResolveTarget: f.Resolve,
		LoadOp:        load,
		StoreOp:       gpu.StoreOpStore,
		ClearValue:    clear,
	}
}

// depthAttachment targets the shared depth view.
func (f *Frame) depthAttachment(load gpu.LoadOp) *gpu.RenderPassDepthStencilAttachment {
	return &gpu.RenderPassDepthStencilAttachment{
		View:            f.Depth,
		DepthLoadOp:     load,
		DepthStoreOp:    gpu.StoreOpStore,
		DepthClearValue: 1,
	}
}

// eachRange calls draw for every uploaded model with a non-empty range of category c, in upload order.
func (f *Frame) eachRange(c scene.Category, draw func(m model.Model, r instancing.Range)) {
	if f.Offsets == nil || f.Models == nil {
		return
	}
	for _, h := range f.Offsets.Handles() {
		r, ok := f.Offsets.Range(h, c)
		if !ok || r.Empty() {
			continue
		}
		m, ok := f.Models.Get(h)
		if !ok {
			continue
		}
		draw(m, r)
		f.Draws += len(m.Meshes())
	}
}

// surface is a snapshot surface with its loaded height map.
type surface struct {
	scene.Surface
	heightMap heightmap.HeightMap
}

// surfaces returns the snapshot surfaces whose height map is loaded, in snapshot order.
// The environment and water surface passes index their per-surface resources by position in this list.
func (f *Frame) surfaces() []surface {
	if f.HeightMaps == nil {
		return nil
	}
	var out []surface
	for _, s := range f.Snapshot.Surfaces {
		if hm, ok := f.HeightMaps.Get(s.HeightMap); ok {
			out = append(out, surface{Surface: s, heightMap: hm})
		}
	}
	return out
}

func mustBindable(pass, group string, b Bindable) {
	if b == nil {
		panic(fmt.Sprintf("pass: %s requires the %s bind group", pass, group))
	}
}
