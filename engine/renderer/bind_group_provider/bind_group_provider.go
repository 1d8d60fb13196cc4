package bind_group_provider

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// entries describes every binding slot of the group. Uniform buffer slots without a buffer are
	// allocated by Init using the entry's MinBindingSize.
	entries []gpu.BindGroupLayoutEntry

	// The following fields are GPU allocated resources. ownedBuffers records which buffers were allocated by
	// Init and must be released with the provider; buffers handed in by callers belong to the caller.

	bindGroup       gpu.BindGroup
	bindGroupLayout gpu.BindGroupLayout
	ownsLayout      bool
	buffers         map[int]gpu.Buffer
	ownedBuffers    map[int]bool
	textureViews    map[int]gpu.TextureView
	samplers        map[int]gpu.Sampler
}

// BindGroupProvider owns one bind group together with its layout and the resources bound into it.
//
// Usage pattern:
//  1. Create the provider with its layout entries and any externally owned resources
//  2. Call Init(backend) once to create the layout, missing uniform buffers and the bind group
//  3. Queue writes against Buffer(binding) through BufferWrite batches
//  4. Bind BindGroup() at the group index the pipeline layout declares
//  5. After swapping a resource with SetTextureView/SetSampler/SetBuffer, call Rebind(backend)
type BindGroupProvider interface {
	// Release releases the bind group and every resource the provider allocated itself.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Entries returns the layout entries the provider was created with.
	//
	// Returns:
	//   - []gpu.BindGroupLayoutEntry: the entries sorted by binding
	Entries() []gpu.BindGroupLayoutEntry

	// BindGroup returns the created bind group. Returns nil before Init.
	//
	// Returns:
	//   - gpu.BindGroup: the bind group or nil
	BindGroup() gpu.BindGroup

	// BindGroupLayout returns the layout, either supplied or created by Init.
	//
	// Returns:
	//   - gpu.BindGroupLayout: the layout or nil
	BindGroupLayout() gpu.BindGroupLayout

	// Buffer returns the buffer bound at the given binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Buffer: the buffer or nil
	Buffer(binding int) gpu.Buffer

	// TextureView returns the texture view bound at the given binding, or nil.
	TextureView(binding int) gpu.TextureView

	// Sampler returns the sampler bound at the given binding, or nil.
	Sampler(binding int) gpu.Sampler

	// SetBuffer binds an externally owned buffer. Takes effect at the next Init or Rebind.
	SetBuffer(binding int, buf gpu.Buffer)

	// SetTextureView binds an externally owned texture view. Takes effect at the next Init or Rebind.
	SetTextureView(binding int, tv gpu.TextureView)

	// SetSampler binds an externally owned sampler. Takes effect at the next Init or Rebind.
	SetSampler(binding int, s gpu.Sampler)

	// Init creates the layout (unless one was supplied), allocates uniform buffers for unbound buffer
	// slots, and creates the bind group.
	//
	// Parameters:
	//   - backend: the GPU backend
	//
	// Returns:
	//   - error: error if a binding has no resource or a GPU object cannot be created
	Init(backend gpu.Backend) error

	// Rebind recreates the bind group from the currently bound resources, keeping the layout.
	//
	// Parameters:
	//   - backend: the GPU backend
	//
	// Returns:
	//   - error: error if the bind group cannot be created
	Rebind(backend gpu.Backend) error
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a provider. GPU objects are not created until Init.
//
// Parameters:
//   - label: a debug label
//   - options: functional options for entries, layout and resources
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]gpu.Buffer),
		ownedBuffers: make(map[int]bool),
		textureViews: make(map[int]gpu.TextureView),
		samplers:     make(map[int]gpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	sort.Slice(p.entries, func(i, j int) bool {
		return p.entries[i].Binding < p.entries[j].Binding
	})
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Entries() []gpu.BindGroupLayoutEntry {
	return p.entries
}

func (p *bindGroupProvider) BindGroup() gpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() gpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) gpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) gpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) gpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf gpu.Buffer) {
	if p.ownedBuffers[binding] {
		p.buffers[binding].Release()
		delete(p.ownedBuffers, binding)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv gpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s gpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) Init(backend gpu.Backend) error {
	if p.bindGroupLayout == nil {
		layout, err := backend.CreateBindGroupLayout(gpu.BindGroupLayoutDescriptor{
			Label:   p.label + " Layout",
			Entries: p.entries,
		})
		if err != nil {
			return err
		}
		p.bindGroupLayout = layout
		p.ownsLayout = true
	}

	for _, e := range p.entries {
		binding := int(e.Binding)
		if e.Buffer == nil || p.buffers[binding] != nil {
			continue
		}
		if e.Buffer.MinBindingSize == 0 {
			return fmt.Errorf("bind group %q: buffer binding %d has no buffer and no size", p.label, binding)
		}
		usage := gpu.BufferUsageUniform | gpu.BufferUsageCopyDst
		if e.Buffer.Type == gpu.BufferBindingTypeReadOnlyStorage {
			usage = gpu.BufferUsageStorage | gpu.BufferUsageCopyDst
		}
		buf, err := backend.CreateBuffer(gpu.BufferDescriptor{
			Label: fmt.Sprintf("%s Buffer %d", p.label, binding),
			Size:  e.Buffer.MinBindingSize,
			Usage: usage,
		})
		if err != nil {
			return err
		}
		p.buffers[binding] = buf
		p.ownedBuffers[binding] = true
	}

	return p.Rebind(backend)
}

func (p *bindGroupProvider) Rebind(backend gpu.Backend) error {
	entries := make([]gpu.BindGroupEntry, 0, len(p.entries))
	for _, e := range p.entries {
		binding := int(e.Binding)
		entry := gpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			entry.Buffer = p.buffers[binding]
			if entry.Buffer == nil {
				return fmt.Errorf("bind group %q: no buffer at binding %d", p.label, binding)
			}
			entry.Size = entry.Buffer.Size()
		case e.Texture != nil:
			entry.TextureView = p.textureViews[binding]
			if entry.TextureView == nil {
				return fmt.Errorf("bind group %q: no texture view at binding %d", p.label, binding)
			}
		case e.Sampler != nil:
			entry.Sampler = p.samplers[binding]
			if entry.Sampler == nil {
				return fmt.Errorf("bind group %q: no sampler at binding %d", p.label, binding)
			}
		}
		entries = append(entries, entry)
	}

	group, err := backend.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:   p.label,
		Layout:  p.bindGroupLayout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = group
	return nil
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for binding := range p.ownedBuffers {
		p.buffers[binding].Release()
		delete(p.buffers, binding)
	}
	clear(p.ownedBuffers)
	if p.ownsLayout && p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
