package bind_group_provider

import "github.com/Carmen-Shannon/oxy-frame/engine/gpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithEntries sets the layout entries of the bind group.
//
// Parameters:
//   - entries: one entry per binding slot
//
// Returns:
//   - BindGroupProviderOption: a function that appends the entries to this provider
func WithEntries(entries ...gpu.BindGroupLayoutEntry) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.entries = append(p.entries, entries...)
	}
}

// WithBindGroupLayout reuses an existing layout instead of creating one at Init.
// The layout stays owned by the caller. Its entries replace any set with WithEntries.
//
// Parameters:
//   - bgl: the bind group layout to use for this provider
//
// Returns:
//   - BindGroupProviderOption: a function that sets the bind group layout for this provider
func WithBindGroupLayout(bgl gpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
		p.entries = append([]gpu.BindGroupLayoutEntry(nil), bgl.Entries()...)
	}
}

// WithBuffer sets a caller-owned buffer for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf gpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithBuffers sets multiple caller-owned buffers keyed by binding index.
//
// Parameters:
//   - buffers: a map of binding indices to buffers to associate with this provider
//
// Returns:
//   - BindGroupProviderOption: a function that sets multiple buffers for this provider
func WithBuffers(buffers map[int]gpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		for binding, buf := range buffers {
			p.buffers[binding] = buf
		}
	}
}

// WithTextureView sets a caller-owned texture view for a specific binding index.
func WithTextureView(binding int, tv gpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = tv
	}
}

// WithSampler sets a caller-owned sampler for a specific binding index.
func WithSampler(binding int, s gpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
	}
}
