package gpu

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBackendImpl struct {
	mu     *sync.Mutex
	logger *log.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   PresentMode
	sampleCount   uint32
	forceFallback bool

	width  uint32
	height uint32

	msaaTexture *wgpu.Texture
	msaaView    *wgpuTextureView

	frameSurface *wgpu.Texture
	frameView    *wgpuTextureView
}

var _ Backend = &wgpuBackendImpl{}

// NewWGPUBackend creates a wgpu device bound to the given window surface.
// The calling goroutine is locked to its OS thread; every later call must come from it.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor (see wgpuglfw.GetSurfaceDescriptor)
//   - opts: functional options
//
// Returns:
//   - Backend: the backend, surface not yet configured
//   - error: error if no adapter or device could be obtained
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...WGPUBackendBuilderOption) (Backend, error) {
	runtime.LockOSThread()

	b := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		presentMode: PresentModeVSync,
		sampleCount: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logger.Default()
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallback,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = adapter

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, fmt.Errorf("surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	return b, nil
}

func (b *wgpuBackendImpl) SurfaceFormat() TextureFormat {
	return fromWGPUTextureFormat(b.surfaceFormat)
}

func (b *wgpuBackendImpl) SampleCount() uint32 {
	return b.sampleCount
}

func (b *wgpuBackendImpl) ConfigureSurface(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	presentMode := wgpu.PresentModeFifo
	if b.presentMode == PresentModeImmediate {
		presentMode = wgpu.PresentModeImmediate
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width, b.height = width, height

	if b.msaaView != nil {
		b.msaaView.Release()
		b.msaaTexture.Release()
		b.msaaView, b.msaaTexture = nil, nil
	}

	if b.sampleCount > 1 {
		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   b.sampleCount,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("create msaa texture: %w", err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return fmt.Errorf("create msaa view: %w", err)
		}
		b.msaaTexture = tex
		b.msaaView = &wgpuTextureView{label: "MSAA View", view: view}
	}

	b.logger.Debug("surface configured", "width", width, "height", height, "samples", b.sampleCount)
	return nil
}

func (b *wgpuBackendImpl) AcquireFrame() (Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return Frame{}, ErrFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return Frame{}, classifySurfaceError(err)
	}
	if surfaceTextureMissing(surfaceTexture) {
		return Frame{}, fmt.Errorf("%w: no surface texture", ErrSurfaceOutdated)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return Frame{}, fmt.Errorf("create swapchain view: %w", err)
	}

	b.frameSurface = surfaceTexture
	b.frameView = &wgpuTextureView{label: "Swapchain View", view: view}

	frame := Frame{
		View:   b.frameView,
		Width:  b.width,
		Height: b.height,
	}
	if b.msaaView != nil {
		frame.View = b.msaaView
		frame.ResolveTarget = b.frameView
	}
	return frame, nil
}

// classifySurfaceError maps an acquire failure onto the surface sentinels. The binding drops the
// WGPUSurfaceTexture status and only reports a message, so the status is recovered from the status names
// it carries. Device loss and out of memory stay unclassified and are fatal.
func classifySurfaceError(err error) error {
	msg := strings.ToLower(err.Error())
	has := func(s wgpu.SurfaceGetCurrentTextureStatus) bool {
		return strings.Contains(msg, s.String())
	}
	switch {
	case has(wgpu.SurfaceGetCurrentTextureStatusDeviceLost), has(wgpu.SurfaceGetCurrentTextureStatusOutOfMemory):
		return fmt.Errorf("acquire surface texture: %w", err)
	case has(wgpu.SurfaceGetCurrentTextureStatusTimeout):
		return fmt.Errorf("%w: %v", ErrSurfaceTimeout, err)
	case has(wgpu.SurfaceGetCurrentTextureStatusOutdated):
		return fmt.Errorf("%w: %v", ErrSurfaceOutdated, err)
	case has(wgpu.SurfaceGetCurrentTextureStatusLost):
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	default:
		return fmt.Errorf("acquire surface texture: %w", err)
	}
}

// surfaceTextureMissing reports a texture whose handle is null. wgpu-native returns one without an error
// for every non-success status the binding does not surface.
func surfaceTextureMissing(t *wgpu.Texture) bool {
	if t == nil {
		return true
	}
	ref := reflect.ValueOf(t).Elem().FieldByName("ref")
	return ref.IsValid() && ref.Kind() == reflect.Pointer && ref.IsNil()
}

func (b *wgpuBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackendImpl) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toWGPUBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %q: %w", desc.Label, err)
	}
	return &wgpuBuffer{label: desc.Label, buf: buf, size: desc.Size, usage: desc.Usage}, nil
}

func (b *wgpuBackendImpl) WriteBuffer(buf Buffer, offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	b.queue.WriteBuffer(unwrapBuffer(buf), offset, data)
}

func (b *wgpuBackendImpl) CreateTexture(desc TextureDescriptor) (Texture, error) {
	layers := max(desc.Size.DepthOrArrayLayers, 1)
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: max(desc.MipLevelCount, 1),
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     toWGPUTextureDimension(desc.Dimension),
		Format:        toWGPUTextureFormat(desc.Format),
		Usage:         toWGPUTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}
	d := desc
	d.Size.DepthOrArrayLayers = layers
	return &wgpuTexture{desc: d, tex: tex}, nil
}

func (b *wgpuBackendImpl) WriteTexture(write TextureWrite) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  unwrapTexture(write.Texture),
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: write.ArrayLayer},
			Aspect:   wgpu.TextureAspectAll,
		},
		write.Data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  write.BytesPerRow,
			RowsPerImage: write.Height,
		},
		&wgpu.Extent3D{
			Width:              write.Width,
			Height:             write.Height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (b *wgpuBackendImpl) CreateSampler(desc SamplerDescriptor) (Sampler, error) {
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toWGPUAddressMode(desc.AddressModeU),
		AddressModeV:  toWGPUAddressMode(desc.AddressModeV),
		AddressModeW:  toWGPUAddressMode(desc.AddressModeW),
		MagFilter:     toWGPUFilterMode(desc.MagFilter),
		MinFilter:     toWGPUFilterMode(desc.MinFilter),
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       toWGPUCompareFunction(desc.Compare),
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler %q: %w", desc.Label, err)
	}
	return &wgpuSampler{label: desc.Label, samp: samp}, nil
}

func (b *wgpuBackendImpl) CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entries = append(entries, toWGPULayoutEntry(e))
	}
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group layout %q: %w", desc.Label, err)
	}
	return &wgpuBindGroupLayout{label: desc.Label, layout: layout, entries: desc.Entries}, nil
}

func (b *wgpuBackendImpl) CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			entry.Buffer = unwrapBuffer(e.Buffer)
			entry.Offset = e.Offset
			entry.Size = e.Size
			if entry.Size == 0 {
				entry.Size = wgpu.WholeSize
			}
		case e.TextureView != nil:
			entry.TextureView = unwrapTextureView(e.TextureView)
		case e.Sampler != nil:
			entry.Sampler = unwrapSampler(e.Sampler)
		}
		entries = append(entries, entry)
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  unwrapBindGroupLayout(desc.Layout),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group %q: %w", desc.Label, err)
	}
	return &wgpuBindGroup{label: desc.Label, group: group}, nil
}

func (b *wgpuBackendImpl) CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %q: %w", desc.Label, err)
	}
	defer module.Release()

	layouts := make([]*wgpu.BindGroupLayout, 0, len(desc.BindGroupLayouts))
	for _, l := range desc.BindGroupLayouts {
		layouts = append(layouts, unwrapBindGroupLayout(l))
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout %q: %w", desc.Label, err)
	}
	defer pipelineLayout.Release()

	vertexBuffers := make([]wgpu.VertexBufferLayout, 0, len(desc.VertexBuffers))
	for _, vb := range desc.VertexBuffers {
		vertexBuffers = append(vertexBuffers, toWGPUVertexBufferLayout(vb))
	}

	wdesc := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntry,
			Buffers:    vertexBuffers,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toWGPUTopology(desc.Primitive.Topology),
			FrontFace: toWGPUFrontFace(desc.Primitive.FrontFace),
			CullMode:  toWGPUCullMode(desc.Primitive.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: max(desc.SampleCount, 1),
			Mask:  0xFFFFFFFF,
		},
	}

	if desc.FragmentEntry != "" {
		targets := make([]wgpu.ColorTargetState, 0, len(desc.Targets))
		for _, t := range desc.Targets {
			state := wgpu.ColorTargetState{
				Format:    toWGPUTextureFormat(t.Format),
				WriteMask: wgpu.ColorWriteMaskAll,
			}
			if t.Blend != nil {
				state.Blend = toWGPUBlendState(*t.Blend)
			}
			targets = append(targets, state)
		}
		wdesc.Fragment = &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntry,
			Targets:    targets,
		}
	}

	if ds := desc.DepthStencil; ds != nil {
		wdesc.DepthStencil = &wgpu.DepthStencilState{
			Format:              toWGPUTextureFormat(ds.Format),
			DepthWriteEnabled:   ds.DepthWriteEnabled,
			DepthCompare:        toWGPUCompareFunction(ds.DepthCompare),
			DepthBias:           ds.DepthBias,
			DepthBiasSlopeScale: ds.DepthBiasSlopeScale,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(wdesc)
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %q: %w", desc.Label, err)
	}
	return &wgpuRenderPipeline{label: desc.Label, pipeline: created, groups: len(desc.BindGroupLayouts)}, nil
}

func (b *wgpuBackendImpl) CreateCommandEncoder(label string) (CommandEncoder, error) {
	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	return &wgpuCommandEncoder{encoder: encoder}, nil
}

func (b *wgpuBackendImpl) Submit(buffers ...CommandBuffer) {
	cbs := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for _, cb := range buffers {
		cbs = append(cbs, cb.(*wgpuCommandBuffer).cb)
	}
	b.queue.Submit(cbs...)
	for _, cb := range buffers {
		cb.Release()
	}
}

func (b *wgpuBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.msaaView != nil {
		b.msaaView.Release()
		b.msaaTexture.Release()
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameSurface.Release()
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
