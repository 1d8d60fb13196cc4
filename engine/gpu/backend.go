package gpu

// Resource is implemented by every GPU object the backend hands out.
type Resource interface {
	// Label returns the debug label given at creation.
	Label() string

	// Release frees the underlying GPU object. Releasing twice is a no-op.
	Release()
}

type Buffer interface {
	Resource
	Size() uint64
	Usage() BufferUsage
}

type Texture interface {
	Resource
	Width() uint32
	Height() uint32
	Layers() uint32
	Format() TextureFormat

	// CreateView creates a view of the texture. A nil descriptor views the whole texture.
	CreateView(desc *TextureViewDescriptor) (TextureView, error)
}

type TextureView interface {
	Resource
}

type Sampler interface {
	Resource
}

type BindGroupLayout interface {
	Resource
	Entries() []BindGroupLayoutEntry
}

type BindGroup interface {
	Resource
}

type RenderPipeline interface {
	Resource

	// GroupCount returns the number of bind group layouts the pipeline was created with.
	GroupCount() int
}

// Frame is the swapchain image acquired for one frame.
type Frame struct {
	// View is the color attachment every main pass renders into. With MSAA this is the multisampled
	// texture and ResolveTarget is the swapchain view; otherwise it is the swapchain view itself.
	View          TextureView
	ResolveTarget TextureView
	Width         uint32
	Height        uint32
}

// Backend is the GPU device, queue and surface the renderer drives.
type Backend interface {
	// SurfaceFormat returns the swapchain color format chosen at ConfigureSurface.
	SurfaceFormat() TextureFormat

	// SampleCount returns the main color/depth attachment sample count.
	SampleCount() uint32

	// ConfigureSurface (re)creates the swapchain at the given size.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	//
	// Returns:
	//   - error: error if the surface cannot be configured
	ConfigureSurface(width, height uint32) error

	// AcquireFrame obtains the next swapchain image.
	//
	// Returns:
	//   - Frame: the views to render into
	//   - error: ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, or a fatal error
	AcquireFrame() (Frame, error)

	// Present shows the acquired frame and releases it.
	Present()

	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// WriteBuffer queues a CPU to buffer write. It is ordered before any later Submit.
	WriteBuffer(buf Buffer, offset uint64, data []byte)

	CreateTexture(desc TextureDescriptor) (Texture, error)
	WriteTexture(write TextureWrite)
	CreateSampler(desc SamplerDescriptor) (Sampler, error)
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Submit executes recorded command buffers in order.
	Submit(buffers ...CommandBuffer)

	// Release frees the device, surface and every backend-owned attachment.
	Release()
}

type CommandBuffer interface {
	Resource
}

type CommandEncoder interface {
	CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset uint64, size uint64)
	BeginRenderPass(desc RenderPassDescriptor) RenderPassEncoder
	Finish() (CommandBuffer, error)
	Release()
}

type RenderPassEncoder interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer, offset, size uint64)
	SetIndexBuffer(buf Buffer, format IndexFormat, offset, size uint64)
	SetScissorRect(x, y, width, height uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End()
}
