package gpu

type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

type Extent3D struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
}

type TextureDescriptor struct {
	Label         string
	Size          Extent3D
	Format        TextureFormat
	Dimension     TextureDimension
	Usage         TextureUsage
	MipLevelCount uint32
	SampleCount   uint32
}

// TextureViewDescriptor selects a sub-resource of a texture. A nil descriptor views the whole texture
// with the dimension implied by its creation descriptor.
type TextureViewDescriptor struct {
	Label           string
	Dimension       TextureViewDimension
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// TextureWrite describes a CPU to texture upload into one array layer.
type TextureWrite struct {
	Texture     Texture
	ArrayLayer  uint32
	Data        []byte
	BytesPerRow uint32
	Width       uint32
	Height      uint32
}

type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	Compare      CompareFunction
}

// BindGroupLayoutEntry declares one binding slot. Exactly one of Buffer, Texture or Sampler is set.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Buffer     *BufferBindingLayout
	Texture    *TextureBindingLayout
	Sampler    *SamplerBindingLayout
}

type BufferBindingLayout struct {
	Type           BufferBindingType
	MinBindingSize uint64
}

type TextureBindingLayout struct {
	SampleType    TextureSampleType
	ViewDimension TextureViewDimension
	Multisampled  bool
}

type SamplerBindingLayout struct {
	Type SamplerBindingType
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds one resource to a slot. Exactly one of Buffer, TextureView or Sampler is set.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	Offset      uint64
	Size        uint64
	TextureView TextureView
	Sampler     Sampler
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

type VertexBufferLayout struct {
	ArrayStride uint64
	StepMode    VertexStepMode
	Attributes  []VertexAttribute
}

type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
}

type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// AlphaBlending is standard premultiplied-free "over" blending.
var AlphaBlending = BlendState{
	Color: BlendComponent{SrcFactor: BlendFactorSrcAlpha, DstFactor: BlendFactorOneMinusSrcAlpha},
	Alpha: BlendComponent{SrcFactor: BlendFactorOne, DstFactor: BlendFactorOneMinusSrcAlpha},
}

type ColorTargetState struct {
	Format TextureFormat
	Blend  *BlendState
}

type DepthStencilState struct {
	Format              TextureFormat
	DepthWriteEnabled   bool
	DepthCompare        CompareFunction
	DepthBias           int32
	DepthBiasSlopeScale float32
}

type PrimitiveState struct {
	Topology  PrimitiveTopology
	FrontFace FrontFace
	CullMode  CullMode
}

// RenderPipelineDescriptor describes a complete render pipeline. The WGSL source holds both entry points.
// A nil Fragment creates a depth-only pipeline.
type RenderPipelineDescriptor struct {
	Label            string
	Source           string
	VertexEntry      string
	FragmentEntry    string
	BindGroupLayouts []BindGroupLayout
	VertexBuffers    []VertexBufferLayout
	Primitive        PrimitiveState
	DepthStencil     *DepthStencilState
	Targets          []ColorTargetState
	SampleCount      uint32
}

type RenderPassColorAttachment struct {
	View          TextureView
	ResolveTarget TextureView
	LoadOp        LoadOp
	StoreOp       StoreOp
	ClearValue    Color
}

type RenderPassDepthStencilAttachment struct {
	View            TextureView
	DepthLoadOp     LoadOp
	DepthStoreOp    StoreOp
	DepthClearValue float32
}

type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
}
