// Package gpu is the GPU API surface the render core is written against.
//
// Passes, stores and the frame orchestrator only see the interfaces and descriptors declared here.
// The wgpu implementation (NewWGPUBackend) translates them to cogentcore/webgpu calls, and
// gputest.Recorder provides an in-memory implementation that records every command for tests.
package gpu

// TextureFormat identifies a texel format.
type TextureFormat int

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatR32Float
	TextureFormatDepth24Plus
	TextureFormatDepth32Float
)

// IsDepth reports whether the format is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth24Plus || f == TextureFormatDepth32Float
}

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "rgba8unorm"
	case TextureFormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case TextureFormatBGRA8Unorm:
		return "bgra8unorm"
	case TextureFormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	case TextureFormatR32Float:
		return "r32float"
	case TextureFormatDepth24Plus:
		return "depth24plus"
	case TextureFormatDepth32Float:
		return "depth32float"
	default:
		return "undefined"
	}
}

// BufferUsage is a bit set of buffer usages.
type BufferUsage uint32

const (
	BufferUsageCopySrc BufferUsage = 1 << iota
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
)

// TextureUsage is a bit set of texture usages.
type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageRenderAttachment
)

// ShaderStage is a bit set of shader stages a binding is visible to.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

type TextureDimension int

const (
	TextureDimension2D TextureDimension = iota
	TextureDimension3D
)

type TextureViewDimension int

const (
	TextureViewDimension2D TextureViewDimension = iota
	TextureViewDimension2DArray
	TextureViewDimensionCube
)

type TextureSampleType int

const (
	TextureSampleTypeFloat TextureSampleType = iota
	TextureSampleTypeUnfilterableFloat
	TextureSampleTypeDepth
)

type SamplerBindingType int

const (
	SamplerBindingTypeFiltering SamplerBindingType = iota
	SamplerBindingTypeComparison
)

type BufferBindingType int

const (
	BufferBindingTypeUniform BufferBindingType = iota
	BufferBindingTypeReadOnlyStorage
)

type LoadOp int

const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

func (o LoadOp) String() string {
	if o == LoadOpLoad {
		return "load"
	}
	return "clear"
}

type StoreOp int

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
)

type CompareFunction int

const (
	CompareFunctionUndefined CompareFunction = iota
	CompareFunctionNever
	CompareFunctionLess
	CompareFunctionLessEqual
	CompareFunctionGreater
	CompareFunctionAlways
)

type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUnorm8x4
	VertexFormatUint32
)

// Size returns the byte size of one attribute of this format.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	default:
		return 4
	}
}

type VertexStepMode int

const (
	VertexStepModeVertex VertexStepMode = iota
	VertexStepModeInstance
)

type IndexFormat int

const (
	IndexFormatUint32 IndexFormat = iota
	IndexFormatUint16
)

type AddressMode int

const (
	AddressModeRepeat AddressMode = iota
	AddressModeClampToEdge
	AddressModeMirrorRepeat
)

type FilterMode int

const (
	FilterModeLinear FilterMode = iota
	FilterModeNearest
)

type BlendFactor int

const (
	BlendFactorOne BlendFactor = iota
	BlendFactorZero
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
)

// PresentMode selects the swapchain presentation strategy.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank (FIFO).
	PresentModeVSync PresentMode = iota
	// PresentModeImmediate presents without waiting and may tear.
	PresentModeImmediate
)

// WholeSize binds or writes a buffer from the given offset to its end.
const WholeSize = ^uint64(0)

// Color is a linear RGBA clear color.
type Color struct {
	R, G, B, A float64
}
