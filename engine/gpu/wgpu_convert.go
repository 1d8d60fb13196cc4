package gpu

import "github.com/cogentcore/webgpu/wgpu"

func toWGPUSize(size uint64) uint64 {
	if size == WholeSize {
		return wgpu.WholeSize
	}
	return size
}

func toWGPUTextureFormat(f TextureFormat) wgpu.TextureFormat {
	switch f {
	case TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case TextureFormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	case TextureFormatR32Float:
		return wgpu.TextureFormatR32Float
	case TextureFormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus
	case TextureFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatUndefined
	}
}

func fromWGPUTextureFormat(f wgpu.TextureFormat) TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return TextureFormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return TextureFormatRGBA8UnormSrgb
	case wgpu.TextureFormatBGRA8Unorm:
		return TextureFormatBGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return TextureFormatBGRA8UnormSrgb
	default:
		return TextureFormatUndefined
	}
}

func toWGPUBufferUsage(u BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	return out
}

func toWGPUTextureUsage(u TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func toWGPUShaderStage(s ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

func toWGPUTextureDimension(d TextureDimension) wgpu.TextureDimension {
	if d == TextureDimension3D {
		return wgpu.TextureDimension3D
	}
	return wgpu.TextureDimension2D
}

func toWGPUViewDimension(d TextureViewDimension) wgpu.TextureViewDimension {
	switch d {
	case TextureViewDimension2DArray:
		return wgpu.TextureViewDimension2DArray
	case TextureViewDimensionCube:
		return wgpu.TextureViewDimensionCube
	default:
		return wgpu.TextureViewDimension2D
	}
}

func toWGPULayoutEntry(e BindGroupLayoutEntry) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: toWGPUShaderStage(e.Visibility),
	}
	switch {
	case e.Buffer != nil:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		if e.Buffer.Type == BufferBindingTypeReadOnlyStorage {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		}
		entry.Buffer.MinBindingSize = e.Buffer.MinBindingSize
	case e.Texture != nil:
		entry.Texture.ViewDimension = toWGPUViewDimension(e.Texture.ViewDimension)
		entry.Texture.Multisampled = e.Texture.Multisampled
		switch e.Texture.SampleType {
		case TextureSampleTypeDepth:
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		case TextureSampleTypeUnfilterableFloat:
			entry.Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
		default:
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		}
	case e.Sampler != nil:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		if e.Sampler.Type == SamplerBindingTypeComparison {
			entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
		}
	}
	return entry
}

func toWGPUVertexBufferLayout(l VertexBufferLayout) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
	for _, a := range l.Attributes {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         toWGPUVertexFormat(a.Format),
			Offset:         a.Offset,
			ShaderLocation: a.ShaderLocation,
		})
	}
	step := wgpu.VertexStepModeVertex
	if l.StepMode == VertexStepModeInstance {
		step = wgpu.VertexStepModeInstance
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.ArrayStride,
		StepMode:    step,
		Attributes:  attrs,
	}
}

func toWGPUVertexFormat(f VertexFormat) wgpu.VertexFormat {
	switch f {
	case VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	case VertexFormatUnorm8x4:
		return wgpu.VertexFormatUnorm8x4
	default:
		return wgpu.VertexFormatUint32
	}
}

func toWGPUTopology(t PrimitiveTopology) wgpu.PrimitiveTopology {
	switch t {
	case PrimitiveTopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case PrimitiveTopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func toWGPUFrontFace(f FrontFace) wgpu.FrontFace {
	if f == FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func toWGPUCullMode(c CullMode) wgpu.CullMode {
	switch c {
	case CullModeFront:
		return wgpu.CullModeFront
	case CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func toWGPUCompareFunction(c CompareFunction) wgpu.CompareFunction {
	switch c {
	case CompareFunctionNever:
		return wgpu.CompareFunctionNever
	case CompareFunctionLess:
		return wgpu.CompareFunctionLess
	case CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case CompareFunctionGreater:
		return wgpu.CompareFunctionGreater
	case CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionUndefined
	}
}

func toWGPUAddressMode(m AddressMode) wgpu.AddressMode {
	switch m {
	case AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	case AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func toWGPUFilterMode(m FilterMode) wgpu.FilterMode {
	if m == FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func toWGPUBlendFactor(f BlendFactor) wgpu.BlendFactor {
	switch f {
	case BlendFactorZero:
		return wgpu.BlendFactorZero
	case BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	default:
		return wgpu.BlendFactorOne
	}
}

func toWGPUBlendState(b BlendState) *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: toWGPUBlendFactor(b.Color.SrcFactor),
			DstFactor: toWGPUBlendFactor(b.Color.DstFactor),
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: toWGPUBlendFactor(b.Alpha.SrcFactor),
			DstFactor: toWGPUBlendFactor(b.Alpha.DstFactor),
		},
	}
}

func toWGPULoadOp(o LoadOp) wgpu.LoadOp {
	if o == LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func toWGPUStoreOp(o StoreOp) wgpu.StoreOp {
	if o == StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func toWGPUIndexFormat(f IndexFormat) wgpu.IndexFormat {
	if f == IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}
