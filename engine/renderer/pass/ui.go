package pass

import (
	"math"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/ui"
)

// minUIBuffer is the smallest UI vertex or index buffer in bytes.
const minUIBuffer = 4096

// UIPass draws the frame's UI draw list over everything else, one scissored draw per command.
// Depth is attached and loaded but neither tested nor written.
type UIPass struct {
	backend    gpu.Backend
	projection *bind_group_provider.Uniform[ui.GPUProjection]
	texture    gpu.Texture
	view       gpu.TextureView
	sampler    gpu.Sampler
	binding    bind_group_provider.BindGroupProvider
	pipeline   pipeline.Pipeline
	vertices   gpu.Buffer
	indices    gpu.Buffer
}

var _ Pass = &UIPass{}

// NewUIPass uploads the font atlas, or a white texel without a font, and builds the pipeline.
//
// Parameters:
//   - backend: the GPU backend
//   - opts: variadic list of PassBuilderOption functions, WithFont selects the atlas
//
// Returns:
//   - *UIPass: the pass
//   - error: error if a GPU object, the shader or the pipeline cannot be created
func NewUIPass(backend gpu.Backend, opts ...PassBuilderOption) (*UIPass, error) {
	cfg := newConfig(opts)
	p := &UIPass{backend: backend}

	atlas := common.SolidTexture(255, 255, 255, 255)
	if cfg.font != nil {
		atlas = cfg.font.Atlas
	}

	var err error
	if p.projection, err = bind_group_provider.NewUniform(backend, "UI Projection", gpu.ShaderStageVertex, ui.GPUProjection{}); err != nil {
		return nil, err
	}
	if p.texture, p.view, err = bind_group_provider.UploadTexture(backend, "UI Atlas",
		gpu.TextureFormatRGBA8Unorm, gpu.TextureViewDimension2D, atlas); err != nil {
		p.Release()
		return nil, err
	}
	if p.sampler, err = backend.CreateSampler(gpu.SamplerDescriptor{
		Label:        "UI Sampler",
		AddressModeU: gpu.AddressModeClampToEdge,
		AddressModeV: gpu.AddressModeClampToEdge,
		AddressModeW: gpu.AddressModeClampToEdge,
		MagFilter:    gpu.FilterModeNearest,
		MinFilter:    gpu.FilterModeNearest,
	}); err != nil {
		p.Release()
		return nil, err
	}
	if p.binding, err = bind_group_provider.NewTextureBinding(backend, "UI Atlas",
		p.view, p.sampler, gpu.TextureSampleTypeFloat, gpu.TextureViewDimension2D); err != nil {
		p.Release()
		return nil, err
	}

	p.pipeline, err = buildPipeline(backend, cfg, "UI", "ui.wgsl", nil,
		pipeline.WithDepthCompare(gpu.CompareFunctionAlways),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithBlendEnabled(true),
		pipeline.WithColorFormats(backend.SurfaceFormat()),
		pipeline.WithSampleCount(backend.SampleCount()),
		pipeline.WithBindGroupLayouts(p.projection.Layout(), p.binding.BindGroupLayout()),
		pipeline.WithVertexBuffers(ui.VertexLayout()),
	)
	if err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// ensure returns buf when it holds size bytes, otherwise a doubled replacement. The old buffer is released.
func (p *UIPass) ensure(buf gpu.Buffer, label string, usage gpu.BufferUsage, size uint64) (gpu.Buffer, error) {
	if buf != nil && buf.Size() >= size {
		return buf, nil
	}
	capacity := uint64(minUIBuffer)
	if buf != nil {
		capacity = buf.Size()
	}
	for capacity < size {
		capacity *= 2
	}
	next, err := p.backend.CreateBuffer(gpu.BufferDescriptor{Label: label, Size: capacity, Usage: usage | gpu.BufferUsageCopyDst})
	if err != nil {
		return nil, err
	}
	if buf != nil {
		buf.Release()
	}
	return next, nil
}

// Scissor converts a clip rect to a scissor rectangle inside a width x height framebuffer.
//
// Parameters:
//   - r: the clip rect in pixels
//   - width, height: the framebuffer size
//
// Returns:
//   - [4]uint32: x, y, width, height
//   - bool: false when nothing of r is visible
func Scissor(r ui.Rect, width, height uint32) ([4]uint32, bool) {
	x0 := common.Clamp(float32(math.Floor(float64(r.Min[0]))), 0, float32(width))
	y0 := common.Clamp(float32(math.Floor(float64(r.Min[1]))), 0, float32(height))
	x1 := common.Clamp(float32(math.Ceil(float64(r.Max[0]))), 0, float32(width))
	y1 := common.Clamp(float32(math.Ceil(float64(r.Max[1]))), 0, float32(height))
	if x1 <= x0 || y1 <= y0 {
		return [4]uint32{}, false
	}
	return [4]uint32{uint32(x0), uint32(y0), uint32(x1 - x0), uint32(y1 - y0)}, true
}

func (p *UIPass) Name() string {
	return "UI"
}

func (p *UIPass) Render(f *Frame) error {
	dl := f.UI
	hasGeometry := dl != nil && !dl.Empty()
	if hasGeometry {
		var err error
		vertexData := ui.MarshalVertices(dl.Vertices)
		indexData := ui.MarshalIndices(dl.Indices)
		if p.vertices, err = p.ensure(p.vertices, "UI Vertices", gpu.BufferUsageVertex, uint64(len(vertexData))); err != nil {
			return err
		}
		if p.indices, err = p.ensure(p.indices, "UI Indices", gpu.BufferUsageIndex, uint64(len(indexData))); err != nil {
			return err
		}
		f.Backend.WriteBuffer(p.vertices, 0, vertexData)
		f.Backend.WriteBuffer(p.indices, 0, indexData)
		p.projection.Write(f.Backend, ui.ProjectionFor(float32(f.Width), float32(f.Height)))
	}

	rp := f.Begin(gpu.RenderPassDescriptor{
		Label:                  p.Name(),
		ColorAttachments:       []gpu.RenderPassColorAttachment{f.colorAttachment(gpu.LoadOpLoad, gpu.Color{})},
		DepthStencilAttachment: f.depthAttachment(gpu.LoadOpLoad),
	})
	if hasGeometry {
		rp.SetPipeline(p.pipeline.RenderPipeline())
		rp.SetBindGroup(0, p.projection.BindGroup())
		rp.SetBindGroup(1, p.binding.BindGroup())
		rp.SetVertexBuffer(0, p.vertices, 0, gpu.WholeSize)
		rp.SetIndexBuffer(p.indices, gpu.IndexFormatUint32, 0, gpu.WholeSize)
		for _, cmd := range dl.Commands {
			s, ok := Scissor(cmd.ClipRect, f.Width, f.Height)
			if !ok || cmd.ElemCount == 0 {
				continue
			}
			rp.SetScissorRect(s[0], s[1], s[2], s[3])
			rp.DrawIndexed(cmd.ElemCount, 1, cmd.IndexOffset, 0, 0)
			f.Draws++
		}
	}
	rp.End()
	return nil
}

func (p *UIPass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.binding != nil {
		p.binding.Release()
		p.binding = nil
	}
	if p.projection != nil {
		p.projection.Release()
		p.projection = nil
	}
	for _, r := range []gpu.Resource{p.vertices, p.indices, p.sampler, p.view, p.texture} {
		if r != nil {
			r.Release()
		}
	}
	p.vertices, p.indices, p.sampler, p.view, p.texture = nil, nil, nil, nil, nil
}
