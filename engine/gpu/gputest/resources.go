package gputest

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
)

type Buffer struct {
	label    string
	usage    gpu.BufferUsage
	released bool

	// Data is the current buffer content as the GPU would see it after submission.
	Data []byte
}

func (b *Buffer) Label() string          { return b.label }
func (b *Buffer) Size() uint64           { return uint64(len(b.Data)) }
func (b *Buffer) Usage() gpu.BufferUsage { return b.usage }
func (b *Buffer) Released() bool         { return b.released }
func (b *Buffer) Release()               { b.released = true }

type Texture struct {
	desc     gpu.TextureDescriptor
	released bool
	Views    []*TextureView
}

func (t *Texture) Label() string                     { return t.desc.Label }
func (t *Texture) Width() uint32                     { return t.desc.Size.Width }
func (t *Texture) Height() uint32                    { return t.desc.Size.Height }
func (t *Texture) Layers() uint32                    { return t.desc.Size.DepthOrArrayLayers }
func (t *Texture) Format() gpu.TextureFormat         { return t.desc.Format }
func (t *Texture) Descriptor() gpu.TextureDescriptor { return t.desc }
func (t *Texture) Released() bool                    { return t.released }
func (t *Texture) Release()                          { t.released = true }

func (t *Texture) CreateView(desc *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	v := &TextureView{label: t.desc.Label + " View", Texture: t}
	if desc != nil {
		if desc.BaseArrayLayer+max(desc.ArrayLayerCount, 1) > t.desc.Size.DepthOrArrayLayers {
			return nil, fmt.Errorf("gputest: view %q selects layers beyond %d", desc.Label, t.desc.Size.DepthOrArrayLayers)
		}
		v.label = desc.Label
		v.Layer = desc.BaseArrayLayer
		v.Dimension = desc.Dimension
	}
	t.Views = append(t.Views, v)
	return v, nil
}

type TextureView struct {
	label     string
	released  bool
	Texture   *Texture
	Layer     uint32
	Dimension gpu.TextureViewDimension
}

func (v *TextureView) Label() string  { return v.label }
func (v *TextureView) Released() bool { return v.released }
func (v *TextureView) Release()       { v.released = true }

type Sampler struct {
	label    string
	released bool
	Desc     gpu.SamplerDescriptor
}

func (s *Sampler) Label() string { return s.label }
func (s *Sampler) Release()      { s.released = true }

type BindGroupLayout struct {
	label    string
	entries  []gpu.BindGroupLayoutEntry
	released bool
}

func (l *BindGroupLayout) Label() string                       { return l.label }
func (l *BindGroupLayout) Entries() []gpu.BindGroupLayoutEntry { return l.entries }
func (l *BindGroupLayout) Release()                            { l.released = true }
func (l *BindGroupLayout) Released() bool                      { return l.released }

type BindGroup struct {
	label    string
	released bool
	Desc     gpu.BindGroupDescriptor
}

func (g *BindGroup) Label() string  { return g.label }
func (g *BindGroup) Released() bool { return g.released }
func (g *BindGroup) Release()       { g.released = true }

type Pipeline struct {
	label    string
	released bool
	Desc     gpu.RenderPipelineDescriptor
}

func (p *Pipeline) Label() string   { return p.label }
func (p *Pipeline) GroupCount() int { return len(p.Desc.BindGroupLayouts) }
func (p *Pipeline) Release()        { p.released = true }

type commandBuffer struct {
	copies   []pendingCopy
	released bool
}

func (c *commandBuffer) Label() string { return "command buffer" }
func (c *commandBuffer) Release()      { c.released = true }

// Encoder records copies and passes into its Recorder.
type Encoder struct {
	rec      *Recorder
	label    string
	copies   []pendingCopy
	open     *passEncoder
	finished bool
}

func (e *Encoder) CopyBufferToBuffer(src gpu.Buffer, srcOffset uint64, dst gpu.Buffer, dstOffset uint64, size uint64) {
	if e.open != nil {
		panic("gputest: copy recorded while a render pass is open")
	}
	s, d := src.(*Buffer), dst.(*Buffer)
	if srcOffset+size > s.Size() || dstOffset+size > d.Size() {
		panic(fmt.Sprintf("gputest: copy of %d bytes %q+%d -> %q+%d out of range", size, s.label, srcOffset, d.label, dstOffset))
	}
	e.copies = append(e.copies, pendingCopy{src: s, dst: d, srcOff: srcOffset, dstOff: dstOffset, size: size})

	e.rec.mu.Lock()
	e.rec.Copies = append(e.rec.Copies, CopyRecord{Src: s.label, SrcOffset: srcOffset, Dst: d.label, DstOffset: dstOffset, Size: size})
	e.rec.mu.Unlock()
}

func (e *Encoder) BeginRenderPass(desc gpu.RenderPassDescriptor) gpu.RenderPassEncoder {
	if e.open != nil {
		panic("gputest: render pass begun while another is open")
	}
	rec := &PassRecord{Label: desc.Label, EncoderLabel: e.label}
	for _, ca := range desc.ColorAttachments {
		rec.ColorLoad = append(rec.ColorLoad, ca.LoadOp)
		rec.ClearColor = append(rec.ClearColor, ca.ClearValue)
		rec.ColorView = append(rec.ColorView, ca.View.Label())
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		rec.HasDepth = true
		rec.DepthLoad = ds.DepthLoadOp
		rec.DepthView = ds.View.Label()
	}

	e.rec.mu.Lock()
	e.rec.Passes = append(e.rec.Passes, rec)
	e.rec.mu.Unlock()

	e.open = &passEncoder{enc: e, rec: rec}
	return e.open
}

func (e *Encoder) Finish() (gpu.CommandBuffer, error) {
	if e.open != nil {
		return nil, fmt.Errorf("gputest: finish with render pass %q still open", e.open.rec.Label)
	}
	e.finished = true
	return &commandBuffer{copies: e.copies}, nil
}

func (e *Encoder) Release() {}

type passEncoder struct {
	enc      *Encoder
	rec      *PassRecord
	pipeline *Pipeline
}

func (p *passEncoder) add(c Command) {
	p.enc.rec.mu.Lock()
	p.rec.Commands = append(p.rec.Commands, c)
	p.enc.rec.mu.Unlock()
}

func (p *passEncoder) SetPipeline(pl gpu.RenderPipeline) {
	p.pipeline = pl.(*Pipeline)
	p.add(Command{Op: "SetPipeline", Pipeline: pl.Label()})
}

func (p *passEncoder) SetBindGroup(index uint32, group gpu.BindGroup) {
	if p.pipeline == nil {
		panic("gputest: bind group set before pipeline")
	}
	if int(index) >= p.pipeline.GroupCount() {
		panic(fmt.Sprintf("gputest: pipeline %q declares %d groups, got index %d", p.pipeline.label, p.pipeline.GroupCount(), index))
	}
	p.add(Command{Op: "SetBindGroup", Index: index, Group: group.Label(), Pipeline: p.pipeline.label})
}

func (p *passEncoder) SetVertexBuffer(slot uint32, buf gpu.Buffer, offset, size uint64) {
	p.add(Command{Op: "SetVertexBuffer", Index: slot, Buffer: buf.Label()})
}

func (p *passEncoder) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat, offset, size uint64) {
	p.add(Command{Op: "SetIndexBuffer", Buffer: buf.Label()})
}

func (p *passEncoder) SetScissorRect(x, y, width, height uint32) {
	p.add(Command{Op: "SetScissorRect", Scissor: [4]uint32{x, y, width, height}})
}

func (p *passEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if p.pipeline == nil {
		panic("gputest: draw without pipeline")
	}
	p.add(Command{Op: "Draw", Pipeline: p.pipeline.label, Count: vertexCount, InstanceCount: instanceCount, FirstInstance: firstInstance})
}

func (p *passEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if p.pipeline == nil {
		panic("gputest: draw without pipeline")
	}
	p.add(Command{Op: "DrawIndexed", Pipeline: p.pipeline.label, Count: indexCount, InstanceCount: instanceCount, FirstIndex: firstIndex, FirstInstance: firstInstance})
}

func (p *passEncoder) End() {
	p.rec.Ended = true
	p.enc.open = nil
}
