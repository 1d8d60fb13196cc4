package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBuffer struct {
	label string
	buf   *wgpu.Buffer
	size  uint64
	usage BufferUsage
}

func (b *wgpuBuffer) Label() string      { return b.label }
func (b *wgpuBuffer) Size() uint64       { return b.size }
func (b *wgpuBuffer) Usage() BufferUsage { return b.usage }

func (b *wgpuBuffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type wgpuTexture struct {
	desc TextureDescriptor
	tex  *wgpu.Texture
}

func (t *wgpuTexture) Label() string         { return t.desc.Label }
func (t *wgpuTexture) Width() uint32         { return t.desc.Size.Width }
func (t *wgpuTexture) Height() uint32        { return t.desc.Size.Height }
func (t *wgpuTexture) Layers() uint32        { return t.desc.Size.DepthOrArrayLayers }
func (t *wgpuTexture) Format() TextureFormat { return t.desc.Format }

func (t *wgpuTexture) CreateView(desc *TextureViewDescriptor) (TextureView, error) {
	if desc == nil {
		view, err := t.tex.CreateView(nil)
		if err != nil {
			return nil, fmt.Errorf("create view of %q: %w", t.desc.Label, err)
		}
		return &wgpuTextureView{label: t.desc.Label + " View", view: view}, nil
	}

	layers := desc.ArrayLayerCount
	if layers == 0 {
		layers = 1
	}
	view, err := t.tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          toWGPUTextureFormat(t.desc.Format),
		Dimension:       toWGPUViewDimension(desc.Dimension),
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: layers,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("create view %q: %w", desc.Label, err)
	}
	return &wgpuTextureView{label: desc.Label, view: view}, nil
}

func (t *wgpuTexture) Release() {
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

type wgpuTextureView struct {
	label string
	view  *wgpu.TextureView
}

func (v *wgpuTextureView) Label() string { return v.label }

func (v *wgpuTextureView) Release() {
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
}

type wgpuSampler struct {
	label string
	samp  *wgpu.Sampler
}

func (s *wgpuSampler) Label() string { return s.label }

func (s *wgpuSampler) Release() {
	if s.samp != nil {
		s.samp.Release()
		s.samp = nil
	}
}

type wgpuBindGroupLayout struct {
	label   string
	layout  *wgpu.BindGroupLayout
	entries []BindGroupLayoutEntry
}

func (l *wgpuBindGroupLayout) Label() string                   { return l.label }
func (l *wgpuBindGroupLayout) Entries() []BindGroupLayoutEntry { return l.entries }

func (l *wgpuBindGroupLayout) Release() {
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}

type wgpuBindGroup struct {
	label string
	group *wgpu.BindGroup
}

func (g *wgpuBindGroup) Label() string { return g.label }

func (g *wgpuBindGroup) Release() {
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
}

type wgpuRenderPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
	groups   int
}

func (p *wgpuRenderPipeline) Label() string   { return p.label }
func (p *wgpuRenderPipeline) GroupCount() int { return p.groups }

func (p *wgpuRenderPipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
}

type wgpuCommandBuffer struct {
	cb *wgpu.CommandBuffer
}

func (c *wgpuCommandBuffer) Label() string { return "command buffer" }

func (c *wgpuCommandBuffer) Release() {
	if c.cb != nil {
		c.cb.Release()
		c.cb = nil
	}
}

type wgpuCommandEncoder struct {
	encoder *wgpu.CommandEncoder
}

func (e *wgpuCommandEncoder) CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset uint64, size uint64) {
	e.encoder.CopyBufferToBuffer(unwrapBuffer(src), srcOffset, unwrapBuffer(dst), dstOffset, size)
}

func (e *wgpuCommandEncoder) BeginRenderPass(desc RenderPassDescriptor) RenderPassEncoder {
	wdesc := &wgpu.RenderPassDescriptor{
		Label: desc.Label,
	}
	for _, ca := range desc.ColorAttachments {
		wdesc.ColorAttachments = append(wdesc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:          unwrapTextureView(ca.View),
			ResolveTarget: unwrapTextureView(ca.ResolveTarget),
			LoadOp:        toWGPULoadOp(ca.LoadOp),
			StoreOp:       toWGPUStoreOp(ca.StoreOp),
			ClearValue: wgpu.Color{
				R: ca.ClearValue.R, G: ca.ClearValue.G, B: ca.ClearValue.B, A: ca.ClearValue.A,
			},
		})
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		wdesc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            unwrapTextureView(ds.View),
			DepthLoadOp:     toWGPULoadOp(ds.DepthLoadOp),
			DepthStoreOp:    toWGPUStoreOp(ds.DepthStoreOp),
			DepthClearValue: ds.DepthClearValue,
		}
	}
	return &wgpuRenderPass{pass: e.encoder.BeginRenderPass(wdesc)}
}

func (e *wgpuCommandEncoder) Finish() (CommandBuffer, error) {
	cb, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("finish command encoder: %w", err)
	}
	return &wgpuCommandBuffer{cb: cb}, nil
}

func (e *wgpuCommandEncoder) Release() {
	if e.encoder != nil {
		e.encoder.Release()
		e.encoder = nil
	}
}

type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuRenderPass) SetPipeline(pl RenderPipeline) {
	p.pass.SetPipeline(pl.(*wgpuRenderPipeline).pipeline)
}

func (p *wgpuRenderPass) SetBindGroup(index uint32, group BindGroup) {
	p.pass.SetBindGroup(index, group.(*wgpuBindGroup).group, nil)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buf Buffer, offset, size uint64) {
	p.pass.SetVertexBuffer(slot, unwrapBuffer(buf), offset, toWGPUSize(size))
}

func (p *wgpuRenderPass) SetIndexBuffer(buf Buffer, format IndexFormat, offset, size uint64) {
	p.pass.SetIndexBuffer(unwrapBuffer(buf), toWGPUIndexFormat(format), offset, toWGPUSize(size))
}

func (p *wgpuRenderPass) SetScissorRect(x, y, width, height uint32) {
	p.pass.SetScissorRect(x, y, width, height)
}

func (p *wgpuRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuRenderPass) End() {
	p.pass.End()
	p.pass.Release()
}

func unwrapBuffer(b Buffer) *wgpu.Buffer {
	if b == nil {
		return nil
	}
	return b.(*wgpuBuffer).buf
}

func unwrapTexture(t Texture) *wgpu.Texture {
	if t == nil {
		return nil
	}
	return t.(*wgpuTexture).tex
}

func unwrapTextureView(v TextureView) *wgpu.TextureView {
	if v == nil {
		return nil
	}
	return v.(*wgpuTextureView).view
}

func unwrapSampler(s Sampler) *wgpu.Sampler {
	if s == nil {
		return nil
	}
	return s.(*wgpuSampler).samp
}

func unwrapBindGroupLayout(l BindGroupLayout) *wgpu.BindGroupLayout {
	if l == nil {
		return nil
	}
	return l.(*wgpuBindGroupLayout).layout
}
