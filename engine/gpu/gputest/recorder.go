// Package gputest provides an in-memory gpu.Backend that records every resource and command.
package gputest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
)

// Command is one recorded render pass command.
type Command struct {
	Op            string
	Pipeline      string
	Index         uint32
	Group         string
	Buffer        string
	Count         uint32
	InstanceCount uint32
	FirstIndex    uint32
	FirstInstance uint32
	Scissor       [4]uint32
}

// PassRecord is one recorded render pass with its attachments and commands.
type PassRecord struct {
	Label        string
	ColorLoad    []gpu.LoadOp
	ColorView    []string
	ClearColor   []gpu.Color
	DepthView    string
	DepthLoad    gpu.LoadOp
	HasDepth     bool
	Commands     []Command
	Ended        bool
	EncoderLabel string
}

// Draws returns the draw commands of the pass in order.
func (p *PassRecord) Draws() []Command {
	var out []Command
	for _, c := range p.Commands {
		if c.Op == "Draw" || c.Op == "DrawIndexed" {
			out = append(out, c)
		}
	}
	return out
}

// CopyRecord is one recorded CopyBufferToBuffer.
type CopyRecord struct {
	Src       string
	SrcOffset uint64
	Dst       string
	DstOffset uint64
	Size      uint64
}

// WriteRecord is one queued WriteBuffer.
type WriteRecord struct {
	Buffer string
	Offset uint64
	Size   int
}

// Recorder is a gpu.Backend that keeps everything in memory.
// Buffer contents are tracked so tests can read back what the GPU would see.
type Recorder struct {
	mu sync.Mutex

	Format  gpu.TextureFormat
	Samples uint32

	Width  uint32
	Height uint32

	Buffers    []*Buffer
	Textures   []*Texture
	Samplers   []*Sampler
	Layouts    []*BindGroupLayout
	BindGroups []*BindGroup
	Pipelines  []*Pipeline

	Writes        []WriteRecord
	TextureWrites []gpu.TextureWrite
	Copies        []CopyRecord
	Passes        []*PassRecord
	Configures    [][2]uint32
	Submits       int
	Presents      int
	Acquires      int
	Released      bool

	// AcquireErrors is consumed front to back by AcquireFrame before it succeeds.
	AcquireErrors []error

	inFlight bool
	pending  []pendingCopy
}

type pendingCopy struct {
	src, dst       *Buffer
	srcOff, dstOff uint64
	size           uint64
}

var _ gpu.Backend = &Recorder{}

// NewRecorder creates a recorder with a BGRA8 sRGB surface and no MSAA.
func NewRecorder() *Recorder {
	return &Recorder{
		Format:  gpu.TextureFormatBGRA8UnormSrgb,
		Samples: 1,
	}
}

// PassLabels returns the labels of recorded passes in recording order.
func (r *Recorder) PassLabels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Passes))
	for _, p := range r.Passes {
		out = append(out, p.Label)
	}
	return out
}

// Pass returns the last recorded pass with the given label, or nil.
func (r *Recorder) Pass(label string) *PassRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Passes) - 1; i >= 0; i-- {
		if r.Passes[i].Label == label {
			return r.Passes[i]
		}
	}
	return nil
}

// BufferByLabel returns the most recently created live buffer with the label, or nil.
func (r *Recorder) BufferByLabel(label string) *Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Buffers) - 1; i >= 0; i-- {
		if r.Buffers[i].label == label && !r.Buffers[i].released {
			return r.Buffers[i]
		}
	}
	return nil
}

// TextureByLabel returns the most recently created live texture with the label, or nil.
func (r *Recorder) TextureByLabel(label string) *Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Textures) - 1; i >= 0; i-- {
		if r.Textures[i].desc.Label == label && !r.Textures[i].released {
			return r.Textures[i]
		}
	}
	return nil
}

// Reset forgets recorded commands, writes and copies but keeps resources.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Writes = nil
	r.TextureWrites = nil
	r.Copies = nil
	r.Passes = nil
	r.Submits = 0
	r.Presents = 0
}

func (r *Recorder) SurfaceFormat() gpu.TextureFormat { return r.Format }
func (r *Recorder) SampleCount() uint32              { return r.Samples }

func (r *Recorder) ConfigureSurface(width, height uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Width, r.Height = width, height
	r.Configures = append(r.Configures, [2]uint32{width, height})
	return nil
}

func (r *Recorder) AcquireFrame() (gpu.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Acquires++
	if len(r.AcquireErrors) > 0 {
		err := r.AcquireErrors[0]
		r.AcquireErrors = r.AcquireErrors[1:]
		return gpu.Frame{}, err
	}
	if r.inFlight {
		return gpu.Frame{}, gpu.ErrFrameInFlight
	}
	r.inFlight = true
	return gpu.Frame{
		View:   &TextureView{label: "Swapchain View"},
		Width:  r.Width,
		Height: r.Height,
	}, nil
}

func (r *Recorder) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFlight {
		return
	}
	r.inFlight = false
	r.Presents++
}

func (r *Recorder) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("gputest: buffer %q has zero size", desc.Label)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b := &Buffer{label: desc.Label, usage: desc.Usage, Data: make([]byte, desc.Size)}
	r.Buffers = append(r.Buffers, b)
	return b, nil
}

func (r *Recorder) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := buf.(*Buffer)
	if b.released {
		panic(fmt.Sprintf("gputest: write to released buffer %q", b.label))
	}
	if offset+uint64(len(data)) > uint64(len(b.Data)) {
		panic(fmt.Sprintf("gputest: write of %d bytes at %d overflows buffer %q of %d bytes", len(data), offset, b.label, len(b.Data)))
	}
	copy(b.Data[offset:], data)
	r.Writes = append(r.Writes, WriteRecord{Buffer: b.label, Offset: offset, Size: len(data)})
}

func (r *Recorder) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("gputest: texture %q has zero extent", desc.Label)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d := desc
	d.Size.DepthOrArrayLayers = max(d.Size.DepthOrArrayLayers, 1)
	t := &Texture{desc: d}
	r.Textures = append(r.Textures, t)
	return t, nil
}

func (r *Recorder) WriteTexture(write gpu.TextureWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TextureWrites = append(r.TextureWrites, write)
}

func (r *Recorder) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &Sampler{label: desc.Label, Desc: desc}
	r.Samplers = append(r.Samplers, s)
	return s, nil
}

func (r *Recorder) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := &BindGroupLayout{label: desc.Label, entries: desc.Entries}
	r.Layouts = append(r.Layouts, l)
	return l, nil
}

func (r *Recorder) CreateBindGroup(desc gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	if desc.Layout == nil {
		return nil, fmt.Errorf("gputest: bind group %q has no layout", desc.Label)
	}
	declared := map[uint32]bool{}
	for _, e := range desc.Layout.Entries() {
		declared[e.Binding] = true
	}
	for _, e := range desc.Entries {
		if !declared[e.Binding] {
			return nil, fmt.Errorf("gputest: bind group %q binds %d which layout %q does not declare", desc.Label, e.Binding, desc.Layout.Label())
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g := &BindGroup{label: desc.Label, Desc: desc}
	r.BindGroups = append(r.BindGroups, g)
	return g, nil
}

func (r *Recorder) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if desc.Source == "" || desc.VertexEntry == "" {
		return nil, fmt.Errorf("gputest: pipeline %q has no vertex stage", desc.Label)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &Pipeline{label: desc.Label, Desc: desc}
	r.Pipelines = append(r.Pipelines, p)
	return p, nil
}

func (r *Recorder) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	return &Encoder{rec: r, label: label}, nil
}

func (r *Recorder) Submit(buffers ...gpu.CommandBuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cb := range buffers {
		c := cb.(*commandBuffer)
		for _, p := range c.copies {
			copy(p.dst.Data[p.dstOff:p.dstOff+p.size], p.src.Data[p.srcOff:p.srcOff+p.size])
		}
		c.Release()
	}
	r.Submits++
}

func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Released = true
}

// LiveTextures returns the textures not yet released.
func (r *Recorder) LiveTextures() []*Texture {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Texture
	for _, t := range r.Textures {
		if !t.released {
			out = append(out, t)
		}
	}
	return out
}
