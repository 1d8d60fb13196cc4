package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
)

// GPUData is a value with a fixed GPU byte layout.
type GPUData interface {
	// Size returns the byte size of the layout.
	Size() int

	// Marshal serializes the value into exactly Size bytes.
	Marshal() []byte
}

// Uniform is a single uniform buffer of T bound at binding 0 of its own bind group.
// One writer per frame updates it; any number of passes bind it.
type Uniform[T GPUData] struct {
	provider BindGroupProvider
	size     int
}

// NewUniform allocates the buffer, layout and bind group and uploads the initial value.
//
// Parameters:
//   - backend: the GPU backend
//   - label: a debug label
//   - visibility: the shader stages that read the uniform
//   - initial: the initial value
//
// Returns:
//   - *Uniform[T]: the uniform
//   - error: error if a GPU object cannot be created
func NewUniform[T GPUData](backend gpu.Backend, label string, visibility gpu.ShaderStage, initial T) (*Uniform[T], error) {
	size := initial.Size()
	p := NewBindGroupProvider(label, WithEntries(gpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: visibility,
		Buffer:     &gpu.BufferBindingLayout{Type: gpu.BufferBindingTypeUniform, MinBindingSize: uint64(size)},
	}))
	if err := p.Init(backend); err != nil {
		return nil, err
	}

	u := &Uniform[T]{provider: p, size: size}
	u.Write(backend, initial)
	return u, nil
}

// Update serializes data into a write for batching with WriteBuffers.
// It panics if data serializes to a different size than the buffer was created with.
//
// Parameters:
//   - data: the new value
//
// Returns:
//   - BufferWrite: the queued write
func (u *Uniform[T]) Update(data T) BufferWrite {
	raw := data.Marshal()
	if len(raw) != u.size {
		panic(fmt.Sprintf("bind_group_provider: uniform %q marshaled %d bytes, layout is %d", u.provider.Label(), len(raw), u.size))
	}
	return BufferWrite{Provider: u.provider, Binding: 0, Data: raw}
}

// Write serializes data and queues the write immediately.
func (u *Uniform[T]) Write(backend gpu.Backend, data T) {
	WriteBuffers(backend, []BufferWrite{u.Update(data)})
}

func (u *Uniform[T]) Layout() gpu.BindGroupLayout {
	return u.provider.BindGroupLayout()
}

func (u *Uniform[T]) BindGroup() gpu.BindGroup {
	return u.provider.BindGroup()
}

func (u *Uniform[T]) Buffer() gpu.Buffer {
	return u.provider.Buffer(0)
}

func (u *Uniform[T]) Provider() BindGroupProvider {
	return u.provider
}

func (u *Uniform[T]) Release() {
	u.provider.Release()
}
