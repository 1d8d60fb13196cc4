package bind_group_provider

import "github.com/Carmen-Shannon/oxy-frame/engine/gpu"

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// WriteBuffers queues every write in order. Writes whose binding has no buffer are skipped.
//
// Parameters:
//   - backend: the GPU backend
//   - writes: the batched writes
func WriteBuffers(backend gpu.Backend, writes []BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		backend.WriteBuffer(buf, w.Offset, w.Data)
	}
}
