package common

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUWriter serializes uniform and vertex fields into a little-endian byte slice in declaration order.
// The writer is sized up front to the layout the shader expects; writing past the end or finishing
// short of it panics, because either case means the Go struct and the WGSL struct disagree.
type GPUWriter struct {
	buf []byte
	off int
}

// NewGPUWriter creates a writer for a layout of exactly size bytes.
//
// Parameters:
//   - size: total byte size of the target layout
//
// Returns:
//   - *GPUWriter: the writer positioned at offset 0
func NewGPUWriter(size int) *GPUWriter {
	return &GPUWriter{buf: make([]byte, size)}
}

// NewGPUWriterInto creates a writer over an existing slice, reusing its storage.
// The slice length defines the layout size.
//
// Parameters:
//   - dst: destination slice
//
// Returns:
//   - *GPUWriter: the writer positioned at offset 0
func NewGPUWriterInto(dst []byte) *GPUWriter {
	return &GPUWriter{buf: dst}
}

func (w *GPUWriter) reserve(n int) []byte {
	if w.off+n > len(w.buf) {
		panic(fmt.Sprintf("common: gpu write of %d bytes at offset %d overflows layout of %d bytes", n, w.off, len(w.buf)))
	}
	b := w.buf[w.off : w.off+n]
	w.off += n
	return b
}

// Float32 writes a single f32.
func (w *GPUWriter) Float32(v float32) *GPUWriter {
	binary.LittleEndian.PutUint32(w.reserve(4), math.Float32bits(v))
	return w
}

// Uint32 writes a single u32.
func (w *GPUWriter) Uint32(v uint32) *GPUWriter {
	binary.LittleEndian.PutUint32(w.reserve(4), v)
	return w
}

// Int32 writes a single i32.
func (w *GPUWriter) Int32(v int32) *GPUWriter {
	binary.LittleEndian.PutUint32(w.reserve(4), uint32(v))
	return w
}

// Vec2 writes two consecutive f32 values.
func (w *GPUWriter) Vec2(v mgl32.Vec2) *GPUWriter {
	return w.Float32(v[0]).Float32(v[1])
}

// Vec3 writes three consecutive f32 values with no trailing padding.
// WGSL vec3<f32> is 16-byte aligned, so callers follow it with a Float32 or Pad(4).
func (w *GPUWriter) Vec3(v mgl32.Vec3) *GPUWriter {
	return w.Float32(v[0]).Float32(v[1]).Float32(v[2])
}

// Vec4 writes four consecutive f32 values.
func (w *GPUWriter) Vec4(v mgl32.Vec4) *GPUWriter {
	return w.Float32(v[0]).Float32(v[1]).Float32(v[2]).Float32(v[3])
}

// Mat4 writes a column-major 4x4 matrix (64 bytes).
func (w *GPUWriter) Mat4(m mgl32.Mat4) *GPUWriter {
	for _, v := range m {
		w.Float32(v)
	}
	return w
}

// Pad writes n zero bytes.
func (w *GPUWriter) Pad(n int) *GPUWriter {
	clear(w.reserve(n))
	return w
}

// Offset returns the number of bytes written so far.
func (w *GPUWriter) Offset() int {
	return w.off
}

// Bytes returns the serialized layout. It panics if the layout was not completely written.
//
// Returns:
//   - []byte: the serialized bytes
func (w *GPUWriter) Bytes() []byte {
	if w.off != len(w.buf) {
		panic(fmt.Sprintf("common: gpu layout incomplete, wrote %d of %d bytes", w.off, len(w.buf)))
	}
	return w.buf
}
