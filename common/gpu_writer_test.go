package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGPUWriterLayout(t *testing.T) {
	b := NewGPUWriter(32).
		Vec3(mgl32.Vec3{1, 2, 3}).
		Pad(4).
		Int32(-7).
		Uint32(9).
		Vec2(mgl32.Vec2{0.5, 0.25}).
		Bytes()

	require.Len(t, b, 32)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[12:16]))
	assert.Equal(t, int32(-7), int32(binary.LittleEndian.Uint32(b[16:20])))
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(b[20:24]))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(b[28:32])))
}

func TestGPUWriterMat4ColumnMajor(t *testing.T) {
	m := mgl32.Translate3D(4, 5, 6)
	b := NewGPUWriter(64).Mat4(m).Bytes()

	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(b[48:52])))
	assert.Equal(t, float32(6), math.Float32frombits(binary.LittleEndian.Uint32(b[56:60])))
}

func TestGPUWriterContract(t *testing.T) {
	assert.Panics(t, func() {
		NewGPUWriter(8).Vec3(mgl32.Vec3{})
	}, "overflow must panic")

	assert.Panics(t, func() {
		NewGPUWriter(8).Float32(1).Bytes()
	}, "short layout must panic")

	dst := make([]byte, 4)
	NewGPUWriterInto(dst).Uint32(0xdeadbeef)
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(dst))
}
