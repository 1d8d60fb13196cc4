package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraUniformLayout(t *testing.T) {
	u := GPUCameraUniform{View: mgl32.Ident4(), Projection: mgl32.Ident4(), Eye: mgl32.Vec3{1, 2, 3}}
	raw := u.Marshal()
	require.Len(t, raw, 144)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])) }
	assert.Equal(t, float32(1), f(0))
	assert.Equal(t, float32(1), f(64))
	assert.Equal(t, float32(1), f(128))
	assert.Equal(t, float32(3), f(136))
	assert.Equal(t, float32(0), f(140))
}

func TestCameraFollowsController(t *testing.T) {
	ctrl := NewCameraController(WithRadius(10), WithElevation(0), WithTarget(0, 0, 0))
	cam := NewCamera(WithController(ctrl), WithAspect(2))

	assert.InDelta(t, 10, cam.Eye().Z(), 1e-4)

	// the target projects to the center of the screen
	clip := cam.ProjectionMatrix().Mul4(cam.ViewMatrix()).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)

	ctrl.Orbit(float32(math.Pi/2), 0)
	cam.Update()
	assert.InDelta(t, 10, cam.Eye().X(), 1e-4)
	assert.Equal(t, cam.Eye(), cam.Uniform().Eye)
}

func TestSetAspectIgnoresDegenerate(t *testing.T) {
	cam := NewCamera(WithAspect(1.5))
	cam.SetAspect(0)
	assert.Equal(t, float32(1.5), cam.Aspect())
	cam.SetAspect(2)
	assert.Equal(t, float32(2), cam.Aspect())
}

func TestControllerClamps(t *testing.T) {
	ctrl := NewCameraController(WithRadiusLimits(2, 20), WithRadius(10), WithSpeeds(0.1, 0.01, 1, 1))

	ctrl.Zoom(100)
	assert.Equal(t, float32(2), ctrl.Radius())
	ctrl.Zoom(-100)
	assert.Equal(t, float32(20), ctrl.Radius())

	ctrl.Orbit(0, 10)
	assert.Less(t, ctrl.Elevation(), float32(math.Pi/2))

	before := ctrl.Position().Sub(ctrl.Target())
	ctrl.Pan(3, 1)
	after := ctrl.Position().Sub(ctrl.Target())
	assert.InDelta(t, 0, before.Sub(after).Len(), 1e-4, "pan keeps the orbit offset")
}
