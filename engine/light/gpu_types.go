package light

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxPointLights is the fixed capacity of the point light array in GPULightUniform.
const MaxPointLights = 16

// GPULightSource is the canonical WGSL definition of PointLight, Lights, DirectionalLight and LightSpace.
// Shaders pull it in with //@oxy:include lights.
//
//go:embed assets/lights.wgsl
var GPULightSource string

// GPUPointLight is the GPU-aligned representation of a single point light.
// Size: 64 bytes.
//
// Layout:
//
//	vec3<f32> position   (offset  0)  f32 constant  (offset 12)
//	vec3<f32> ambient    (offset 16)  f32 linear    (offset 28)
//	vec3<f32> diffuse    (offset 32)  f32 quadratic (offset 44)
//	vec3<f32> specular   (offset 48)  f32 _pad      (offset 60)
type GPUPointLight struct {
	Position  mgl32.Vec3
	Constant  float32
	Ambient   mgl32.Vec3
	Linear    float32
	Diffuse   mgl32.Vec3
	Quadratic float32
	Specular  mgl32.Vec3
}

// Size returns the size of the GPUPointLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g GPUPointLight) Size() int {
	return 64
}

// Marshal serializes the GPUPointLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g GPUPointLight) Marshal() []byte {
	w := common.NewGPUWriter(g.Size())
	g.write(w)
	return w.Bytes()
}

func (g GPUPointLight) write(w *common.GPUWriter) {
	w.Vec3(g.Position).Float32(g.Constant).
		Vec3(g.Ambient).Float32(g.Linear).
		Vec3(g.Diffuse).Float32(g.Quadratic).
		Vec3(g.Specular).Pad(4)
}

// ToGPUPointLight packs a point light at the given world position.
//
// Parameters:
//   - l: the light
//   - position: the world position of the entity carrying it
//
// Returns:
//   - GPUPointLight: the raw form
func ToGPUPointLight(l PointLight, position mgl32.Vec3) GPUPointLight {
	return GPUPointLight{
		Position:  position,
		Constant:  l.Constant,
		Ambient:   l.Ambient,
		Linear:    l.Linear,
		Diffuse:   l.Diffuse,
		Quadratic: l.Quadratic,
		Specular:  l.Specular,
	}
}

// GPULightUniform is the point light array uniform. Only the first LightsUsed slots are meaningful;
// the rest are zero.
// Size: 1040 bytes (16-byte header + 16 x 64).
type GPULightUniform struct {
	LightsUsed uint32
	Lights     [MaxPointLights]GPUPointLight
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (1040)
func (u GPULightUniform) Size() int {
	return 16 + MaxPointLights*64
}

// Marshal serializes the GPULightUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 1040-byte buffer ready for GPU upload
func (u GPULightUniform) Marshal() []byte {
	w := common.NewGPUWriter(u.Size())
	w.Uint32(u.LightsUsed).Pad(12)
	for _, l := range u.Lights {
		l.write(w)
	}
	return w.Bytes()
}

// GPUDirectionalLight is the GPU-aligned representation of the scene's directional light.
// ShadowLayer is the shadow atlas layer holding its depth map, or -1 when it has none.
// Size: 128 bytes.
//
// Layout:
//
//	vec3<f32> ambient     (offset  0)  f32 _pad          (offset 12)
//	vec3<f32> diffuse     (offset 16)  f32 _pad          (offset 28)
//	vec3<f32> specular    (offset 32)  f32 _pad          (offset 44)
//	vec3<f32> direction   (offset 48)  i32 shadow_layer  (offset 60)
//	mat4x4<f32> light_space (offset 64)
type GPUDirectionalLight struct {
	Ambient     mgl32.Vec3
	Diffuse     mgl32.Vec3
	Specular    mgl32.Vec3
	Direction   mgl32.Vec3
	ShadowLayer int32
	LightSpace  mgl32.Mat4
}

// Size returns the size of the GPUDirectionalLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (d GPUDirectionalLight) Size() int {
	return 128
}

// Marshal serializes the GPUDirectionalLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (d GPUDirectionalLight) Marshal() []byte {
	return common.NewGPUWriter(d.Size()).
		Vec3(d.Ambient).Pad(4).
		Vec3(d.Diffuse).Pad(4).
		Vec3(d.Specular).Pad(4).
		Vec3(d.Direction).Int32(d.ShadowLayer).
		Mat4(d.LightSpace).
		Bytes()
}

// GPULightSpace is the shadow pass vertex uniform: the light-space (projection x view) matrix.
// Size: 64 bytes.
type GPULightSpace struct {
	Matrix mgl32.Mat4
}

// Size returns the size of the GPULightSpace struct in bytes.
func (s GPULightSpace) Size() int {
	return 64
}

// Marshal serializes the matrix column-major.
func (s GPULightSpace) Marshal() []byte {
	return common.NewGPUWriter(s.Size()).Mat4(s.Matrix).Bytes()
}
