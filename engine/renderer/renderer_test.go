package renderer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/instancing"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rec      *gputest.Recorder
	dir      string
	assets   Assets
	world    scene.World
	cam      camera.Camera
	renderer Renderer
}

func newFixture(t *testing.T, maxInstances int, opts ...RendererBuilderOption) *fixture {
	t.Helper()
	rec := gputest.NewRecorder()
	quiet := logger.NewWithWriter(&bytes.Buffer{}, "error", "test")

	layout, err := material.NewLayout(rec)
	require.NoError(t, err)
	models := asset.NewStore[model.Model](asset.LoaderFunc[model.Model](func(path string) (asset.Upload[model.Model], error) {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if raw, err := os.ReadFile(path); err != nil || strings.HasPrefix(string(raw), "bad") {
			return nil, errors.Errorf("malformed model %s", name)
		}
		return func(ctx asset.UploadContext) (model.Model, error) {
			return model.NewModel(ctx.Backend, &model.ImportedModel{
				Name: name,
				Meshes: []model.ImportedMesh{{
					Vertices: []model.GPUVertex{{Position: [3]float32{0, 0, 0}}, {Position: [3]float32{1, 0, 0}}, {Position: [3]float32{0, 1, 0}}},
					Indices:  []uint32{0, 1, 2},
				}},
			}, layout, model.WithMaxInstances(maxInstances))
		}, nil
	}), asset.WithWorkers(0), asset.WithLogger(quiet))
	heightMaps := asset.NewStore[heightmap.HeightMap](asset.LoaderFunc[heightmap.HeightMap](func(path string) (asset.Upload[heightmap.HeightMap], error) {
		return func(ctx asset.UploadContext) (heightmap.HeightMap, error) {
			vertices, indices := heightmap.BuildGrid(10, 10, 1, 1)
			return heightmap.NewHeightMap(ctx.Backend, filepath.Base(path), common.SolidTexture(0, 0, 0, 255), vertices, indices)
		}, nil
	}), asset.WithWorkers(0), asset.WithLogger(quiet))

	f := &fixture{
		rec:    rec,
		dir:    t.TempDir(),
		assets: Assets{Models: models, HeightMaps: heightMaps, Materials: layout},
		world:  scene.NewWorld(),
		cam:    camera.NewCamera(),
	}
	opts = append([]RendererBuilderOption{WithLogger(quiet), WithShadowMapSize(128)}, opts...)
	f.renderer, err = NewRenderer(rec, f.assets, opts...)
	require.NoError(t, err)
	t.Cleanup(f.renderer.Release)
	return f
}

func (f *fixture) path(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func (f *fixture) model(t *testing.T, name string) asset.Handle[model.Model] {
	t.Helper()
	h, err := f.assets.Models.Load(f.path(t, name+".glb"))
	require.NoError(t, err)
	return h
}

func (f *fixture) spawn(h asset.Handle[model.Model], n int, extra ...scene.EntityBuilderOption) {
	for i := range n {
		f.world.Spawn(append([]scene.EntityBuilderOption{
			scene.WithModel(h),
			scene.WithTransform(scene.NewTransform(mgl32.Vec3{float32(i), 0, 0})),
		}, extra...)...)
	}
}

func TestNewRendererRequiresAssets(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewRenderer(gputest.NewRecorder(), Assets{})
	})
}

func TestNewRendererConfiguresSurfaceAndDepth(t *testing.T) {
	f := newFixture(t, 8, WithSurfaceSize(640, 480))
	assert.Equal(t, [][2]uint32{{640, 480}}, f.rec.Configures)
	w, h := f.renderer.DepthSize()
	assert.Equal(t, [2]uint32{640, 480}, [2]uint32{w, h})
	assert.Equal(t, gpu.TextureFormatDepth32Float, f.rec.TextureByLabel("Depth").Format())
	assert.Equal(t, uint32(16), f.rec.TextureByLabel("Shadow Atlas").Layers())
	assert.Nil(t, f.renderer.Overlay())
}

func TestRenderFramePassOrder(t *testing.T) {
	f := newFixture(t, 64)
	a := f.model(t, "a")
	b := f.model(t, "b")
	lake, err := f.assets.HeightMaps.Load(f.path(t, "lake.png"))
	require.NoError(t, err)

	f.spawn(a, 50)
	f.spawn(b, 3)
	f.spawn(a, 1, scene.WithPointLight(light.NewPointLight()))
	f.world.Spawn(scene.WithDirectionalLight(light.NewDirectionalLight()))
	f.world.Spawn(scene.WithHeightMap(lake, 1))

	report, err := f.renderer.RenderFrame(f.world, f.cam)
	require.NoError(t, err)

	want := []string{"Shadow", "Environment", "Skybox", "Model", "Water Surface", "Light Debug", "UI"}
	assert.Equal(t, want, report.Passes)
	assert.Equal(t, want, f.rec.PassLabels())
	assert.False(t, report.Skipped)
	assert.Equal(t, 3, report.AssetsLoaded)
	assert.Equal(t, 54, report.Instances)
	assert.Equal(t, 2, report.Models)
	assert.Equal(t, 1, report.PointLights)
	assert.Equal(t, 1, report.ShadowCasters)
	assert.Equal(t, 1, report.Surfaces)
	assert.Equal(t, 1, f.rec.Submits)
	assert.Equal(t, 1, f.rec.Presents)

	draws := f.rec.Pass("Model").Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, [2]uint32{0, 50}, [2]uint32{draws[0].FirstInstance, draws[0].InstanceCount})
	assert.Equal(t, [2]uint32{0, 3}, [2]uint32{draws[1].FirstInstance, draws[1].InstanceCount})

	sun := f.rec.BufferByLabel("Lights Buffer 1").Data
	assert.Equal(t, []byte{0, 0, 0, 0}, sun[60:64], "sun bound to layer 0")
	for _, p := range f.rec.Passes {
		assert.Equal(t, "Frame 1", p.EncoderLabel)
	}
}

func TestRenderFrameWithoutSun(t *testing.T) {
	f := newFixture(t, 8)
	report, err := f.renderer.RenderFrame(f.world, f.cam)
	require.NoError(t, err)

	assert.Equal(t, []string{"Skybox", "Model", "Water Surface", "Light Debug", "UI"}, report.Passes)
	assert.Equal(t, 0, report.ShadowCasters)
	sun := f.rec.BufferByLabel("Lights Buffer 1").Data
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, sun[60:64], "no shadow layer")
}

func TestEveryShadowCasterGetsALayer(t *testing.T) {
	f := newFixture(t, 8)
	a := f.model(t, "a")
	f.spawn(a, 2)
	f.world.Spawn(scene.WithDirectionalLight(light.NewDirectionalLight()))
	second := f.world.Spawn(scene.WithDirectionalLight(light.NewDirectionalLight(light.WithDirection(1, -1, 0))))

	report, err := f.renderer.RenderFrame(f.world, f.cam)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ShadowCasters)
	assert.Equal(t, []string{"Shadow", "Shadow", "Skybox", "Model", "Water Surface", "Light Debug", "UI"}, report.Passes)

	f.world.Despawn(second)
	report, err = f.renderer.RenderFrame(f.world, f.cam)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ShadowCasters)
	assert.Equal(t, "Shadow Layer 0", f.rec.Pass("Shadow").DepthView, "the sun keeps its layer")
}

func TestResizeRecreatesDepth(t *testing.T) {
	f := newFixture(t, 8)
	f.renderer.Resize(1024, 768)
	w, h := f.renderer.DepthSize()
	assert.Equal(t, [2]uint32{1280, 720}, [2]uint32{w, h}, "resize applies on the next frame")

	report, err := f.renderer.RenderFrame(f.world, f.cam)
	require.NoError(t, err)
	w, h = f.renderer.DepthSize()
	assert.Equal(t, [2]uint32{1024, 768}, [2]uint32{w, h})
	assert.Equal(t, [2]uint32{1024, 768}, [2]uint32{report.Width, report.Height})
	assert.Equal(t, [2]uint32{1024, 768}, f.rec.Configures[len(f.rec.Configures)-1])

	f.renderer.Resize(0, 0)
	_, err = f.renderer.RenderFrame(f.world, f.cam)
	require.NoError(t, err)
	w, h = f.renderer.DepthSize()
	assert.Equal(t, [2]uint32{1024, 768}, [2]uint32{w, h}, "minimized sizes are ignored")

	var live int
	for _, tex := range f.rec.LiveTextures() {
		if tex.Label() == "Depth" {
			live++
		}
	}
	assert.Equal(t, 1, live, "old depth attachments are released")
}

func TestLostSurfaceSkipsFrame(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		reconfigure bool
	}{
		{"lost", gpu.ErrSurfaceLost, true},
		{"outdated", gpu.ErrSurfaceOutdated, true},
		{"timeout", gpu.ErrSurfaceTimeout, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 8)
			configures := len(f.rec.Configures)
			f.rec.AcquireErrors = []error{tt.err}

			report, err := f.renderer.RenderFrame(f.world, f.cam)
			require.NoError(t, err)
			assert.True(t, report.Skipped)
			assert.Empty(t, f.rec.Passes)
			assert.Zero(t, f.rec.Submits)
			if tt.reconfigure {
				assert.Len(t, f.rec.Configures, configures+1)
			} else {
				assert.Len(t, f.rec.Configures, configures)
			}

			report, err = f.renderer.RenderFrame(f.world, f.cam)
			require.NoError(t, err)
			assert.False(t, report.Skipped)
			assert.Equal(t, 1, f.rec.Presents)
		})
	}
}

func TestUnexpectedAcquireErrorIsFatal(t *testing.T) {
	f := newFixture(t, 8)
	f.rec.AcquireErrors = []error{errors.New("device lost")}

	_, err := f.renderer.RenderFrame(f.world, f.cam)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatal))
	assert.False(t, IsRecoverable(err))
}

func TestCapacityExceededIsFatal(t *testing.T) {
	f := newFixture(t, 4)
	a := f.model(t, "a")
	f.spawn(a, 5)

	_, err := f.renderer.RenderFrame(f.world, f.cam)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatal))
	assert.True(t, errors.Is(err, instancing.ErrCapacityExceeded))
}

func TestAssetDecodeFailureIsFatal(t *testing.T) {
	f := newFixture(t, 8)
	p := f.path(t, "corrupt.glb")
	bad := asset.NewStore[model.Model](asset.LoaderFunc[model.Model](func(path string) (asset.Upload[model.Model], error) {
		return nil, errors.New("corrupt")
	}), asset.WithWorkers(0))
	_, err := bad.Load(p)
	require.NoError(t, err)
	f.assets.Models = bad

	r, err := NewRenderer(f.rec, f.assets, WithLogger(logger.NewWithWriter(&bytes.Buffer{}, "error", "test")))
	require.NoError(t, err)
	defer r.Release()
	_, err = r.RenderFrame(f.world, f.cam)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatal))
	assert.Contains(t, err.Error(), "corrupt.glb")
}

func TestFailedReloadKeepsRendering(t *testing.T) {
	f := newFixture(t, 8)
	a := f.model(t, "a")
	f.spawn(a, 2)

	_, err := f.renderer.RenderFrame(f.world, f.cam)
	require.NoError(t, err)
	loaded, ok := f.assets.Models.Get(a)
	require.True(t, ok)

	p := f.assets.Models.Path(a)
	require.NoError(t, os.WriteFile(p, []byte("bad half-written"), 0o644))
	require.True(t, f.assets.Models.Reload(p))

	for range 2 {
		report, err := f.renderer.RenderFrame(f.world, f.cam)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Instances)
		assert.Zero(t, report.AssetsLoaded)
	}
	current, _ := f.assets.Models.Get(a)
	assert.Same(t, loaded, current)
	assert.Zero(t, f.assets.Models.Pending())
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"lost", gpu.ErrSurfaceLost, true},
		{"wrapped timeout", errors.Wrap(gpu.ErrSurfaceTimeout, "acquire"), true},
		{"fatal surface", fatal(gpu.ErrSurfaceLost, "reconfigure surface"), false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecoverable(tt.err))
		})
	}
}

func TestVisibleCountsInstancesInsideFrustum(t *testing.T) {
	f := newFixture(t, 8)
	ctrl := camera.NewCameraController(camera.WithRadius(10))
	cam := camera.NewCamera(camera.WithController(ctrl))
	cam.Update()

	a := f.model(t, "a")
	f.world.Spawn(scene.WithModel(a), scene.WithTransform(scene.NewTransform(mgl32.Vec3{})))
	f.world.Spawn(scene.WithModel(a), scene.WithTransform(scene.NewTransform(ctrl.Position().Mul(3))))

	report, err := f.renderer.RenderFrame(f.world, cam)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Instances)
	assert.Equal(t, 1, report.Visible, "the instance behind the eye is outside")
	assert.Len(t, f.rec.Pass("Model").Draws(), 1, "culling does not change what is drawn")
}
