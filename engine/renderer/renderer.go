// Package renderer drives one frame from scene to screen: it owns the shared GPU resources every pass
// reads, builds the passes in dependency order and records them into a single submission per frame.
package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/instancing"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/Carmen-Shannon/oxy-frame/engine/ui"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrFatal marks an error RenderFrame cannot recover from. The engine stops on it.
var ErrFatal = errors.New("renderer: fatal")

// IsRecoverable reports whether err only costs the current frame: a lost, outdated or timed out surface.
//
// Parameters:
//   - err: the error to classify
//
// Returns:
//   - bool: true when rendering may continue with the next frame
func IsRecoverable(err error) bool {
	return err != nil && !errors.Is(err, ErrFatal) && gpu.IsSurfaceError(err)
}

func fatal(err error, msg string) error {
	return fmt.Errorf("%w: %w", ErrFatal, errors.Wrap(err, msg))
}

// Assets are the asset stores a renderer drains each frame and draws from.
type Assets struct {
	Models     *asset.Store[model.Model]
	HeightMaps *asset.Store[heightmap.HeightMap]

	// Materials is the layout models were loaded against. The model pass binds it at group 0.
	Materials *material.Layout
}

// FrameReport describes one RenderFrame call.
type FrameReport struct {
	Frame   uint64
	Skipped bool
	Width   uint32
	Height  uint32

	// Passes are the render pass labels in recording order.
	Passes    []string
	Draws     int
	Instances int
	// Visible counts the opaque instances whose bounding sphere intersects the camera frustum.
	// Every uploaded instance is still drawn.
	Visible       int
	Models        int
	PointLights   int
	DroppedLights int
	ShadowCasters int
	Surfaces      int
	AssetsLoaded  int
	CPUTime       time.Duration
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend gpu.Backend
	assets  Assets
	logger  *log.Logger

	width, height uint32
	pendingSize   *[2]uint32
	depthTexture  gpu.Texture
	depthView     gpu.TextureView

	camera     *bind_group_provider.Uniform[camera.GPUCameraUniform]
	lights     *light.Uniforms
	atlas      *pass.ShadowAtlas
	atlasFull  bool
	aggregator *light.Aggregator
	uploader   *instancing.Uploader

	shadow      *pass.ShadowPass
	environment *pass.EnvironmentPass
	main        []pass.Pass

	drawList *ui.DrawList
	overlay  *ui.TextOverlay

	start time.Time
	frame uint64

	// Pre-creation config collected from builder options
	shadowMapSize uint32
	font          *ui.Font
	passOptions   []pass.PassBuilderOption
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the camera and light uniforms, the shadow atlas and the depth attachment, and the
// passes that read them. RenderFrame records every pass of a frame into one command buffer.
type Renderer interface {
	// RenderFrame renders the world as seen by cam.
	// A lost or outdated surface is reconfigured and the frame is skipped without an error.
	//
	// Parameters:
	//   - world: the scene to draw, read once through a snapshot
	//   - cam: the camera whose uniform is written before any pass records
	//
	// Returns:
	//   - FrameReport: what the frame recorded
	//   - error: an error wrapping ErrFatal when rendering cannot continue
	RenderFrame(world scene.World, cam camera.Camera) (FrameReport, error)

	// Resize records a new surface size applied at the start of the next frame.
	// Zero sizes, as reported for a minimized window, are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// DepthSize returns the size of the current depth attachment.
	//
	// Returns:
	//   - uint32: width in pixels
	//   - uint32: height in pixels
	DepthSize() (uint32, uint32)

	// Overlay returns the text overlay drawn by the UI pass, or nil when no font was configured.
	Overlay() *ui.TextOverlay

	// Release frees every pass and shared resource. The asset stores and the backend stay with their owner.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer configures the surface and creates the shared resources, then the passes in dependency
// order: the shadow pass after the atlas, the water surface pass after the environment pass.
//
// Parameters:
//   - backend: the GPU backend
//   - assets: the asset stores; Materials is required
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error carrying the shader or pipeline name if initialisation fails
func NewRenderer(backend gpu.Backend, assets Assets, options ...RendererBuilderOption) (Renderer, error) {
	if assets.Models == nil || assets.HeightMaps == nil || assets.Materials == nil {
		panic("renderer: assets require model and height map stores and a material layout")
	}
	r := &renderer{
		mu:            &sync.Mutex{},
		backend:       backend,
		assets:        assets,
		width:         1280,
		height:        720,
		shadowMapSize: pass.DefaultShadowMapSize,
		start:         time.Now(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Default()
	}
	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) init() error {
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return errors.Wrap(err, "configure surface")
	}
	if err := r.createDepth(); err != nil {
		return err
	}

	var err error
	if r.camera, err = bind_group_provider.NewUniform(r.backend, "Camera",
		gpu.ShaderStageVertex|gpu.ShaderStageFragment, camera.GPUCameraUniform{}); err != nil {
		return errors.Wrap(err, "camera uniform")
	}
	if r.lights, err = light.NewUniforms(r.backend); err != nil {
		return errors.Wrap(err, "light uniforms")
	}
	if r.atlas, err = pass.NewShadowAtlas(r.backend, r.shadowMapSize); err != nil {
		return errors.Wrap(err, "shadow atlas")
	}
	r.aggregator = light.NewAggregator(light.WithLogger(r.logger))
	r.uploader = instancing.NewUploader(r.backend, instancing.WithLogger(r.logger))
	r.drawList = ui.NewDrawList(float32(r.width), float32(r.height))
	if r.font != nil {
		r.overlay = ui.NewTextOverlay(r.font)
	}

	shared := pass.Shared{Camera: r.camera, Lights: r.lights, Shadow: r.atlas, Materials: r.assets.Materials}
	opts := append([]pass.PassBuilderOption{pass.WithLogger(r.logger), pass.WithFont(r.font)}, r.passOptions...)

	if r.shadow, err = pass.NewShadowPass(r.backend, r.atlas, opts...); err != nil {
		return err
	}
	if r.environment, err = pass.NewEnvironmentPass(r.backend, shared, opts...); err != nil {
		return err
	}
	sky, err := pass.NewSkyboxPass(r.backend, shared, opts...)
	if err != nil {
		return err
	}
	r.main = append(r.main, sky)
	models, err := pass.NewModelPass(r.backend, shared, opts...)
	if err != nil {
		return err
	}
	r.main = append(r.main, models)
	water, err := pass.NewWaterSurfacePass(r.backend, shared, r.environment, opts...)
	if err != nil {
		return err
	}
	r.main = append(r.main, water)
	debug, err := pass.NewLightDebugPass(r.backend, shared, opts...)
	if err != nil {
		return err
	}
	r.main = append(r.main, debug)
	overlay, err := pass.NewUIPass(r.backend, opts...)
	if err != nil {
		return err
	}
	r.main = append(r.main, overlay)

	r.logger.Debug("renderer ready", "width", r.width, "height", r.height, "samples", r.backend.SampleCount())
	return nil
}

// createDepth replaces the depth attachment with one matching the current surface size.
func (r *renderer) createDepth() error {
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTexture.Release()
		r.depthView, r.depthTexture = nil, nil
	}
	tex, err := r.backend.CreateTexture(gpu.TextureDescriptor{
		Label:         "Depth",
		Size:          gpu.Extent3D{Width: r.width, Height: r.height, DepthOrArrayLayers: 1},
		Format:        gpu.TextureFormatDepth32Float,
		Dimension:     gpu.TextureDimension2D,
		Usage:         gpu.TextureUsageRenderAttachment,
		MipLevelCount: 1,
		SampleCount:   r.backend.SampleCount(),
	})
	if err != nil {
		return errors.Wrap(err, "create depth texture")
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return errors.Wrap(err, "create depth view")
	}
	r.depthTexture, r.depthView = tex, view
	return nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingSize = &[2]uint32{uint32(width), uint32(height)}
}

func (r *renderer) DepthSize() (uint32, uint32) {
	if r.depthTexture == nil {
		return 0, 0
	}
	return r.depthTexture.Width(), r.depthTexture.Height()
}

func (r *renderer) Overlay() *ui.TextOverlay {
	return r.overlay
}

// applyResize reconfigures the surface and the depth attachment when a resize is pending.
func (r *renderer) applyResize() error {
	r.mu.Lock()
	size := r.pendingSize
	r.pendingSize = nil
	r.mu.Unlock()
	if size == nil || (size[0] == r.width && size[1] == r.height) {
		return nil
	}

	r.width, r.height = size[0], size[1]
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return errors.Wrap(err, "configure surface")
	}
	if err := r.createDepth(); err != nil {
		return err
	}
	r.logger.Debug("surface resized", "width", r.width, "height", r.height)
	return nil
}

// acquire returns the swapchain frame. A false result with a nil error means the frame is skipped.
func (r *renderer) acquire() (gpu.Frame, bool, error) {
	frame, err := r.backend.AcquireFrame()
	switch {
	case err == nil:
		return frame, true, nil
	case errors.Is(err, gpu.ErrSurfaceLost), errors.Is(err, gpu.ErrSurfaceOutdated):
		if cerr := r.backend.ConfigureSurface(r.width, r.height); cerr != nil {
			return gpu.Frame{}, false, fatal(cerr, "reconfigure surface")
		}
		r.logger.Info("surface recovered", "width", r.width, "height", r.height, "cause", err)
		return gpu.Frame{}, false, nil
	case errors.Is(err, gpu.ErrSurfaceTimeout):
		r.logger.Debug("surface acquire timed out, skipping frame")
		return gpu.Frame{}, false, nil
	default:
		return gpu.Frame{}, false, fatal(err, "acquire frame")
	}
}

// packLights aggregates the point lights, binds a shadow layer to every shadow-casting directional light on
// first sight and packs the sun.
func (r *renderer) packLights(snap scene.Snapshot, report *FrameReport) []bind_group_provider.BufferWrite {
	points := r.aggregator.Aggregate(snap.PointLights)
	report.PointLights = int(points.LightsUsed)
	report.DroppedLights = len(snap.PointLights) - int(points.LightsUsed)

	live := make(map[uuid.UUID]struct{}, len(snap.DirectionalLights))
	for _, d := range snap.DirectionalLights {
		if d.Light.CastsShadows {
			live[d.Entity] = struct{}{}
		}
	}
	r.atlas.Retain(live)

	for _, d := range snap.DirectionalLights {
		if !d.Light.CastsShadows {
			continue
		}
		if r.atlas.Assign(d.Entity).Bound() {
			report.ShadowCasters++
		} else if !r.atlasFull {
			r.atlasFull = true
			r.logger.Warn("shadow atlas full, light is not shadowed", "light", d.Entity, "layers", light.MaxShadowLayers)
		}
	}

	directional := light.GPUDirectionalLight{Direction: [3]float32{0, -1, 0}, ShadowLayer: -1}
	if sun, ok := pass.Sun(snap); ok {
		layer := r.atlas.Binding(sun.Entity).ShaderLayer()
		directional = light.ToGPUDirectionalLight(sun.Light, layer)
	}
	return r.lights.Update(points, directional)
}

// countVisible tests every opaque instance of a loaded model against the camera frustum.
func (r *renderer) countVisible(snap scene.Snapshot, cam camera.Camera) int {
	frustum := common.NewFrustum(cam.ProjectionMatrix().Mul4(cam.ViewMatrix()))
	visible := 0
	for _, g := range snap.Groups {
		m, ok := r.assets.Models.Get(g.Model)
		if !ok {
			continue
		}
		for _, inst := range g.Opaque {
			s := inst.Transform.Normalized().Scale
			radius := m.BoundingRadius() * max(mgl32.Abs(s[0]), mgl32.Abs(s[1]), mgl32.Abs(s[2]))
			if frustum.ContainsSphere(inst.Transform.Position, radius) {
				visible++
			}
		}
	}
	return visible
}

func (r *renderer) RenderFrame(world scene.World, cam camera.Camera) (FrameReport, error) {
	began := time.Now()
	r.frame++
	report := FrameReport{Frame: r.frame}

	if err := r.applyResize(); err != nil {
		return report, fatal(err, "resize")
	}
	report.Width, report.Height = r.width, r.height

	frame, ok, err := r.acquire()
	if err != nil || !ok {
		report.Skipped = true
		report.CPUTime = time.Since(began)
		return report, err
	}

	uniform := cam.Uniform()
	r.camera.Write(r.backend, uniform)

	ctx := asset.UploadContext{Backend: r.backend}
	models, err := r.assets.Models.DrainPending(ctx)
	if err != nil {
		return report, fatal(err, "drain models")
	}
	heightMaps, err := r.assets.HeightMaps.DrainPending(ctx)
	if err != nil {
		return report, fatal(err, "drain height maps")
	}
	report.AssetsLoaded = models.Len() + heightMaps.Len()

	snap := world.Snapshot()
	enc, err := r.backend.CreateCommandEncoder(fmt.Sprintf("Frame %d", r.frame))
	if err != nil {
		return report, fatal(err, "create command encoder")
	}
	defer enc.Release()

	offsets, err := r.uploader.Upload(enc, snap, r.assets.Models)
	if err != nil {
		return report, fatal(err, "upload instances")
	}
	report.Instances = offsets.Total()
	report.Models = offsets.Len()
	report.Visible = r.countVisible(snap, cam)

	bind_group_provider.WriteBuffers(r.backend, r.packLights(snap, &report))

	r.drawList.Reset(float32(r.width), float32(r.height))
	if r.overlay != nil {
		r.overlay.Build(r.drawList)
	}

	f := &pass.Frame{
		Backend:    r.backend,
		Encoder:    enc,
		Color:      frame.View,
		Resolve:    frame.ResolveTarget,
		Depth:      r.depthView,
		Width:      r.width,
		Height:     r.height,
		Camera:     uniform,
		Snapshot:   snap,
		Offsets:    offsets,
		Models:     r.assets.Models,
		HeightMaps: r.assets.HeightMaps,
		UI:         r.drawList,
		Time:       float32(time.Since(r.start).Seconds()),
	}

	passes := append([]pass.Pass{r.shadow, r.environment}, r.main...)
	for _, p := range passes {
		if err := p.Render(f); err != nil {
			return report, fatal(err, p.Name())
		}
	}

	cb, err := enc.Finish()
	if err != nil {
		return report, fatal(err, "finish command encoder")
	}
	r.backend.Submit(cb)
	r.backend.Present()

	report.Passes = f.Passes
	report.Draws = f.Draws
	for _, label := range f.Passes {
		if label == r.environment.Name() {
			report.Surfaces++
		}
	}
	report.CPUTime = time.Since(began)
	return report, nil
}

func (r *renderer) Release() {
	if r.environment != nil {
		r.environment.Release()
		r.environment = nil
	}
	if r.shadow != nil {
		r.shadow.Release()
		r.shadow = nil
	}
	for _, p := range r.main {
		p.Release()
	}
	r.main = nil
	if r.uploader != nil {
		r.uploader.Release()
		r.uploader = nil
	}
	if r.atlas != nil {
		r.atlas.Release()
		r.atlas = nil
	}
	if r.lights != nil {
		r.lights.Release()
		r.lights = nil
	}
	if r.camera != nil {
		r.camera.Release()
		r.camera = nil
	}
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTexture.Release()
		r.depthView, r.depthTexture = nil, nil
	}
}
