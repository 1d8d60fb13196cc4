// Command oxy-frame opens a window, loads a scene manifest and renders it until the window closes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Carmen-Shannon/oxy-frame/engine"
	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/config"
	"github.com/Carmen-Shannon/oxy-frame/engine/debugserver"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/profiler"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pass"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/Carmen-Shannon/oxy-frame/engine/ui"
	"github.com/Carmen-Shannon/oxy-frame/engine/window"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

func main() {
	var configPath, scenePath string
	flag.StringVar(&configPath, "config", "config.toml", "Path to the TOML configuration, ignored when missing")
	flag.StringVar(&scenePath, "scene", "assets/scenes/demo.yaml", "Path to the scene manifest")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Default().Fatal("configuration", "err", err)
	}
	l := logger.New(cfg.Log.Level, "oxy")
	logger.SetDefault(l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, scenePath, l); err != nil {
		l.Error("exiting", "err", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(ctx context.Context, cfg *config.Config, scenePath string, l *log.Logger) error {
	manifest, err := scene.LoadManifest(scenePath)
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode := gpu.PresentModeVSync
	if cfg.Renderer.PresentMode == config.PresentModeImmediate {
		presentMode = gpu.PresentModeImmediate
	}
	backend, err := gpu.NewWGPUBackend(win.SurfaceDescriptor(),
		gpu.WithPresentMode(presentMode),
		gpu.WithMSAA(cfg.Renderer.MSAA),
		gpu.WithForceSoftwareRenderer(cfg.Renderer.Software),
		gpu.WithLogger(l),
	)
	if err != nil {
		return errors.Wrap(err, "create GPU backend")
	}
	defer backend.Release()

	// Materials bind against the shared layout, so it exists before the model loader.
	layout, err := material.NewLayout(backend)
	if err != nil {
		return errors.Wrap(err, "create material layout")
	}
	defer layout.Release()

	models := asset.NewStore[model.Model](
		model.NewLoader(layout, model.WithLoaderMaxInstances(int(cfg.Renderer.MaxInstances))),
		asset.WithName("models"), asset.WithWorkers(cfg.Assets.Workers), asset.WithLogger(l),
	)
	defer models.Release()
	heightMaps := asset.NewStore[heightmap.HeightMap](heightmap.NewLoader(),
		asset.WithName("heightmaps"), asset.WithWorkers(cfg.Assets.Workers), asset.WithLogger(l),
	)
	defer heightMaps.Release()

	world := scene.NewWorld()
	if _, err := manifest.Spawn(world, cfg.Assets.Root, models, heightMaps); err != nil {
		return err
	}

	c := cfg.Renderer.ClearColor
	passOpts := []pass.PassBuilderOption{
		pass.WithClearColor(gpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}),
		pass.WithEnvironmentSize(cfg.Renderer.EnvironmentMapSize),
	}
	if cfg.Assets.ShaderDir != "" {
		passOpts = append(passOpts, pass.WithShaderDir(cfg.Assets.ShaderDir))
	}

	width, height := win.FramebufferSize()
	rendererOpts := []renderer.RendererBuilderOption{
		renderer.WithLogger(l),
		renderer.WithSurfaceSize(uint32(max(width, 1)), uint32(max(height, 1))),
		renderer.WithShadowMapSize(cfg.Renderer.ShadowMapSize),
		renderer.WithPassOptions(passOpts...),
	}
	if cfg.UI.Font != "" {
		font, err := ui.LoadFont(filepath.Join(cfg.Assets.Root, cfg.UI.Font))
		if err != nil {
			return err
		}
		rendererOpts = append(rendererOpts, renderer.WithFont(font))
	}
	r, err := renderer.NewRenderer(backend, renderer.Assets{Models: models, HeightMaps: heightMaps, Materials: layout}, rendererOpts...)
	if err != nil {
		return err
	}
	defer r.Release()

	prof := profiler.NewProfiler(profiler.WithLogger(l))
	engineOpts := []engine.EngineBuilderOption{
		engine.WithLogger(l),
		engine.WithWorld(world),
		engine.WithProfiler(prof),
		engine.WithStatsOverlay(cfg.UI.Font != ""),
		engine.WithCamera(camera.NewCamera(
			camera.WithAspect(float32(max(width, 1))/float32(max(height, 1))),
			camera.WithClipPlanes(0.1, 2000),
			camera.WithController(camera.NewCameraController(camera.WithRadius(40))),
		)),
	}
	if cfg.Assets.Watch {
		w, err := asset.NewWatcher(l, models, heightMaps)
		if err != nil {
			return err
		}
		defer w.Close()
		engineOpts = append(engineOpts, engine.WithWatcher(w))
	}
	if cfg.Debug.Enabled {
		engineOpts = append(engineOpts, engine.WithDebugServer(debugserver.NewServer(prof,
			debugserver.WithAddr(cfg.Debug.Addr),
			debugserver.WithLogger(l),
		)))
	}

	l.Info("scene loaded", "path", scenePath, "entities", world.Len())
	return engine.NewEngine(win, r, engineOpts...).Run(ctx)
}
