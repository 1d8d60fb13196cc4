package pass

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-frame/engine/camera"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/light"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-frame/engine/ui"
	"github.com/pkg/errors"
)

var (
	//go:embed assets/shadow.wgsl
	shadowSource string
	//go:embed assets/environment.wgsl
	environmentSource string
	//go:embed assets/skybox.wgsl
	skyboxSource string
	//go:embed assets/model.wgsl
	modelSource string
	//go:embed assets/water_surface.wgsl
	waterSurfaceSource string
	//go:embed assets/light_debug.wgsl
	lightDebugSource string
	//go:embed assets/ui.wgsl
	uiSource string
	//go:embed assets/lighting.wgsl
	lightingSource string
)

// Includes returns the registry every engine shader resolves //@oxy:include against.
//
// Returns:
//   - map[string]string: include name to WGSL source
func Includes() map[string]string {
	return map[string]string{
		"camera":        camera.GPUCameraUniformSource,
		"lights":        light.GPULightSource,
		"vertex":        model.GPUVertexSource,
		"material":      material.GPUMaterialSource,
		"heightmap":     heightmap.GPUHeightMapSource,
		"ui":            ui.GPUUISource,
		"lighting.wgsl": lightingSource,
	}
}

// Sources returns the built-in shader of every pass keyed by file name.
func Sources() map[string]string {
	return map[string]string{
		"shadow.wgsl":        shadowSource,
		"environment.wgsl":   environmentSource,
		"skybox.wgsl":        skyboxSource,
		"model.wgsl":         modelSource,
		"water_surface.wgsl": waterSurfaceSource,
		"light_debug.wgsl":   lightDebugSource,
		"ui.wgsl":            uiSource,
	}
}

// loadShader prefers name in the configured shader directory and falls back to the built-in source.
func loadShader(cfg *config, key, name string, opts ...shader.ShaderBuilderOption) (shader.Shader, error) {
	opts = append([]shader.ShaderBuilderOption{shader.WithIncludes(Includes())}, opts...)
	if cfg.shaderDir != "" {
		path := filepath.Join(cfg.shaderDir, name)
		if _, err := os.Stat(path); err == nil {
			cfg.logger.Debug("shader override", "pass", key, "path", path)
			return shader.LoadShader(key, path, opts...)
		}
	}
	return shader.NewShaderFromSource(key, Sources()[name], opts...)
}

// buildPipeline loads the shader, then creates the pipeline.
func buildPipeline(backend gpu.Backend, cfg *config, key, shaderName string, shaderOpts []shader.ShaderBuilderOption, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	s, err := loadShader(cfg, key, shaderName, shaderOpts...)
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(key, append([]pipeline.PipelineBuilderOption{pipeline.WithShader(s)}, opts...)...)
	if err := p.Build(backend); err != nil {
		return nil, errors.Wrapf(err, "pass %s", key)
	}
	return p, nil
}
