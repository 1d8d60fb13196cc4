package pass

import (
	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/ui"
	"github.com/charmbracelet/log"
)

// DefaultEnvironmentSize is the edge length of an environment map in pixels.
const DefaultEnvironmentSize = 512

// DefaultClearColor is the sky color used when a pass clears without a skybox texture.
var DefaultClearColor = gpu.Color{R: 0.45, G: 0.62, B: 0.85, A: 1}

// config collects the construction settings of every pass. Each pass reads the fields it needs.
type config struct {
	logger          *log.Logger
	shaderDir       string
	clearColor      gpu.Color
	skyFaces        []common.TextureStagingData
	environmentSize uint32
	font            *ui.Font
}

// PassBuilderOption is a function that configures a pass during construction.
type PassBuilderOption func(*config)

func newConfig(opts []PassBuilderOption) *config {
	c := &config{
		clearColor:      DefaultClearColor,
		environmentSize: DefaultEnvironmentSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Default()
	}
	return c
}

// WithLogger sets the logger of the pass.
func WithLogger(l *log.Logger) PassBuilderOption {
	return func(c *config) {
		c.logger = l
	}
}

// WithShaderDir makes passes load <dir>/<pass shader>.wgsl when it exists instead of the built-in source.
//
// Parameters:
//   - dir: the override directory, "" for built-in shaders only
//
// Returns:
//   - PassBuilderOption: a function that applies the directory
func WithShaderDir(dir string) PassBuilderOption {
	return func(c *config) {
		c.shaderDir = dir
	}
}

// WithClearColor sets the color the skybox and environment passes clear to.
func WithClearColor(color gpu.Color) PassBuilderOption {
	return func(c *config) {
		c.clearColor = color
	}
}

// WithSkyboxFaces sets the six cube faces of the skybox in +X, -X, +Y, -Y, +Z, -Z order.
// Without it the skybox is a solid cube of the clear color.
func WithSkyboxFaces(faces ...common.TextureStagingData) PassBuilderOption {
	return func(c *config) {
		c.skyFaces = faces
	}
}

// WithEnvironmentSize sets the edge length of the environment maps in pixels.
func WithEnvironmentSize(size uint32) PassBuilderOption {
	return func(c *config) {
		if size > 0 {
			c.environmentSize = size
		}
	}
}

// WithFont sets the font the UI pass samples. Without it the UI draws untextured quads only.
func WithFont(f *ui.Font) PassBuilderOption {
	return func(c *config) {
		c.font = f
	}
}
