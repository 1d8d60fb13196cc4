// Package config loads the engine configuration from TOML.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-frame/common"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// PresentMode names the swapchain presentation strategy in configuration files.
type PresentMode string

const (
	PresentModeVSync     PresentMode = "vsync"
	PresentModeImmediate PresentMode = "immediate"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
	Log      LogConfig      `toml:"log"`
	Debug    DebugConfig    `toml:"debug"`
	UI       UIConfig       `toml:"ui"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type RendererConfig struct {
	PresentMode PresentMode `toml:"present_mode"`
	// MSAA is the color attachment sample count (1 or 4).
	MSAA       uint32     `toml:"msaa"`
	ClearColor [4]float64 `toml:"clear_color"`
	// ShadowMapSize is the width and height of every shadow atlas layer.
	ShadowMapSize      uint32 `toml:"shadow_map_size"`
	MaxInstances       uint32 `toml:"max_instances"`
	EnvironmentMapSize uint32 `toml:"environment_map_size"`
	Software           bool   `toml:"software"`
}

type AssetsConfig struct {
	Root      string `toml:"root"`
	ShaderDir string `toml:"shader_dir"`
	Watch     bool   `toml:"watch"`
	Workers   int    `toml:"workers"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type DebugConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type UIConfig struct {
	// Font is a BMFont descriptor path relative to the assets root. Empty disables the text overlay.
	Font string `toml:"font"`
}

// Default returns the configuration used when no file is given, and the base every file is decoded over.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "oxy-frame",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			PresentMode:        PresentModeVSync,
			MSAA:               1,
			ClearColor:         [4]float64{0.1, 0.2, 0.3, 1.0},
			ShadowMapSize:      2048,
			MaxInstances:       1024,
			EnvironmentMapSize: 512,
		},
		Assets: AssetsConfig{
			Root:      "assets",
			ShaderDir: "assets/shaders",
			Workers:   4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Debug: DebugConfig{
			Addr: "127.0.0.1:7070",
		},
	}
}

// Load reads a TOML file over Default. Unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - *Config: the decoded and validated configuration
//   - error: error if the file cannot be read, decoded, or fails validation
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML bytes over Default and validates the result.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that the renderer relies on.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.PresentMode {
	case PresentModeVSync, PresentModeImmediate:
	default:
		return fmt.Errorf("unknown present_mode %q", c.Renderer.PresentMode)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		return fmt.Errorf("msaa must be 1 or 4, got %d", c.Renderer.MSAA)
	}
	for i, ch := range c.Renderer.ClearColor {
		if common.Clamp(ch, 0, 1) != ch {
			return fmt.Errorf("clear_color[%d] out of range: %v", i, ch)
		}
	}
	if c.Renderer.ShadowMapSize == 0 || c.Renderer.ShadowMapSize&(c.Renderer.ShadowMapSize-1) != 0 {
		return fmt.Errorf("shadow_map_size must be a power of two, got %d", c.Renderer.ShadowMapSize)
	}
	if c.Renderer.MaxInstances == 0 {
		return fmt.Errorf("max_instances must be positive")
	}
	if c.Renderer.EnvironmentMapSize == 0 {
		return fmt.Errorf("environment_map_size must be positive")
	}
	if c.Assets.Workers < 1 {
		return fmt.Errorf("assets.workers must be at least 1, got %d", c.Assets.Workers)
	}
	if c.Debug.Enabled && c.Debug.Addr == "" {
		return fmt.Errorf("debug.addr required when debug is enabled")
	}
	return nil
}
