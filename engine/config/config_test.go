package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(2048), cfg.Renderer.ShadowMapSize)
	assert.Equal(t, uint32(1024), cfg.Renderer.MaxInstances)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
title = "demo"
width = 640

[renderer]
present_mode = "immediate"
msaa = 4

[debug]
enabled = true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, PresentModeImmediate, cfg.Renderer.PresentMode)
	assert.Equal(t, uint32(4), cfg.Renderer.MSAA)
	assert.True(t, cfg.Debug.Enabled)
	assert.Equal(t, "127.0.0.1:7070", cfg.Debug.Addr)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown key", "[window]\ncolour = 3\n"},
		{"bad msaa", "[renderer]\nmsaa = 2\n"},
		{"bad present mode", "[renderer]\npresent_mode = \"mailbox\"\n"},
		{"shadow size not pow2", "[renderer]\nshadow_map_size = 1000\n"},
		{"clear color range", "[renderer]\nclear_color = [2.0, 0.0, 0.0, 1.0]\n"},
		{"zero workers", "[assets]\nworkers = 0\n"},
		{"negative width", "[window]\nwidth = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
