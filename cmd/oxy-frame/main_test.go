package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-frame/engine/asset"
	"github.com/Carmen-Shannon/oxy-frame/engine/config"
	"github.com/Carmen-Shannon/oxy-frame/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-frame/engine/heightmap"
	"github.com/Carmen-Shannon/oxy-frame/engine/logger"
	"github.com/Carmen-Shannon/oxy-frame/engine/model"
	"github.com/Carmen-Shannon/oxy-frame/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-frame/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "../.."

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestShippedConfigIsValid(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(root, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cfg.Renderer.MSAA)
	assert.True(t, cfg.Assets.Watch)
}

func TestDemoSceneSpawns(t *testing.T) {
	m, err := scene.LoadManifest(filepath.Join(root, "assets/scenes/demo.yaml"))
	require.NoError(t, err)

	rec := gputest.NewRecorder()
	quiet := logger.NewWithWriter(&bytes.Buffer{}, "error", "test")
	layout, err := material.NewLayout(rec)
	require.NoError(t, err)
	models := asset.NewStore[model.Model](model.NewLoader(layout), asset.WithWorkers(0), asset.WithLogger(quiet))
	heightMaps := asset.NewStore[heightmap.HeightMap](heightmap.NewLoader(), asset.WithWorkers(0), asset.WithLogger(quiet))

	w := scene.NewWorld()
	spawned, err := m.Spawn(w, filepath.Join(root, "assets"), models, heightMaps)
	require.NoError(t, err)
	assert.Len(t, spawned, 50+3+1+1+1+16)
	assert.Equal(t, 1, models.Pending(), "every cube entity shares one load")
	assert.Equal(t, 1, heightMaps.Pending())
}
