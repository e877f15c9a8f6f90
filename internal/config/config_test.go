package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	t.Setenv("TERRAIN_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  name: island
  chunk_resolution: 8
storage:
  backend: badger
generation:
  mode: random
  seed: 99
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "island", cfg.World.Name)
	assert.Equal(t, 8, cfg.World.ChunkResolution)
	assert.Equal(t, 6, cfg.World.ViewDistance)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 8, cfg.Storage.RegionResolution)
	assert.Equal(t, "zstd", cfg.Storage.Compression)
	assert.Equal(t, int64(99), cfg.Generation.Seed)
	assert.Equal(t, 4, cfg.Generation.States)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "world:\n  name: env\n")
	t.Setenv("TERRAIN_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.World.Name)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "storage:\n  region_resolution: 7\n")
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"voxel resolution", func(c *Config) { c.World.VoxelResolution = 0 }},
		{"chunk resolution", func(c *Config) { c.World.ChunkResolution = 0 }},
		{"field resolution", func(c *Config) { c.World.FieldResolution = -1 }},
		{"backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"compression", func(c *Config) { c.Storage.Compression = "lz4" }},
		{"mode", func(c *Config) { c.Generation.Mode = "caves" }},
		{"workers", func(c *Config) { c.World.MeshWorkers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("TERRAIN_DATA_PATH", "/srv/worlds")
	t.Setenv("TERRAIN_METRICS_ADDR", ":9000")

	var s StorageConfig
	var m MetricsConfig
	assert.Equal(t, "/srv/worlds", s.GetDataPath())
	assert.Equal(t, ":9000", m.GetAddr())

	s.DataPath = "local"
	assert.Equal(t, "local", s.GetDataPath())

	cfg := Default()
	cfg.World.Name = "w"
	assert.Equal(t, filepath.Join("/srv/worlds", "w"), cfg.WorldDir())
}
