package world

import (
	"context"
	"testing"

	"github.com/annel0/voxel-terrain/internal/config"
	"github.com/annel0/voxel-terrain/internal/stencil"
	"github.com/annel0/voxel-terrain/internal/storage"
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionConfig(dataPath, backend string) *config.Config {
	cfg := config.Default()
	cfg.World.Name = "session"
	cfg.World.FieldResolution = 8
	cfg.World.VoxelResolution = 8
	cfg.World.ChunkResolution = 7
	cfg.World.ViewDistance = 3
	cfg.Storage.DataPath = dataPath
	cfg.Storage.Backend = backend
	cfg.Generation.Mode = "off"
	return cfg
}

func TestSessionPersistsEditsAcrossRestart(t *testing.T) {
	for _, backend := range []string{"file", "badger"} {
		t.Run(backend, func(t *testing.T) {
			cfg := sessionConfig(t.TempDir(), backend)
			ctx := context.Background()

			info, err := storage.OpenWorld(cfg.Storage.GetDataPath(), cfg.World.Name, 7)
			require.NoError(t, err)

			s, err := NewSession(cfg, info, SessionDeps{Registerer: prometheus.NewRegistry()})
			require.NoError(t, err)
			require.NoError(t, s.Startup())
			require.NoError(t, s.Update(ctx, vec.Vec2Float{}))

			changed, err := s.Edit(vec.Vec2Float{X: 2.5, Y: 2.5}, stencil.NewCircle(3, 1))
			require.NoError(t, err)
			require.True(t, changed)
			require.NoError(t, s.Shutdown())

			info, err = storage.OpenWorld(cfg.Storage.GetDataPath(), cfg.World.Name, 7)
			require.NoError(t, err)
			s, err = NewSession(cfg, info, SessionDeps{})
			require.NoError(t, err)
			require.NoError(t, s.Update(ctx, vec.Vec2Float{}))

			c, ok := s.Store().Chunk(vec.Vec2{X: 0, Y: 0})
			require.True(t, ok)
			assert.Equal(t, 3, c.Field.State(2, 2))
			assert.Equal(t, 3, c.Field.State(1, 2))
			assert.Equal(t, 0, c.Field.State(1, 1))
			assert.Positive(t, s.Store().Stats().RegionsOpen)
			require.NoError(t, s.Shutdown())
		})
	}
}

func TestSessionEvictionSavesToRegions(t *testing.T) {
	cfg := sessionConfig(t.TempDir(), "file")
	ctx := context.Background()

	info, err := storage.OpenWorld(cfg.Storage.GetDataPath(), cfg.World.Name, 1)
	require.NoError(t, err)
	s, err := NewSession(cfg, info, SessionDeps{})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, vec.Vec2Float{}))
	_, err = s.Edit(vec.Vec2Float{X: 1.5, Y: 1.5}, stencil.NewSquare(2, 0))
	require.NoError(t, err)

	// Уходим далеко: чанк (0,0) вытесняется с сохранением, его регион закрывается
	require.NoError(t, s.Update(ctx, vec.Vec2Float{X: 800}))
	_, ok := s.Store().Chunk(vec.Vec2{})
	require.False(t, ok)

	require.NoError(t, s.Update(ctx, vec.Vec2Float{}))
	c, ok := s.Store().Chunk(vec.Vec2{})
	require.True(t, ok)
	assert.Equal(t, 2, c.Field.State(1, 1))
	require.NoError(t, s.Shutdown())
}

func TestSessionWithoutWorld(t *testing.T) {
	cfg := sessionConfig(t.TempDir(), "file")

	s, err := NewSession(cfg, nil, SessionDeps{})
	require.NoError(t, err)
	require.NoError(t, s.Startup())
	require.NoError(t, s.Update(context.Background(), vec.Vec2Float{}))
	assert.Equal(t, 21, s.Store().Stats().Resident)
	require.NoError(t, s.Shutdown())
}

func TestSessionUsesWorldSeed(t *testing.T) {
	dir := t.TempDir()
	cfg := sessionConfig(dir, "file")
	cfg.Generation.Mode = "random"
	cfg.Generation.Seed = 1

	info := storage.NewWorldInfo("memory", 99)
	s, err := NewSession(cfg, info, SessionDeps{})
	require.NoError(t, err)
	require.NoError(t, s.Update(context.Background(), vec.Vec2Float{}))

	c, _ := s.Store().Chunk(vec.Vec2{})
	want := generate(RandomGenerator{Seed: 99, States: cfg.Generation.States}, vec.Vec2{}, 8)
	assert.True(t, want.Equal(c.Field))
}
