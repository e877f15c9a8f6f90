package world

import (
	"context"
	"fmt"

	"github.com/annel0/voxel-terrain/internal/config"
	"github.com/annel0/voxel-terrain/internal/logging"
	"github.com/annel0/voxel-terrain/internal/mesh"
	"github.com/annel0/voxel-terrain/internal/stencil"
	"github.com/annel0/voxel-terrain/internal/storage"
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
)

// SessionDeps - внешние зависимости сессии мира; все поля необязательны
type SessionDeps struct {
	Registerer       prometheus.Registerer
	MeshConsumer     MeshConsumer
	ColliderConsumer ColliderConsumer
	Logger           *logging.Logger
	StorageLogger    *logging.Logger
	MeshLogger       *logging.Logger
}

// Session связывает генератор, сохранения и хранилище чанков одного загруженного мира
type Session struct {
	cfg     *config.Config
	info    *storage.WorldInfo
	manager *storage.Manager
	store   *ChunkStore
	logger  *logging.Logger
}

// NewSession создаёт сессию. info == nil или без директории означает мир без сохранений;
// сид мира, если он есть, заменяет сид генерации из конфигурации.
func NewSession(cfg *config.Config, info *storage.WorldInfo, deps SessionDeps) (*Session, error) {
	gen := cfg.Generation
	if info.Valid() {
		gen.Seed = info.Seed
	}
	generator, err := NewGenerator(gen)
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, info: info, logger: deps.Logger}

	var persistence Persistence
	if info.Valid() && info.Dir() != "" {
		backend, err := storage.OpenBackend(cfg.Storage.Backend, info.Dir())
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть хранилище мира: %w", err)
		}
		compression, err := storage.ParseCompression(cfg.Storage.Compression)
		if err != nil {
			backend.Close()
			return nil, err
		}

		var storageMetrics *storage.Metrics
		if deps.Registerer != nil {
			storageMetrics = storage.NewMetrics(deps.Registerer)
		}
		s.manager, err = storage.NewManager(backend, info, storage.Options{
			RegionResolution: cfg.Storage.RegionResolution,
			Compression:      compression,
			Logger:           deps.StorageLogger,
			Metrics:          storageMetrics,
		})
		if err != nil {
			backend.Close()
			return nil, err
		}
		persistence = s.manager
	}

	mesher := mesh.NewMesher(cfg.World.MeshWorkers, nil)
	mesher.SetLogger(deps.MeshLogger)

	opts := []Option{
		WithMesher(mesher),
		WithLogger(deps.Logger),
	}
	if deps.Registerer != nil {
		opts = append(opts, WithMetrics(NewMetrics(deps.Registerer)))
	}
	if deps.MeshConsumer != nil {
		opts = append(opts, WithMeshConsumer(deps.MeshConsumer))
	}
	if deps.ColliderConsumer != nil {
		opts = append(opts, WithColliderConsumer(deps.ColliderConsumer))
	}

	s.store, err = NewChunkStore(cfg.World, persistence, generator, opts...)
	if err != nil {
		if s.manager != nil {
			s.manager.Close()
		}
		return nil, err
	}
	return s, nil
}

// Startup отмечает время последней игры мира
func (s *Session) Startup() error {
	if !s.info.Valid() {
		s.logger.Warn("⚠️ Мир не выбран: изменения не будут сохранены")
		return nil
	}
	if err := s.info.Touch(); err != nil {
		return err
	}
	s.logger.Info("🌍 Мир %q (%s) загружен, сид %d", s.info.Name, s.info.ID, s.info.Seed)
	return nil
}

// Update выполняет проход хранилища вокруг наблюдателя
func (s *Session) Update(ctx context.Context, viewer vec.Vec2Float) error {
	return s.store.Update(ctx, viewer)
}

// Edit применяет форму к миру
func (s *Session) Edit(point vec.Vec2Float, st stencil.Stencil) (bool, error) {
	return s.store.Edit(point, st)
}

// Store возвращает хранилище чанков
func (s *Session) Store() *ChunkStore {
	return s.store
}

// Shutdown сохраняет все резидентные чанки и закрывает хранилище
func (s *Session) Shutdown() error {
	if err := s.store.SaveAll(); err != nil {
		return err
	}
	if s.manager != nil {
		if err := s.manager.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия хранилища: %w", err)
		}
	}
	s.logger.Info("💾 Мир сохранён")
	return nil
}
