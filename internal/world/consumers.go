package world

import (
	"github.com/annel0/voxel-terrain/internal/mesh"
	"github.com/annel0/voxel-terrain/internal/storage"
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/annel0/voxel-terrain/internal/voxel"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshConsumer получает построенные сетки чанков (отрисовка вне ядра)
type MeshConsumer interface {
	UpdateMesh(coord vec.Vec2, m *mesh.Mesh)
	RemoveMesh(coord vec.Vec2)
}

// ColliderConsumer получает контуры чанков для регистрации в физике
type ColliderConsumer interface {
	UpdateColliders(coord vec.Vec2, outlines [][]mgl32.Vec2)
	RemoveColliders(coord vec.Vec2)
}

// Persistence - сохранение полей чанков по регионам
type Persistence interface {
	Load(coord vec.Vec2) (*voxel.Field, bool)
	Evict(coord vec.Vec2, field *voxel.Field) error
	CloseEmptyRegions() error
	SaveAll(snapshots []storage.Snapshot) error
}

// nopPersistence используется, когда сохранения отключены
type nopPersistence struct{}

func (nopPersistence) Load(vec.Vec2) (*voxel.Field, bool) { return nil, false }
func (nopPersistence) Evict(vec.Vec2, *voxel.Field) error { return nil }
func (nopPersistence) CloseEmptyRegions() error           { return nil }
func (nopPersistence) SaveAll([]storage.Snapshot) error   { return nil }
