package world

import (
	"errors"

	"github.com/annel0/voxel-terrain/internal/config"
	"github.com/annel0/voxel-terrain/internal/mesh"
	"github.com/annel0/voxel-terrain/internal/storage"
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/annel0/voxel-terrain/internal/voxel"
	"github.com/go-gl/mathgl/mgl32"
)

// testConfig: одна мировая единица равна одной ячейке
func testConfig(viewDistance, window, res int) config.WorldConfig {
	return config.WorldConfig{
		VoxelResolution: float64(res),
		FieldResolution: res,
		ChunkResolution: window,
		ViewDistance:    viewDistance,
		ColliderRadius:  viewDistance,
		MeshWorkers:     1,
	}
}

// chunkPos возвращает мировую позицию центра чанка для testConfig
func chunkPos(x, y, res int) vec.Vec2Float {
	return vec.Vec2Float{X: float64(x * res), Y: float64(y * res)}
}

type memoryPersistence struct {
	saved     map[vec.Vec2]*voxel.Field
	evictions map[vec.Vec2]int
	loads     int
	failEvict error
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{
		saved:     make(map[vec.Vec2]*voxel.Field),
		evictions: make(map[vec.Vec2]int),
	}
}

func (p *memoryPersistence) Load(coord vec.Vec2) (*voxel.Field, bool) {
	p.loads++
	f, ok := p.saved[coord]
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

func (p *memoryPersistence) Evict(coord vec.Vec2, field *voxel.Field) error {
	if p.failEvict != nil {
		return p.failEvict
	}
	p.evictions[coord]++
	p.saved[coord] = field.Clone()
	return nil
}

func (p *memoryPersistence) CloseEmptyRegions() error { return nil }

func (p *memoryPersistence) SaveAll(snapshots []storage.Snapshot) error {
	for _, s := range snapshots {
		p.saved[s.Coord] = s.Field.Clone()
	}
	return nil
}

var errDiskFull = errors.New("disk full")

type recordingConsumer struct {
	meshes           []vec.Vec2
	removedMeshes    []vec.Vec2
	colliders        []vec.Vec2
	removedColliders []vec.Vec2
	outlines         map[vec.Vec2][][]mgl32.Vec2
}

func newRecordingConsumer() *recordingConsumer {
	return &recordingConsumer{outlines: make(map[vec.Vec2][][]mgl32.Vec2)}
}

func (r *recordingConsumer) UpdateMesh(coord vec.Vec2, _ *mesh.Mesh) {
	r.meshes = append(r.meshes, coord)
}

func (r *recordingConsumer) RemoveMesh(coord vec.Vec2) {
	r.removedMeshes = append(r.removedMeshes, coord)
}

func (r *recordingConsumer) UpdateColliders(coord vec.Vec2, outlines [][]mgl32.Vec2) {
	r.colliders = append(r.colliders, coord)
	r.outlines[coord] = outlines
}

func (r *recordingConsumer) RemoveColliders(coord vec.Vec2) {
	r.removedColliders = append(r.removedColliders, coord)
}

func (r *recordingConsumer) reset() {
	r.meshes = nil
	r.colliders = nil
}

type countingGenerator struct {
	calls int
	inner Generator
}

func (g *countingGenerator) GenerateNoiseValues(f *voxel.Field) {
	g.calls++
	g.inner.GenerateNoiseValues(f)
}
