package world

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/annel0/voxel-terrain/internal/config"
	"github.com/annel0/voxel-terrain/internal/logging"
	"github.com/annel0/voxel-terrain/internal/mesh"
	"github.com/annel0/voxel-terrain/internal/storage"
	"github.com/annel0/voxel-terrain/internal/vec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/annel0/voxel-terrain/internal/world"

// Направления соседей, которых касается сетка чанка: она читает +x, +y и +x+y
var (
	dirX  = vec.Vec2{X: 1, Y: 0}
	dirY  = vec.Vec2{X: 0, Y: 1}
	dirXY = vec.Vec2{X: 1, Y: 1}
)

// Stats - снимок состояния хранилища чанков
type Stats struct {
	Resident      int // Чанков в окне видимости
	Free          int // Чанков в пуле свободных
	Allocated     int // Всего созданных объектов Chunk
	RegionsOpen   int // Открытых регионов сохранений
	MeshesBuilt   int // Всего построенных сеток
	OutlinesBuilt int // Всего перестроений контуров
	Admitted      int
	Evicted       int
}

// Option настраивает ChunkStore
type Option func(*ChunkStore)

// WithMesher задаёт мешер (по умолчанию последовательный с палитрой по умолчанию)
func WithMesher(m *mesh.Mesher) Option {
	return func(s *ChunkStore) { s.mesher = m }
}

// WithMeshConsumer задаёт получателя сеток
func WithMeshConsumer(c MeshConsumer) Option {
	return func(s *ChunkStore) { s.meshConsumer = c }
}

// WithColliderConsumer задаёт получателя контуров
func WithColliderConsumer(c ColliderConsumer) Option {
	return func(s *ChunkStore) { s.colliderConsumer = c }
}

// WithLogger задаёт логгер компонента
func WithLogger(l *logging.Logger) Option {
	return func(s *ChunkStore) { s.logger = l }
}

// WithMetrics задаёт метрики
func WithMetrics(m *Metrics) Option {
	return func(s *ChunkStore) { s.metrics = m }
}

// ChunkStore держит чанки вокруг наблюдателя: принимает, вытесняет, переиспользует и перестраивает их.
// Все операции выполняются синхронно в вызывающей горутине.
type ChunkStore struct {
	cfg         config.WorldConfig
	persistence Persistence
	generator   Generator

	mesher           *mesh.Mesher
	meshConsumer     MeshConsumer
	colliderConsumer ColliderConsumer
	logger           *logging.Logger
	metrics          *Metrics
	tracer           trace.Tracer

	existing map[vec.Vec2]*Chunk // Резидентные чанки по координатам
	chunks   []*Chunk            // Резидентные чанки в порядке приёма
	free     []*Chunk            // Пул свободных чанков

	viewer vec.Vec2 // Чанк наблюдателя на последнем проходе
	stats  Stats
}

// NewChunkStore создаёт хранилище. persistence == nil отключает сохранения;
// generator == nil оставляет новые чанки пустыми.
func NewChunkStore(cfg config.WorldConfig, persistence Persistence, generator Generator, opts ...Option) (*ChunkStore, error) {
	if cfg.FieldResolution < 1 {
		return nil, fmt.Errorf("размер поля чанка должен быть >= 1, получено %d", cfg.FieldResolution)
	}
	if cfg.ChunkResolution < 1 {
		return nil, fmt.Errorf("окно приёма должно быть >= 1, получено %d", cfg.ChunkResolution)
	}
	if cfg.VoxelResolution <= 0 {
		return nil, fmt.Errorf("размер чанка в мире должен быть > 0, получено %v", cfg.VoxelResolution)
	}
	if persistence == nil {
		persistence = nopPersistence{}
	}
	if generator == nil {
		generator = OffGenerator{}
	}

	s := &ChunkStore{
		cfg:         cfg,
		persistence: persistence,
		generator:   generator,
		tracer:      otel.Tracer(tracerName),
		existing:    make(map[vec.Vec2]*Chunk),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mesher == nil {
		s.mesher = mesh.NewMesher(cfg.MeshWorkers, nil)
	}
	return s, nil
}

// ViewerChunk переводит мировую позицию в координаты чанка (с округлением)
func (s *ChunkStore) ViewerChunk(pos vec.Vec2Float) vec.Vec2 {
	return pos.Mul(1 / s.cfg.VoxelResolution).Round()
}

// WorldToCell переводит мировую позицию в глобальные координаты ячейки (с округлением вниз)
func (s *ChunkStore) WorldToCell(pos vec.Vec2Float) vec.Vec2 {
	return pos.Mul(float64(s.cfg.FieldResolution) / s.cfg.VoxelResolution).Floor()
}

// Update выполняет один проход вокруг наблюдателя: вытеснение, приём, связывание соседей, перестроение.
// Ошибка записи при вытеснении прерывает проход и возвращается вызывающему.
func (s *ChunkStore) Update(ctx context.Context, viewer vec.Vec2Float) error {
	ctx, span := s.tracer.Start(ctx, "ChunkStore.Update")
	defer span.End()

	started := time.Now()
	center := s.ViewerChunk(viewer)
	s.viewer = center
	span.SetAttributes(attribute.Int("viewer.x", center.X), attribute.Int("viewer.y", center.Y))

	var t tally
	if err := s.evict(ctx, center, &t); err != nil {
		span.RecordError(err)
		s.metrics.record(t)
		return err
	}
	s.admit(ctx, center, &t)
	if err := s.persistence.CloseEmptyRegions(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("ошибка закрытия регионов: %w", err)
	}
	s.wireNeighbors()
	s.rebuild(ctx, s.chunks, &t)

	s.metrics.record(t)
	s.metrics.observe(s.Stats(), time.Since(started).Seconds())
	span.SetAttributes(
		attribute.Int("chunks.admitted", t.admitted),
		attribute.Int("chunks.evicted", t.evicted),
		attribute.Int("chunks.resident", len(s.chunks)),
	)

	if t.admitted > 0 || t.evicted > 0 {
		s.logger.Debug("🌍 Наблюдатель в %v: принято %d (из пула %d, загружено %d), вытеснено %d, резидентных %d",
			center, t.admitted, t.recycled, t.loaded, t.evicted, len(s.chunks))
	}
	return nil
}

// outOfView - тест скруглённого прямоугольника: расстояние по осям уменьшается на половину дальности
func (s *ChunkStore) outOfView(coord, center vec.Vec2) bool {
	vd := float64(s.cfg.ViewDistance)
	half := vd / 2
	ex := math.Max(math.Abs(float64(coord.X-center.X))-half, 0)
	ey := math.Max(math.Abs(float64(coord.Y-center.Y))-half, 0)
	return ex*ex+ey*ey > vd*vd
}

// inAdmission - приём с внутренним отступом 4 от границы вытеснения
func (s *ChunkStore) inAdmission(coord, center vec.Vec2) bool {
	vd := s.cfg.ViewDistance
	return coord.Sub(center).LengthSq() <= vd*vd-4
}

func (s *ChunkStore) inColliderRadius(coord, center vec.Vec2) bool {
	r := s.cfg.ColliderRadius
	return coord.Sub(center).LengthSq() <= r*r
}

func (s *ChunkStore) evict(ctx context.Context, center vec.Vec2, t *tally) error {
	_, span := s.tracer.Start(ctx, "ChunkStore.evict")
	defer span.End()

	var victims []*Chunk
	for _, c := range s.chunks {
		if s.outOfView(c.Coord(), center) {
			victims = append(victims, c)
		}
	}

	for _, c := range victims {
		coord := c.Coord()
		if err := s.persistence.Evict(coord, c.Field); err != nil {
			return fmt.Errorf("не удалось сохранить чанк %v: %w", coord, err)
		}
		s.release(c)
		t.evicted++
	}
	s.stats.Evicted += t.evicted
	span.SetAttributes(attribute.Int("chunks.evicted", t.evicted))
	return nil
}

// release снимает чанк с учёта, отвязывает соседей, которые на него указывали, и кладёт его в пул
func (s *ChunkStore) release(c *Chunk) {
	coord := c.Coord()
	delete(s.existing, coord)

	if n := s.existing[coord.Sub(dirX)]; n != nil && n.xNeighbor == c {
		n.xNeighbor = nil
		n.shouldUpdateMesh = true
	}
	if n := s.existing[coord.Sub(dirY)]; n != nil && n.yNeighbor == c {
		n.yNeighbor = nil
		n.shouldUpdateMesh = true
	}
	if n := s.existing[coord.Sub(dirXY)]; n != nil && n.xyNeighbor == c {
		n.xyNeighbor = nil
		n.shouldUpdateMesh = true
	}
	c.clearNeighbors()

	for i, r := range s.chunks {
		if r == c {
			s.chunks = append(s.chunks[:i], s.chunks[i+1:]...)
			break
		}
	}
	s.free = append(s.free, c)

	if s.meshConsumer != nil {
		s.meshConsumer.RemoveMesh(coord)
	}
	if s.colliderConsumer != nil {
		s.colliderConsumer.RemoveColliders(coord)
	}
}

// acquire берёт чанк из пула или создаёт новый
func (s *ChunkStore) acquire(t *tally) *Chunk {
	if n := len(s.free); n > 0 {
		c := s.free[n-1]
		s.free[n-1] = nil
		s.free = s.free[:n-1]
		t.recycled++
		return c
	}
	s.stats.Allocated++
	return NewChunk(s.cfg.FieldResolution)
}

func (s *ChunkStore) admit(ctx context.Context, center vec.Vec2, t *tally) {
	_, span := s.tracer.Start(ctx, "ChunkStore.admit")
	defer span.End()

	cr := s.cfg.ChunkResolution
	start := center.Sub(vec.Vec2{X: cr / 2, Y: cr / 2})

	for y := start.Y; y < start.Y+cr; y++ {
		for x := start.X; x < start.X+cr; x++ {
			coord := vec.Vec2{X: x, Y: y}
			if _, ok := s.existing[coord]; ok {
				continue
			}
			if !s.inAdmission(coord, center) {
				continue
			}

			c := s.acquire(t)
			c.Assign(coord)
			s.populate(c, t)

			s.existing[coord] = c
			s.chunks = append(s.chunks, c)
			c.shouldUpdateCollider = true
			t.admitted++
		}
	}
	s.stats.Admitted += t.admitted
	span.SetAttributes(attribute.Int("chunks.admitted", t.admitted))
}

// populate загружает поле чанка из сохранений или генерирует его
func (s *ChunkStore) populate(c *Chunk, t *tally) {
	coord := c.Coord()
	if f, ok := s.persistence.Load(coord); ok {
		if f.Resolution() == c.Field.Resolution() {
			c.Field.CopyFrom(f)
			c.Field.Coord = coord
			t.loaded++
			return
		}
		s.logger.Warn("⚠️ Чанк %v сохранён с размером %d вместо %d, генерируем заново",
			coord, f.Resolution(), c.Field.Resolution())
	}
	s.generator.GenerateNoiseValues(c.Field)
	t.generated++
}

// wireNeighbors связывает чанки, ожидающие перестроения, с соседями в шести направлениях.
// Соседи с -x, -y, -x-y получают указатель на чанк и помечаются, если указатель изменился.
func (s *ChunkStore) wireNeighbors() {
	for _, c := range s.chunks {
		if !c.shouldUpdateMesh {
			continue
		}
		coord := c.Coord()

		if n := s.existing[coord.Sub(dirX)]; n != nil && n.xNeighbor != c {
			n.xNeighbor = c
			n.shouldUpdateMesh = true
		}
		if n := s.existing[coord.Sub(dirY)]; n != nil && n.yNeighbor != c {
			n.yNeighbor = c
			n.shouldUpdateMesh = true
		}
		if n := s.existing[coord.Sub(dirXY)]; n != nil && n.xyNeighbor != c {
			n.xyNeighbor = c
			n.shouldUpdateMesh = true
		}

		c.xNeighbor = s.existing[coord.Add(dirX)]
		c.yNeighbor = s.existing[coord.Add(dirY)]
		c.xyNeighbor = s.existing[coord.Add(dirXY)]
	}
}

// rebuild перестраивает сетки помеченных чанков, затем контуры тех, что в радиусе коллайдеров
func (s *ChunkStore) rebuild(ctx context.Context, chunks []*Chunk, t *tally) {
	_, span := s.tracer.Start(ctx, "ChunkStore.rebuild")
	defer span.End()

	meshes, outlines := 0, 0
	for _, c := range chunks {
		if !c.shouldUpdateMesh {
			continue
		}
		c.remesh(s.mesher)
		meshes++
		if s.meshConsumer != nil {
			s.meshConsumer.UpdateMesh(c.Coord(), c.Mesh)
		}
	}

	for _, c := range chunks {
		if !c.shouldUpdateCollider || !s.inColliderRadius(c.Coord(), s.viewer) {
			continue
		}
		c.recollide()
		outlines++
		if s.colliderConsumer != nil {
			s.colliderConsumer.UpdateColliders(c.Coord(), c.OutlinePoints())
		}
	}

	t.meshes += meshes
	t.outlines += outlines
	s.stats.MeshesBuilt += meshes
	s.stats.OutlinesBuilt += outlines
	span.SetAttributes(attribute.Int("meshes", meshes), attribute.Int("outlines", outlines))
}

// Chunk возвращает резидентный чанк по координатам
func (s *ChunkStore) Chunk(coord vec.Vec2) (*Chunk, bool) {
	c, ok := s.existing[coord]
	return c, ok
}

// Chunks возвращает резидентные чанки в порядке приёма
func (s *ChunkStore) Chunks() []*Chunk {
	out := make([]*Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Viewer возвращает чанк наблюдателя на последнем проходе
func (s *ChunkStore) Viewer() vec.Vec2 {
	return s.viewer
}

// Stats возвращает статистику хранилища
func (s *ChunkStore) Stats() Stats {
	st := s.stats
	st.Resident = len(s.chunks)
	st.Free = len(s.free)
	if p, ok := s.persistence.(interface{ RegionsOpen() int }); ok {
		st.RegionsOpen = p.RegionsOpen()
	}
	return st
}

// SaveAll сохраняет все резидентные чанки и закрывает регионы
func (s *ChunkStore) SaveAll() error {
	snapshots := make([]storage.Snapshot, 0, len(s.chunks))
	for _, c := range s.chunks {
		snapshots = append(snapshots, storage.Snapshot{Coord: c.Coord(), Field: c.Field})
	}
	if err := s.persistence.SaveAll(snapshots); err != nil {
		return fmt.Errorf("ошибка сохранения мира: %w", err)
	}
	return nil
}
