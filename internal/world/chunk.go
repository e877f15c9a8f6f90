package world

import (
	"github.com/annel0/voxel-terrain/internal/mesh"
	"github.com/annel0/voxel-terrain/internal/outline"
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/annel0/voxel-terrain/internal/voxel"
	"github.com/go-gl/mathgl/mgl32"
)

// Chunk - поле чанка и производное от него состояние сетки и контуров.
// Указатели на соседей не владеют ими: они выставляются и очищаются ChunkStore.
type Chunk struct {
	Field    *voxel.Field // Ячейки чанка
	Mesh     *mesh.Mesh   // Последняя построенная сетка
	Outlines [][]int      // Замкнутые контуры, индексы вершин Mesh

	tracer *outline.Tracer

	xNeighbor  *Chunk // +x
	yNeighbor  *Chunk // +y
	xyNeighbor *Chunk // +x+y

	shouldUpdateMesh     bool
	shouldUpdateCollider bool
}

// NewChunk создаёт свободный чанк с полем заданной размерности
func NewChunk(resolution int) *Chunk {
	return &Chunk{
		Field:  voxel.NewField(vec.Vec2{}, resolution),
		tracer: outline.NewTracer(nil),
	}
}

// Coord возвращает координаты чанка
func (c *Chunk) Coord() vec.Vec2 {
	return c.Field.Coord
}

// Assign переназначает чанк на новые координаты: очищает ячейки, сетку, контуры и соседей
func (c *Chunk) Assign(coord vec.Vec2) {
	c.Field.Reset(coord)
	c.Mesh = nil
	c.Outlines = nil
	c.tracer.Reset(nil)
	c.clearNeighbors()
	c.shouldUpdateMesh = true
	c.shouldUpdateCollider = false
}

func (c *Chunk) clearNeighbors() {
	c.xNeighbor = nil
	c.yNeighbor = nil
	c.xyNeighbor = nil
}

// NeedsMesh сообщает, что сетку нужно перестроить
func (c *Chunk) NeedsMesh() bool {
	return c.shouldUpdateMesh
}

// NeedsCollider сообщает, что контуры нужно перестроить
func (c *Chunk) NeedsCollider() bool {
	return c.shouldUpdateCollider
}

// MarkDirty помечает чанк для перестроения сетки и контуров
func (c *Chunk) MarkDirty() {
	c.shouldUpdateMesh = true
	c.shouldUpdateCollider = true
}

// XNeighbor возвращает соседа по +x или nil
func (c *Chunk) XNeighbor() *Chunk { return c.xNeighbor }

// YNeighbor возвращает соседа по +y или nil
func (c *Chunk) YNeighbor() *Chunk { return c.yNeighbor }

// XYNeighbor возвращает соседа по +x+y или nil
func (c *Chunk) XYNeighbor() *Chunk { return c.xyNeighbor }

// neighbors возвращает поля соседей для мешера
func (c *Chunk) neighbors() mesh.Neighbors {
	var n mesh.Neighbors
	if c.xNeighbor != nil {
		n.X = c.xNeighbor.Field
	}
	if c.yNeighbor != nil {
		n.Y = c.yNeighbor.Field
	}
	if c.xyNeighbor != nil {
		n.XY = c.xyNeighbor.Field
	}
	return n
}

// remesh строит сетку; контуры после этого устаревают
func (c *Chunk) remesh(m *mesh.Mesher) {
	c.Mesh = m.Triangulate(c.Field, c.neighbors())
	c.shouldUpdateMesh = false
	c.shouldUpdateCollider = true
}

// recollide заново выделяет контуры из текущей сетки
func (c *Chunk) recollide() {
	c.tracer.Reset(c.Mesh)
	if c.Mesh.Empty() {
		c.Outlines = nil
	} else {
		c.Outlines = c.tracer.Trace()
	}
	c.shouldUpdateCollider = false
}

// OutlinePoints возвращает контуры в координатах чанка (в единицах ячеек)
func (c *Chunk) OutlinePoints() [][]mgl32.Vec2 {
	if len(c.Outlines) == 0 {
		return nil
	}
	out := make([][]mgl32.Vec2, len(c.Outlines))
	for i, loop := range c.Outlines {
		out[i] = outline.Points(c.Mesh, loop)
	}
	return out
}
