package world

import (
	"testing"

	"github.com/annel0/voxel-terrain/internal/mesh"
	"github.com/annel0/voxel-terrain/internal/vec"
)

func TestChunkAssignClearsState(t *testing.T) {
	chunk := NewChunk(4)
	chunk.Assign(vec.Vec2{X: 5, Y: 10})

	if chunk.Coord() != (vec.Vec2{X: 5, Y: 10}) {
		t.Errorf("Ожидались координаты {5,10}, получено %v", chunk.Coord())
	}
	if !chunk.NeedsMesh() {
		t.Error("После назначения чанк должен ждать перестроения сетки")
	}
	if chunk.NeedsCollider() {
		t.Error("До построения сетки контуры не нужны")
	}

	chunk.Field.Fill(1)
	chunk.remesh(mesh.NewMesher(1, nil))
	chunk.recollide()
	if len(chunk.Outlines) != 1 {
		t.Fatalf("Ожидался 1 контур, получено %d", len(chunk.Outlines))
	}

	chunk.xNeighbor = NewChunk(4)
	chunk.Assign(vec.Vec2{X: -1, Y: 0})
	if !chunk.Field.IsEmpty() {
		t.Error("Поле должно быть очищено")
	}
	if chunk.Mesh != nil || chunk.Outlines != nil {
		t.Error("Сетка и контуры должны быть сброшены")
	}
	if chunk.XNeighbor() != nil {
		t.Error("Соседи должны быть отвязаны")
	}
}

func TestChunkRemeshMarksCollider(t *testing.T) {
	chunk := NewChunk(2)
	chunk.Assign(vec.Vec2{})
	chunk.Field.SetState(1, 1, 1)

	chunk.remesh(mesh.NewMesher(1, nil))
	if chunk.NeedsMesh() {
		t.Error("Флаг сетки должен быть снят")
	}
	if !chunk.NeedsCollider() {
		t.Error("Новая сетка требует перестроения контуров")
	}

	chunk.recollide()
	points := chunk.OutlinePoints()
	if len(points) != 1 || len(points[0]) != 5 {
		t.Errorf("Ожидался ромб из 5 точек, получено %v", points)
	}
}

func TestChunkNeighborsUsedForSeams(t *testing.T) {
	chunk := NewChunk(1)
	chunk.Assign(vec.Vec2{})
	chunk.Field.Fill(1)

	for _, n := range []**Chunk{&chunk.xNeighbor, &chunk.yNeighbor, &chunk.xyNeighbor} {
		*n = NewChunk(1)
		(*n).Field.Fill(1)
	}

	chunk.remesh(mesh.NewMesher(1, nil))
	if got := len(chunk.Mesh.Triangles); got != 6 {
		t.Errorf("Ожидалось 6 индексов (квадрат), получено %d", got)
	}
}
