// Package outline выделяет замкнутые контуры границы заполненной области из сетки чанка.
package outline

import (
	"github.com/annel0/voxel-terrain/internal/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// Tracer обходит граничные рёбра сетки. Ребро граничное, если его содержит ровно один треугольник.
type Tracer struct {
	mesh    *mesh.Mesh
	checked map[mesh.VertexKey]struct{}
}

// NewTracer создаёт трассировщик для сетки
func NewTracer(m *mesh.Mesh) *Tracer {
	return &Tracer{
		mesh:    m,
		checked: make(map[mesh.VertexKey]struct{}),
	}
}

// Reset очищает множество проверенных вершин и привязывает трассировщик к новой сетке
func (t *Tracer) Reset(m *mesh.Mesh) {
	t.mesh = m
	clear(t.checked)
}

// IsOutlineEdge проверяет, что у вершин a и b ровно один общий треугольник
func (t *Tracer) IsOutlineEdge(a, b mesh.VertexKey) bool {
	shared := 0
	for _, ti := range t.mesh.Adjacency[a] {
		if t.mesh.Tris[ti].Has(b) {
			shared++
			if shared > 1 {
				return false
			}
		}
	}
	return shared == 1
}

// ConnectedOutlineVertex ищет следующую вершину контура после v.
// Кандидат - следующий угол (по порядку обхода) в каждом треугольнике, содержащем v.
// Если продолжения нет, возвращает false.
func (t *Tracer) ConnectedOutlineVertex(v mesh.VertexKey) (mesh.VertexKey, bool) {
	for _, ti := range t.mesh.Adjacency[v] {
		corners := t.mesh.Tris[ti].Corners
		for j, c := range corners {
			if c != v {
				continue
			}
			candidate := corners[(j+1)%3]
			if _, seen := t.checked[candidate]; seen {
				continue
			}
			if t.IsOutlineEdge(v, candidate) {
				return candidate, true
			}
		}
	}
	return mesh.VertexKey{}, false
}

// Trace возвращает замкнутые контуры как индексы вершин сетки; первый индекс повторяется в конце
func (t *Tracer) Trace() [][]int {
	if t.mesh.Empty() {
		return nil
	}

	var loops [][]int
	for i := range t.mesh.Vertices {
		start := t.mesh.Key(i)
		if _, seen := t.checked[start]; seen {
			continue
		}

		next, ok := t.ConnectedOutlineVertex(start)
		if !ok {
			continue
		}
		t.checked[start] = struct{}{}

		keys := []mesh.VertexKey{start}
		for ok {
			keys = append(keys, next)
			t.checked[next] = struct{}{}
			next, ok = t.ConnectedOutlineVertex(next)
		}
		keys = append(keys, start)

		loops = append(loops, t.indices(keys))
	}
	return loops
}

func (t *Tracer) indices(keys []mesh.VertexKey) []int {
	loop := make([]int, 0, len(keys))
	for _, k := range keys {
		if idx, ok := t.mesh.FirstIndex(k); ok {
			loop = append(loop, idx)
		}
	}
	return loop
}

// TraceOutlines строит контуры сетки; пустая сетка даёт ноль контуров
func TraceOutlines(m *mesh.Mesh) [][]int {
	if m.Empty() {
		return nil
	}
	return NewTracer(m).Trace()
}

// Points переводит контур из индексов в точки координат чанка
func Points(m *mesh.Mesh, loop []int) []mgl32.Vec2 {
	pts := make([]mgl32.Vec2, len(loop))
	for i, idx := range loop {
		pts[i] = m.Vertices[idx]
	}
	return pts
}
