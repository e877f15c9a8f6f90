// Package mesh строит полигональную сетку по состояниям ячеек чанка (marching squares).
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexKey - позиция вершины на сетке с шагом 0.5 (координаты удвоены).
// Вершины с одинаковым ключом считаются одной вершиной.
type VertexKey struct {
	X, Y int
}

// KeyOf возвращает ключ для точки в единицах ячеек чанка
func KeyOf(p mgl32.Vec2) VertexKey {
	return VertexKey{
		X: int(math.Round(float64(p[0]) * 2)),
		Y: int(math.Round(float64(p[1]) * 2)),
	}
}

// Point переводит ключ обратно в координаты чанка
func (k VertexKey) Point() mgl32.Vec2 {
	return mgl32.Vec2{float32(k.X) / 2, float32(k.Y) / 2}
}

// Triangle - три угла и цвет; запись обмена между генерацией и индексом смежности
type Triangle struct {
	Corners [3]VertexKey
	Color   Color
}

// Points возвращает углы в координатах чанка
func (t Triangle) Points() [3]mgl32.Vec2 {
	return [3]mgl32.Vec2{t.Corners[0].Point(), t.Corners[1].Point(), t.Corners[2].Point()}
}

// Has сообщает, является ли ключ углом треугольника
func (t Triangle) Has(k VertexKey) bool {
	return t.Corners[0] == k || t.Corners[1] == k || t.Corners[2] == k
}

// Mesh - результат триангуляции одного чанка.
// Вершины не разделяются между треугольниками: Triangles[i] == i, Colors выровнены с Vertices.
type Mesh struct {
	Vertices  []mgl32.Vec2
	Triangles []int32
	Colors    []Color

	// Tris и Adjacency используются трассировкой контуров
	Tris      []Triangle
	Adjacency map[VertexKey][]int // ключ вершины -> индексы треугольников в Tris
	keys      []VertexKey
}

// Empty сообщает, что сетка не содержит треугольников
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Tris) == 0
}

// Key возвращает ключ вершины с индексом i
func (m *Mesh) Key(i int) VertexKey {
	return m.keys[i]
}

// FirstIndex возвращает индекс первой вершины с данным ключом
func (m *Mesh) FirstIndex(k VertexKey) (int, bool) {
	tris, ok := m.Adjacency[k]
	if !ok || len(tris) == 0 {
		return 0, false
	}
	t := tris[0]
	for j, c := range m.Tris[t].Corners {
		if c == k {
			return t*3 + j, true
		}
	}
	return 0, false
}

// build собирает массивы и таблицу смежности из списка треугольников
func build(tris []Triangle) *Mesh {
	m := &Mesh{
		Vertices:  make([]mgl32.Vec2, 0, len(tris)*3),
		Triangles: make([]int32, 0, len(tris)*3),
		Colors:    make([]Color, 0, len(tris)*3),
		Tris:      tris,
		Adjacency: make(map[VertexKey][]int),
		keys:      make([]VertexKey, 0, len(tris)*3),
	}
	for ti, t := range tris {
		for _, k := range t.Corners {
			m.Triangles = append(m.Triangles, int32(len(m.Vertices)))
			m.Vertices = append(m.Vertices, k.Point())
			m.Colors = append(m.Colors, t.Color)
			m.keys = append(m.keys, k)
			m.Adjacency[k] = append(m.Adjacency[k], ti)
		}
	}
	return m
}
