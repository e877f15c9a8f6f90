// Package voxel содержит данные ячеек чанка без какого-либо поведения.
package voxel

import (
	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// Empty - состояние пустой ячейки. Отсутствующий сосед читается как Empty.
const Empty = 0

// Voxel представляет одну ячейку сетки чанка
type Voxel struct {
	State    int        // 0 = пусто, 1..N = варианты заполнения (только для цвета)
	Position mgl32.Vec2 // Центр ячейки в нормированных координатах чанка
}

// Field - сетка resolution x resolution ячеек в порядке строк (row-major)
type Field struct {
	Coord      vec.Vec2 // Координаты чанка
	resolution int
	voxels     []Voxel
}

// NewField создаёт пустое поле для чанка с указанными координатами
func NewField(coord vec.Vec2, resolution int) *Field {
	if resolution <= 0 {
		panic("voxel: resolution must be positive")
	}

	f := &Field{
		Coord:      coord,
		resolution: resolution,
		voxels:     make([]Voxel, resolution*resolution),
	}
	inv := 1 / float32(resolution)
	for y := 0; y < resolution; y++ {
		for x := 0; x < resolution; x++ {
			f.voxels[y*resolution+x].Position = mgl32.Vec2{
				(float32(x) + 0.5) * inv,
				(float32(y) + 0.5) * inv,
			}
		}
	}
	return f
}

// Resolution возвращает сторону сетки в ячейках
func (f *Field) Resolution() int {
	return f.resolution
}

// Len возвращает количество ячеек
func (f *Field) Len() int {
	return len(f.voxels)
}

// Index переводит локальные координаты в индекс массива
func (f *Field) Index(x, y int) int {
	return y*f.resolution + x
}

// InBounds проверяет, что локальные координаты внутри поля
func (f *Field) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.resolution && y < f.resolution
}

// At возвращает ячейку по индексу
func (f *Field) At(i int) Voxel {
	return f.voxels[i]
}

// State возвращает состояние ячейки (x, y)
func (f *Field) State(x, y int) int {
	return f.voxels[f.Index(x, y)].State
}

// SetState устанавливает состояние ячейки (x, y) и сообщает, изменилось ли оно
func (f *Field) SetState(x, y, state int) bool {
	v := &f.voxels[f.Index(x, y)]
	if v.State == state {
		return false
	}
	v.State = state
	return true
}

// SetVoxel заменяет ячейку целиком (используется при загрузке)
func (f *Field) SetVoxel(i int, v Voxel) {
	f.voxels[i] = v
}

// StateOrEmpty безопасно читает состояние: nil-поле возвращает Empty
func StateOrEmpty(f *Field, x, y int) int {
	if f == nil || !f.InBounds(x, y) {
		return Empty
	}
	return f.State(x, y)
}

// Reset переназначает поле на новые координаты и очищает состояния
func (f *Field) Reset(coord vec.Vec2) {
	f.Coord = coord
	for i := range f.voxels {
		f.voxels[i].State = Empty
	}
}

// CopyFrom копирует состояния и позиции из другого поля той же размерности
func (f *Field) CopyFrom(other *Field) {
	f.Coord = other.Coord
	copy(f.voxels, other.voxels)
}

// Clone создаёт независимую копию поля
func (f *Field) Clone() *Field {
	c := &Field{
		Coord:      f.Coord,
		resolution: f.resolution,
		voxels:     make([]Voxel, len(f.voxels)),
	}
	copy(c.voxels, f.voxels)
	return c
}

// Equal сравнивает координаты, состояния и позиции побитово
func (f *Field) Equal(other *Field) bool {
	if other == nil || f.Coord != other.Coord || f.resolution != other.resolution {
		return false
	}
	for i := range f.voxels {
		if f.voxels[i] != other.voxels[i] {
			return false
		}
	}
	return true
}

// IsEmpty сообщает, что ни одна ячейка не заполнена
func (f *Field) IsEmpty() bool {
	for i := range f.voxels {
		if f.voxels[i].State != Empty {
			return false
		}
	}
	return true
}

// Fill устанавливает одно состояние всем ячейкам
func (f *Field) Fill(state int) {
	for i := range f.voxels {
		f.voxels[i].State = state
	}
}
