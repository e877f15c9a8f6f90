package vec

import "math"

// Vec2 представляет целочисленные 2D координаты (координаты чанка, ячейки, региона)
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale умножает обе координаты на скаляр
func (v Vec2) Scale(k int) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// LengthSq возвращает квадрат длины вектора
func (v Vec2) LengthSq() int {
	return v.X*v.X + v.Y*v.Y
}

// Less задаёт стабильный порядок: сначала по Y, затем по X
func (v Vec2) Less(other Vec2) bool {
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.X < other.X
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// FloorDiv делит с округлением вниз (для отрицательных координат)
func FloorDiv(value, size int) int {
	q := value / size
	if value%size != 0 && (value < 0) != (size < 0) {
		q--
	}
	return q
}

// FloorMod возвращает неотрицательный остаток от деления
func FloorMod(value, size int) int {
	m := value % size
	if m < 0 {
		m += size
	}
	return m
}
