// Package stencil описывает формы локальной правки ячеек.
package stencil

// Stencil - форма с значением заполнения, радиусом и текущим центром.
// Координаты центра и ячеек задаются в одной системе (локальной для чанка при применении).
type Stencil interface {
	// SetCenter перемещает центр формы
	SetCenter(x, y int)
	// Center возвращает текущий центр
	Center() (x, y int)
	// Radius возвращает радиус в ячейках
	Radius() int
	// Bounds возвращает охватывающий прямоугольник [xStart, xEnd] x [yStart, yEnd] без отсечения
	Bounds() (xStart, xEnd, yStart, yEnd int)
	// Apply возвращает новое состояние ячейки (x, y)
	Apply(x, y, state int) int
}

type base struct {
	fill   int
	radius int
	cx, cy int
}

func (b *base) SetCenter(x, y int) {
	b.cx, b.cy = x, y
}

func (b *base) Center() (int, int) {
	return b.cx, b.cy
}

func (b *base) Radius() int {
	return b.radius
}

// Fill возвращает значение заполнения
func (b *base) Fill() int {
	return b.fill
}

func (b *base) Bounds() (int, int, int, int) {
	return b.cx - b.radius, b.cx + b.radius, b.cy - b.radius, b.cy + b.radius
}

func (b *base) inBox(x, y int) bool {
	xs, xe, ys, ye := b.Bounds()
	return x >= xs && x <= xe && y >= ys && y <= ye
}

// Square заполняет весь охватывающий квадрат
type Square struct {
	base
}

// NewSquare создаёт квадратную форму
func NewSquare(fill, radius int) *Square {
	if radius < 0 {
		radius = 0
	}
	return &Square{base{fill: fill, radius: radius}}
}

// Apply заполняет ячейку, если она внутри квадрата
func (s *Square) Apply(x, y, state int) int {
	if s.inBox(x, y) {
		return s.fill
	}
	return state
}

// Circle заполняет ячейки с dx²+dy² <= r²
type Circle struct {
	base
}

// NewCircle создаёт круглую форму
func NewCircle(fill, radius int) *Circle {
	if radius < 0 {
		radius = 0
	}
	return &Circle{base{fill: fill, radius: radius}}
}

// Apply заполняет ячейку, если она внутри круга
func (c *Circle) Apply(x, y, state int) int {
	dx, dy := x-c.cx, y-c.cy
	if dx*dx+dy*dy <= c.radius*c.radius {
		return c.fill
	}
	return state
}

// Parse создаёт форму по имени ("square" или "circle"); неизвестное имя даёт квадрат
func Parse(shape string, fill, radius int) Stencil {
	if shape == "circle" {
		return NewCircle(fill, radius)
	}
	return NewSquare(fill, radius)
}
