package mesh

import (
	"time"

	"github.com/annel0/voxel-terrain/internal/logging"
	"github.com/annel0/voxel-terrain/internal/voxel"
	"golang.org/x/sync/errgroup"
)

// Neighbors - поля соседних чанков, из которых берётся дополнительный столбец/строка.
// nil означает, что сосед не загружен: его ячейки читаются как пустые.
type Neighbors struct {
	X  *voxel.Field // +x
	Y  *voxel.Field // +y
	XY *voxel.Field // +x+y
}

// sampler читает состояние ячейки с учётом соседей (x, y в диапазоне 0..R)
type sampler struct {
	field *voxel.Field
	n     Neighbors
	res   int
}

func (s sampler) state(x, y int) int {
	switch {
	case x < s.res && y < s.res:
		return s.field.State(x, y)
	case x >= s.res && y < s.res:
		return voxel.StateOrEmpty(s.n.X, x-s.res, y)
	case x < s.res:
		return voxel.StateOrEmpty(s.n.Y, x, y-s.res)
	default:
		return voxel.StateOrEmpty(s.n.XY, x-s.res, y-s.res)
	}
}

// CellTriangles триангулирует одно окно 2x2 с левым нижним углом в ячейке (x, y).
// states - состояния углов a, b, c, d.
func CellTriangles(x, y int, states [4]int, palette Palette) []Triangle {
	return appendCell(nil, x, y, states, palette)
}

func appendCell(out []Triangle, x, y int, states [4]int, palette Palette) []Triangle {
	code := CaseCode(states[0], states[1], states[2], states[3])
	if code == 0 {
		return out
	}

	color := palette.ColorFor(DominantState(states))
	baseX, baseY := 2*x+1, 2*y+1

	for _, poly := range casePolygons[code] {
		var pts [5]VertexKey
		for i, c := range poly {
			dx, dy := c.offset()
			pts[i] = VertexKey{X: baseX + dx, Y: baseY + dy}
		}
		for i := 1; i+1 < len(poly); i++ {
			out = append(out, Triangle{
				Corners: [3]VertexKey{pts[0], pts[i], pts[i+1]},
				Color:   color,
			})
		}
	}
	return out
}

func (s sampler) row(out []Triangle, y int, palette Palette) []Triangle {
	for x := 0; x < s.res; x++ {
		states := [4]int{
			s.state(x, y),
			s.state(x+1, y),
			s.state(x, y+1),
			s.state(x+1, y+1),
		}
		out = appendCell(out, x, y, states, palette)
	}
	return out
}

// Triangulate строит сетку поля в одном потоке
func Triangulate(field *voxel.Field, n Neighbors, palette Palette) *Mesh {
	s := sampler{field: field, n: n, res: field.Resolution()}

	var tris []Triangle
	for y := 0; y < s.res; y++ {
		tris = s.row(tris, y, palette)
	}
	return build(tris)
}

// Mesher триангулирует поля, при необходимости распределяя строки окон между воркерами.
// Вызов блокирующий: результат собирается в порядке строк и не зависит от числа воркеров.
type Mesher struct {
	workers int
	palette Palette
	logger  *logging.Logger
}

// NewMesher создаёт мешер; workers <= 1 означает последовательную генерацию
func NewMesher(workers int, palette Palette) *Mesher {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &Mesher{workers: workers, palette: palette}
}

// SetLogger задаёт логгер для отладочных замеров параллельной генерации
func (m *Mesher) SetLogger(l *logging.Logger) {
	m.logger = l
}

// Palette возвращает используемую палитру
func (m *Mesher) Palette() Palette {
	return m.palette
}

// Triangulate строит сетку поля
func (m *Mesher) Triangulate(field *voxel.Field, n Neighbors) *Mesh {
	res := field.Resolution()
	if m.workers <= 1 || res < m.workers*2 {
		return Triangulate(field, n, m.palette)
	}

	start := time.Now()
	s := sampler{field: field, n: n, res: res}
	rows := make([][]Triangle, res)

	var g errgroup.Group
	g.SetLimit(m.workers)
	for y := 0; y < res; y++ {
		y := y
		g.Go(func() error {
			rows[y] = s.row(nil, y, m.palette)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range rows {
		total += len(r)
	}
	tris := make([]Triangle, 0, total)
	for _, r := range rows {
		tris = append(tris, r...)
	}
	if m.logger != nil {
		m.logger.Trace("Сетка чанка %v: %d треугольников за %v (%d воркеров)", field.Coord, total, time.Since(start), m.workers)
	}
	return build(tris)
}
