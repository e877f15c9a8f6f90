package world

import (
	"context"
	"errors"
	"sort"

	"github.com/annel0/voxel-terrain/internal/stencil"
	"github.com/annel0/voxel-terrain/internal/vec"
)

// Восемь направлений соседей
var neighborDirs = [8]vec.Vec2{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Edit применяет форму с центром в мировой точке ко всем резидентным чанкам, которых она касается.
// Окно формы отсекается границами каждого чанка. Если изменилась хотя бы одна ячейка,
// изменённые чанки и соседи, чьих общих рёбер или углов касается окно, перестраиваются
// в порядке координат (Y, затем X).
func (s *ChunkStore) Edit(point vec.Vec2Float, st stencil.Stencil) (bool, error) {
	if st == nil {
		return false, errors.New("форма правки не задана")
	}

	res := s.cfg.FieldResolution
	cell := s.WorldToCell(point)
	r := st.Radius()

	cx0, cx1 := vec.FloorDiv(cell.X-r, res), vec.FloorDiv(cell.X+r, res)
	cy0, cy1 := vec.FloorDiv(cell.Y-r, res), vec.FloorDiv(cell.Y+r, res)

	dirty := make(map[vec.Vec2]*Chunk)
	changedAny := false

	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			coord := vec.Vec2{X: cx, Y: cy}
			c, ok := s.existing[coord]
			if !ok {
				continue
			}

			st.SetCenter(cell.X-cx*res, cell.Y-cy*res)
			x0, x1, y0, y1 := st.Bounds()
			x0, x1 = clampRange(x0, x1, res)
			y0, y1 = clampRange(y0, y1, res)
			if x0 > x1 || y0 > y1 {
				continue
			}

			changed := false
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					if c.Field.SetState(x, y, st.Apply(x, y, c.Field.State(x, y))) {
						changed = true
					}
				}
			}
			if !changed {
				continue
			}
			changedAny = true

			c.MarkDirty()
			dirty[coord] = c
			for _, d := range neighborDirs {
				if !touchesBorder(d, x0, x1, y0, y1, res) {
					continue
				}
				if n, ok := s.existing[coord.Add(d)]; ok {
					n.MarkDirty()
					dirty[n.Coord()] = n
				}
			}
		}
	}

	if !changedAny {
		return false, nil
	}

	ordered := make([]*Chunk, 0, len(dirty))
	for _, c := range dirty {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Coord().Less(ordered[j].Coord()) })

	t := tally{edits: 1}
	s.rebuild(context.Background(), ordered, &t)
	s.metrics.record(t)
	s.logger.Debug("✏️ Правка в ячейке %v: перестроено %d чанков", cell, t.meshes)
	return true, nil
}

// clampRange отсекает отрезок [lo, hi] границами поля [0, res-1]
func clampRange(lo, hi, res int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > res-1 {
		hi = res - 1
	}
	return lo, hi
}

// touchesBorder проверяет, касается ли отсечённое окно ребра или угла, общего с соседом в направлении d
func touchesBorder(d vec.Vec2, x0, x1, y0, y1, res int) bool {
	return touchesAxis(d.X, x0, x1, res) && touchesAxis(d.Y, y0, y1, res)
}

func touchesAxis(d, lo, hi, res int) bool {
	switch d {
	case -1:
		return lo == 0
	case 1:
		return hi == res-1
	default:
		return true
	}
}
