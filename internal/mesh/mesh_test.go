package mesh

import (
	"math/rand"
	"testing"

	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/annel0/voxel-terrain/internal/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledField(coord vec.Vec2, res, state int) *voxel.Field {
	f := voxel.NewField(coord, res)
	f.Fill(state)
	return f
}

func keySet(tris []Triangle) map[VertexKey]struct{} {
	set := make(map[VertexKey]struct{})
	for _, t := range tris {
		for _, k := range t.Corners {
			set[k] = struct{}{}
		}
	}
	return set
}

func signedArea(t Triangle) int {
	a, b, c := t.Corners[0], t.Corners[1], t.Corners[2]
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func TestCaseCode(t *testing.T) {
	cases := []struct {
		a, b, c, d int
		want       int
	}{
		{0, 0, 0, 0, 0},
		{1, 0, 0, 0, 1},
		{0, 3, 0, 0, 2},
		{0, 0, 2, 0, 4},
		{0, 0, 0, 9, 8},
		{0, 1, 1, 0, 6},
		{1, 0, 0, 1, 9},
		{1, 1, 1, 1, 15},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CaseCode(c.a, c.b, c.c, c.d))
	}
}

func TestTriangleCountPerCase(t *testing.T) {
	want := [16]int{0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 2}
	for code := 0; code < 16; code++ {
		assert.Equal(t, want[code], TriangleCount(code), "случай %d", code)
	}
}

func TestFullCellEmitsQuad(t *testing.T) {
	tris := CellTriangles(0, 0, [4]int{1, 1, 1, 1}, nil)
	require.Len(t, tris, 2)

	m := build(tris)
	assert.Len(t, m.Triangles, 6)

	corners := map[VertexKey]struct{}{
		{X: 1, Y: 1}: {}, {X: 3, Y: 1}: {}, {X: 1, Y: 3}: {}, {X: 3, Y: 3}: {},
	}
	assert.Equal(t, corners, keySet(tris), "квадрат покрывает ровно четыре угла окна")
}

func TestDiagonalCasesEmitDisjointCorners(t *testing.T) {
	for _, states := range [][4]int{{0, 1, 1, 0}, {1, 0, 0, 1}} {
		tris := CellTriangles(0, 0, states, nil)
		require.Len(t, tris, 2)

		first := keySet(tris[:1])
		for _, k := range tris[1].Corners {
			_, shared := first[k]
			assert.False(t, shared, "угловые треугольники не должны соединяться (%v)", states)
		}
	}
}

func TestAllCasesCounterClockwise(t *testing.T) {
	for code := 1; code < 16; code++ {
		states := [4]int{code & 1, (code >> 1) & 1, (code >> 2) & 1, (code >> 3) & 1}
		for _, tri := range CellTriangles(2, 3, states, nil) {
			assert.Greater(t, signedArea(tri), 0, "случай %d: треугольник %v", code, tri.Corners)
		}
	}
}

func TestMidpointsAreHalfway(t *testing.T) {
	tris := CellTriangles(0, 0, [4]int{1, 0, 0, 0}, nil)
	require.Len(t, tris, 1)
	pts := tris[0].Points()

	assert.Equal(t, float32(0.5), pts[0][0])
	assert.Equal(t, float32(1.0), pts[1][0], "середина ребра ab лежит ровно посередине")
	assert.Equal(t, float32(0.5), pts[1][1])
	assert.Equal(t, float32(1.0), pts[2][1], "середина ребра ac лежит ровно посередине")
}

func TestTriangulateWithFilledNeighbors(t *testing.T) {
	field := filledField(vec.Vec2{}, 1, 1)
	n := Neighbors{
		X:  filledField(vec.Vec2{X: 1}, 1, 1),
		Y:  filledField(vec.Vec2{Y: 1}, 1, 1),
		XY: filledField(vec.Vec2{X: 1, Y: 1}, 1, 1),
	}

	m := Triangulate(field, n, nil)
	assert.Len(t, m.Tris, 2)
	assert.Len(t, m.Triangles, 6)
	assert.Len(t, m.Vertices, 6)
	assert.Len(t, m.Colors, 6)
	assert.Len(t, m.Adjacency, 4)
}

func TestTriangulateAbsentNeighborsReadAsEmpty(t *testing.T) {
	field := filledField(vec.Vec2{}, 2, 1)

	var m *Mesh
	require.NotPanics(t, func() { m = Triangulate(field, Neighbors{}, nil) })

	// (0,0) квадрат, (1,0) и (0,1) половины, (1,1) угол
	assert.Len(t, m.Tris, 2+2+2+1)
	for k := range m.Adjacency {
		assert.LessOrEqual(t, k.X, 4, "сетка не выходит за середину последнего окна")
		assert.LessOrEqual(t, k.Y, 4)
	}
}

func TestEmptyFieldHasNoGeometry(t *testing.T) {
	m := Triangulate(voxel.NewField(vec.Vec2{}, 8), Neighbors{}, nil)
	assert.True(t, m.Empty())
	assert.Empty(t, m.Adjacency)
}

func TestAdjacencySharesEqualPositions(t *testing.T) {
	m := Triangulate(filledField(vec.Vec2{}, 3, 1), Neighbors{}, nil)

	for k, tris := range m.Adjacency {
		for _, ti := range tris {
			assert.True(t, m.Tris[ti].Has(k))
		}
	}
	// Центр ячейки (1,1) принадлежит четырём окнам по два треугольника максимум
	assert.NotEmpty(t, m.Adjacency[VertexKey{X: 3, Y: 3}])

	i, ok := m.FirstIndex(VertexKey{X: 3, Y: 3})
	require.True(t, ok)
	assert.Equal(t, VertexKey{X: 3, Y: 3}, m.Key(i))
	assert.Equal(t, KeyOf(m.Vertices[i]), m.Key(i))
}

func TestColorsFollowDominantState(t *testing.T) {
	palette := Palette{{R: 1}, {R: 2}, {R: 3}}

	tris := CellTriangles(0, 0, [4]int{2, 2, 3, 0}, palette)
	require.NotEmpty(t, tris)
	for _, tri := range tris {
		assert.Equal(t, Color{R: 2}, tri.Color)
	}

	assert.Equal(t, 2, DominantState([4]int{3, 2, 0, 0}), "при равенстве выигрывает меньшее")
	assert.Equal(t, 0, DominantState([4]int{}))
	assert.Equal(t, Color{R: 1}, palette.ColorFor(4), "палитра идёт по кругу")
}

func TestSeamMatchesNeighbor(t *testing.T) {
	const res = 4
	rng := rand.New(rand.NewSource(7))
	a := voxel.NewField(vec.Vec2{}, res)
	b := voxel.NewField(vec.Vec2{X: 1}, res)
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			a.SetState(x, y, rng.Intn(2))
			b.SetState(x, y, rng.Intn(2))
		}
	}
	// у b нет своих соседей, поэтому обе сетки читают +y как пустое
	ma := Triangulate(a, Neighbors{X: b}, nil)
	mb := Triangulate(b, Neighbors{}, nil)

	for k := range ma.Adjacency {
		if k.X != 2*res+1 {
			continue
		}
		shifted := VertexKey{X: k.X - 2*res, Y: k.Y}
		_, ok := mb.Adjacency[shifted]
		assert.True(t, ok, "вершина шва %v должна существовать в соседнем чанке", k)
	}
}

func TestParallelMesherMatchesSequential(t *testing.T) {
	const res = 16
	rng := rand.New(rand.NewSource(42))
	field := voxel.NewField(vec.Vec2{}, res)
	for i := 0; i < field.Len(); i++ {
		field.SetState(i%res, i/res, rng.Intn(4))
	}
	n := Neighbors{X: filledField(vec.Vec2{X: 1}, res, 2)}

	seq := NewMesher(1, nil).Triangulate(field, n)
	par := NewMesher(4, nil).Triangulate(field, n)

	assert.Equal(t, seq.Tris, par.Tris)
	assert.Equal(t, seq.Vertices, par.Vertices)
	assert.Equal(t, seq.Colors, par.Colors)
}
