package voxel

import (
	"testing"

	"github.com/annel0/voxel-terrain/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldPositions(t *testing.T) {
	f := NewField(vec.Vec2{X: 3, Y: -2}, 4)

	require.Equal(t, 16, f.Len())
	assert.Equal(t, vec.Vec2{X: 3, Y: -2}, f.Coord)
	assert.Equal(t, mgl32.Vec2{0.125, 0.125}, f.At(0).Position)
	assert.Equal(t, mgl32.Vec2{0.875, 0.125}, f.At(f.Index(3, 0)).Position)
	assert.Equal(t, mgl32.Vec2{0.125, 0.875}, f.At(f.Index(0, 3)).Position)
	assert.True(t, f.IsEmpty(), "новое поле должно быть пустым")
}

func TestSetStateReportsChange(t *testing.T) {
	f := NewField(vec.Vec2{}, 4)

	assert.True(t, f.SetState(1, 2, 3))
	assert.False(t, f.SetState(1, 2, 3), "повторная запись того же значения не меняет поле")
	assert.Equal(t, 3, f.State(1, 2))
	assert.Equal(t, 3, f.At(2*4+1).State, "порядок ячеек - по строкам")
}

func TestResetClearsStates(t *testing.T) {
	f := NewField(vec.Vec2{}, 4)
	f.Fill(2)
	before := f.At(5).Position

	f.Reset(vec.Vec2{X: 7, Y: 7})

	assert.True(t, f.IsEmpty())
	assert.Equal(t, vec.Vec2{X: 7, Y: 7}, f.Coord)
	assert.Equal(t, before, f.At(5).Position, "позиции не зависят от координат чанка")
	assert.Equal(t, 4, f.Resolution(), "размер поля не меняется")
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewField(vec.Vec2{X: 1}, 4)
	f.SetState(0, 0, 1)

	c := f.Clone()
	require.True(t, f.Equal(c))

	c.SetState(0, 0, 2)
	assert.False(t, f.Equal(c))
	assert.Equal(t, 1, f.State(0, 0))
}

func TestStateOrEmpty(t *testing.T) {
	assert.Equal(t, Empty, StateOrEmpty(nil, 0, 0))

	f := NewField(vec.Vec2{}, 2)
	f.Fill(4)
	assert.Equal(t, 4, StateOrEmpty(f, 1, 1))
	assert.Equal(t, Empty, StateOrEmpty(f, 2, 0))
}
