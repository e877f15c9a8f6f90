package stencil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircleContainment(t *testing.T) {
	c := NewCircle(5, 3)
	c.SetCenter(10, -4)

	for y := -10; y <= 2; y++ {
		for x := 4; x <= 16; x++ {
			dx, dy := x-10, y+4
			inside := dx*dx+dy*dy <= 9
			got := c.Apply(x, y, 1)
			if inside {
				assert.Equal(t, 5, got, "(%d,%d) внутри круга", x, y)
			} else {
				assert.Equal(t, 1, got, "(%d,%d) вне круга", x, y)
			}
		}
	}
}

func TestSquareContainment(t *testing.T) {
	s := NewSquare(0, 2)
	s.SetCenter(3, 3)

	xs, xe, ys, ye := s.Bounds()
	assert.Equal(t, [4]int{1, 5, 1, 5}, [4]int{xs, xe, ys, ye})

	for y := -1; y <= 7; y++ {
		for x := -1; x <= 7; x++ {
			inside := x >= 1 && x <= 5 && y >= 1 && y <= 5
			if inside {
				assert.Equal(t, 0, s.Apply(x, y, 2))
			} else {
				assert.Equal(t, 2, s.Apply(x, y, 2))
			}
		}
	}
}

func TestZeroRadiusTouchesCenterOnly(t *testing.T) {
	for _, st := range []Stencil{NewSquare(1, 0), NewCircle(1, 0)} {
		st.SetCenter(2, 2)
		assert.Equal(t, 1, st.Apply(2, 2, 0))
		assert.Equal(t, 0, st.Apply(3, 2, 0))
	}
}

func TestParse(t *testing.T) {
	_, ok := Parse("circle", 1, 2).(*Circle)
	assert.True(t, ok)
	_, ok = Parse("square", 1, 2).(*Square)
	assert.True(t, ok)
	assert.Equal(t, 0, NewCircle(1, -3).Radius(), "отрицательный радиус обрезается до нуля")
}
