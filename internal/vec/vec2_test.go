package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorDiv(t *testing.T) {
	cases := []struct{ value, size, want int }{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FloorDiv(c.value, c.size), "FloorDiv(%d, %d)", c.value, c.size)
	}
}

func TestFloorMod(t *testing.T) {
	assert.Equal(t, 0, FloorMod(16, 16))
	assert.Equal(t, 15, FloorMod(-1, 16))
	assert.Equal(t, 3, FloorMod(-13, 16))
}

func TestVec2FloatRounding(t *testing.T) {
	p := Vec2Float{X: -0.5, Y: 2.6}
	assert.Equal(t, Vec2{X: -1, Y: 2}, p.Floor())
	assert.Equal(t, Vec2{X: -1, Y: 3}, p.Round())
}

func TestVec2Less(t *testing.T) {
	assert.True(t, Vec2{X: 5, Y: 0}.Less(Vec2{X: 0, Y: 1}))
	assert.True(t, Vec2{X: 0, Y: 1}.Less(Vec2{X: 1, Y: 1}))
	assert.False(t, Vec2{X: 1, Y: 1}.Less(Vec2{X: 1, Y: 1}))
}
