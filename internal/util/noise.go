package util

import (
	"github.com/aquilax/go-perlin"
)

// Noise - генератор шума Перлина с фиксированным сидом
type Noise struct {
	perlin *perlin.Perlin
	seed   int64
}

// NewNoise создаёт генератор шума; alpha - сглаживание, beta - частота, octaves - количество октав.
// Нулевые параметры заменяются значениями 2, 2, 3.
func NewNoise(seed int64, alpha, beta float64, octaves int) *Noise {
	if alpha == 0 {
		alpha = 2.0
	}
	if beta == 0 {
		beta = 2.0
	}
	if octaves <= 0 {
		octaves = 3
	}
	return &Noise{
		perlin: perlin.NewPerlin(alpha, beta, int32(octaves), seed),
		seed:   seed,
	}
}

// Seed возвращает сид генератора
func (n *Noise) Seed() int64 {
	return n.seed
}

// Noise2D возвращает значение шума для указанных координат (от 0 до 1)
func (n *Noise) Noise2D(x, y float64) float64 {
	// Значение шума лежит примерно в диапазоне от -1 до 1
	v := (n.perlin.Noise2D(x, y) + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
