package world

import (
	"fmt"
	"strings"

	"github.com/annel0/voxel-terrain/internal/config"
	"github.com/annel0/voxel-terrain/internal/util"
	"github.com/annel0/voxel-terrain/internal/voxel"
)

// Generator заполняет состояния поля по его координатам. Должен быть детерминированным.
type Generator interface {
	GenerateNoiseValues(field *voxel.Field)
}

// GeneratorFunc позволяет использовать функцию как Generator
type GeneratorFunc func(field *voxel.Field)

func (f GeneratorFunc) GenerateNoiseValues(field *voxel.Field) { f(field) }

// OffGenerator оставляет все ячейки пустыми
type OffGenerator struct{}

func (OffGenerator) GenerateNoiseValues(field *voxel.Field) { field.Fill(voxel.Empty) }

// OnGenerator заполняет все ячейки состоянием 1
type OnGenerator struct{}

func (OnGenerator) GenerateNoiseValues(field *voxel.Field) { field.Fill(1) }

// RandomGenerator выбирает состояние каждой ячейки случайно, но воспроизводимо для чанка
type RandomGenerator struct {
	Seed    int64
	States  int  // Количество непустых состояний
	NonZero bool // Не выдавать пустые ячейки
}

func (g RandomGenerator) GenerateNoiseValues(field *voxel.Field) {
	states := g.States
	if states < 1 {
		states = 1
	}

	rng := util.NewRand(g.Seed, field.Coord.X, field.Coord.Y)
	res := field.Resolution()
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			var s int
			if g.NonZero {
				s = 1 + rng.Intn(states)
			} else {
				s = rng.Intn(states + 1)
			}
			field.SetState(x, y, s)
		}
	}
}

// PerlinGenerator заполняет ячейки по порогу шума Перлина в мировых координатах ячеек
type PerlinGenerator struct {
	noise     *util.Noise
	Scale     float64 // Масштаб шума на одну ячейку
	Threshold float64 // Ниже порога ячейка пуста
	States    int
}

// NewPerlinGenerator создаёт генератор на основе шума Перлина
func NewPerlinGenerator(cfg config.GenerationConfig) *PerlinGenerator {
	return &PerlinGenerator{
		noise:     util.NewNoise(cfg.Seed, cfg.Alpha, cfg.Beta, cfg.Octaves),
		Scale:     cfg.Scale,
		Threshold: cfg.Threshold,
		States:    cfg.States,
	}
}

func (g *PerlinGenerator) GenerateNoiseValues(field *voxel.Field) {
	res := field.Resolution()
	originX := field.Coord.X * res
	originY := field.Coord.Y * res

	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			v := g.noise.Noise2D(float64(originX+x)*g.Scale, float64(originY+y)*g.Scale)
			field.SetState(x, y, g.band(v))
		}
	}
}

// band переводит значение шума в состояние: ниже порога пусто, выше - полосы 1..States
func (g *PerlinGenerator) band(v float64) int {
	if v < g.Threshold {
		return voxel.Empty
	}
	states := g.States
	if states <= 1 || g.Threshold >= 1 {
		return 1
	}
	s := 1 + int((v-g.Threshold)/(1-g.Threshold)*float64(states))
	if s > states {
		s = states
	}
	return s
}

// NewGenerator выбирает генератор по режиму из конфигурации
func NewGenerator(cfg config.GenerationConfig) (Generator, error) {
	switch strings.ToLower(cfg.Mode) {
	case "off":
		return OffGenerator{}, nil
	case "on":
		return OnGenerator{}, nil
	case "random":
		return RandomGenerator{Seed: cfg.Seed, States: cfg.States}, nil
	case "random-nonzero":
		return RandomGenerator{Seed: cfg.Seed, States: cfg.States, NonZero: true}, nil
	case "perlin", "":
		return NewPerlinGenerator(cfg), nil
	default:
		return nil, fmt.Errorf("неизвестный режим генерации: %q", cfg.Mode)
	}
}
