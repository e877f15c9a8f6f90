package util

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash2 детерминированно смешивает сид и целочисленные координаты
func Hash2(seed int64, x, y int) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(x)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(y)))
	return xxhash.Sum64(buf[:])
}

// Rand - маленький детерминированный генератор splitmix64 поверх Hash2
type Rand struct {
	state uint64
}

// NewRand создаёт генератор для координаты
func NewRand(seed int64, x, y int) *Rand {
	return &Rand{state: Hash2(seed, x, y)}
}

// Uint64 возвращает следующее значение
func (r *Rand) Uint64() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Intn возвращает значение в [0, n); n <= 0 даёт 0
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint64() % uint64(n))
}
