package storage

import (
	"fmt"

	"github.com/annel0/voxel-terrain/internal/vec"
)

// RegionID возвращает идентификатор региона для координаты чанка.
// Ширина региона по оси - regionResolution/2 чанков; неотрицательные координаты
// делятся с округлением вниз, отрицательные сдвигаются на единицу к нулю,
// поэтому при regionResolution=8 чанки [-4,3] попадают в регион 0, [4,7] в 1, [-8,-5] в -1.
func RegionID(chunk vec.Vec2, regionResolution int) vec.Vec2 {
	half := regionResolution / 2
	if half < 1 {
		half = 1
	}
	return vec.Vec2{X: regionAxis(chunk.X, half), Y: regionAxis(chunk.Y, half)}
}

func regionAxis(v, half int) int {
	if v >= 0 {
		return v / half
	}
	return (v + 1) / half
}

// regionFileName возвращает имя файла региона
func regionFileName(id vec.Vec2) string {
	return fmt.Sprintf("r.%d.%d.region", id.X, id.Y)
}

// regionKey возвращает ключ региона в KV-хранилище
func regionKey(id vec.Vec2) []byte {
	return []byte(fmt.Sprintf("region:%d:%d", id.X, id.Y))
}
