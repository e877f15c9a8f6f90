package mesh

// Color - RGB цвет вершины
type Color struct {
	R, G, B uint8
}

// Palette отображает состояние ячейки в цвет. Состояния за пределами палитры идут по кругу.
type Palette []Color

// DefaultPalette используется, если палитра не задана
var DefaultPalette = Palette{
	{R: 0x6B, G: 0x8E, B: 0x23},
	{R: 0x8B, G: 0x5A, B: 0x2B},
	{R: 0x80, G: 0x80, B: 0x80},
	{R: 0xC2, G: 0xB2, B: 0x80},
}

// ColorFor возвращает цвет для состояния (state >= 1)
func (p Palette) ColorFor(state int) Color {
	if len(p) == 0 {
		p = DefaultPalette
	}
	if state <= 0 {
		return Color{}
	}
	return p[(state-1)%len(p)]
}

// DominantState возвращает самое частое непустое состояние среди углов окна.
// При равенстве выигрывает меньшее состояние; 0 - если все углы пусты.
func DominantState(states [4]int) int {
	best, bestCount := 0, 0
	for _, s := range states {
		if s == 0 {
			continue
		}
		count := 0
		for _, o := range states {
			if o == s {
				count++
			}
		}
		if count > bestCount || (count == bestCount && s < best) {
			best, bestCount = s, count
		}
	}
	return best
}
