package mesh

// Биты кода случая: a (низ-лево) = 1, b (низ-право) = 2, c (верх-лево) = 4, d (верх-право) = 8
const (
	bitA = 1 << iota
	bitB
	bitC
	bitD
)

// corner - опорная точка окна 2x2: четыре центра ячеек и четыре середины рёбер
type corner uint8

const (
	cA corner = iota
	cB
	cC
	cD
	cAB
	cAC
	cBD
	cCD
)

// offset возвращает смещение точки в удвоенных единицах относительно центра ячейки a
func (c corner) offset() (int, int) {
	switch c {
	case cA:
		return 0, 0
	case cB:
		return 2, 0
	case cC:
		return 0, 2
	case cD:
		return 2, 2
	case cAB:
		return 1, 0
	case cAC:
		return 0, 1
	case cBD:
		return 2, 1
	default: // cCD
		return 1, 2
	}
}

// casePolygons - многоугольники (против часовой стрелки) для каждого из 16 случаев.
// Диагональные случаи 6 и 9 намеренно дают два отдельных угловых треугольника.
var casePolygons = [16][][]corner{
	0:  nil,
	1:  {{cA, cAB, cAC}},
	2:  {{cB, cBD, cAB}},
	3:  {{cA, cB, cBD, cAC}},
	4:  {{cC, cAC, cCD}},
	5:  {{cA, cAB, cCD, cC}},
	6:  {{cB, cBD, cAB}, {cC, cAC, cCD}},
	7:  {{cA, cB, cBD, cCD, cC}},
	8:  {{cD, cCD, cBD}},
	9:  {{cA, cAB, cAC}, {cD, cCD, cBD}},
	10: {{cB, cD, cCD, cAB}},
	11: {{cA, cB, cD, cCD, cAC}},
	12: {{cC, cAC, cBD, cD}},
	13: {{cA, cAB, cBD, cD, cC}},
	14: {{cB, cD, cC, cAC, cAB}},
	15: {{cA, cB, cD, cC}},
}

// CaseCode вычисляет 4-битный код окна по состояниям углов
func CaseCode(a, b, c, d int) int {
	code := 0
	if a != 0 {
		code |= bitA
	}
	if b != 0 {
		code |= bitB
	}
	if c != 0 {
		code |= bitC
	}
	if d != 0 {
		code |= bitD
	}
	return code
}

// TriangleCount возвращает число треугольников, которые даёт случай
func TriangleCount(code int) int {
	n := 0
	for _, poly := range casePolygons[code&15] {
		n += len(poly) - 2
	}
	return n
}
