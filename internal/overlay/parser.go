package overlay

// ParsedBox хранит геометрию одной детекции до нормализации.
type ParsedBox struct {
	X, Y, W, H float64
	Normalized bool // рамка уже в долях изображения
}

// ParseBox разбирает одну запись детекции: массив из четырёх чисел или объект.
// Возвращает false, если из записи нельзя получить рамку с положительной площадью.
func ParseBox(raw any) (ParsedBox, bool) {
	return parseBox(raw, true)
}

func parseBox(raw any, allowNested bool) (ParsedBox, bool) {
	if seq, ok := sequence(raw); ok {
		return parseArray(seq)
	}
	m, ok := object(raw)
	if !ok {
		return ParsedBox{}, false
	}

	box, ok := parseObject(m)
	if !ok && allowNested {
		for _, key := range geometryKeys {
			nested, exists := m[key]
			if !exists {
				continue
			}
			if box, ok = parseBox(nested, false); ok {
				break
			}
		}
	}
	if !ok {
		return ParsedBox{}, false
	}
	if explicitlyNormalized(m) {
		box.Normalized = true
	}
	return box, true
}

// parseArray: [x1,y1,x2,y2] если вторая точка правее и ниже первой, иначе [x,y,w,h].
func parseArray(seq []any) (ParsedBox, bool) {
	if len(seq) != 4 {
		return ParsedBox{}, false
	}
	var v [4]float64
	for i, item := range seq {
		f, ok := number(item)
		if !ok {
			return ParsedBox{}, false
		}
		v[i] = f
	}

	a, b, c, d := v[0], v[1], v[2], v[3]
	w, h := c, d
	if c > a && d > b {
		w, h = c-a, d-b
	}
	return finish(a, b, w, h)
}

func parseObject(m map[string]any) (ParsedBox, bool) {
	minX, okMinX := firstNumber(m, minXKeys)
	minY, okMinY := firstNumber(m, minYKeys)
	maxX, okMaxX := firstNumber(m, maxXKeys)
	maxY, okMaxY := firstNumber(m, maxYKeys)
	if okMinX && okMinY && okMaxX && okMaxY {
		return finish(minX, minY, maxX-minX, maxY-minY)
	}

	w, okW := firstNumber(m, widthKeys)
	h, okH := firstNumber(m, heightKeys)
	if !okW || !okH {
		return ParsedBox{}, false
	}

	x, okX := originAxis(m, originXKeys, centerXKeys, maxX, okMaxX, w)
	y, okY := originAxis(m, originYKeys, centerYKeys, maxY, okMaxY, h)
	if !okX || !okY {
		return ParsedBox{}, false
	}
	return finish(x, y, w, h)
}

// originAxis находит начало рамки по одной оси: явное начало, затем центр,
// затем дальний край минус размер.
func originAxis(m map[string]any, originKeys, centerKeys []string, far float64, hasFar bool, size float64) (float64, bool) {
	if v, ok := firstNumber(m, originKeys); ok {
		return v, true
	}
	if c, ok := firstNumber(m, centerKeys); ok {
		return c - size/2, true
	}
	if hasFar {
		return far - size, true
	}
	return 0, false
}

func finish(x, y, w, h float64) (ParsedBox, bool) {
	if !finite(x, y, w, h) || w <= 0 || h <= 0 {
		return ParsedBox{}, false
	}
	return ParsedBox{
		X:          x,
		Y:          y,
		W:          w,
		H:          h,
		Normalized: x <= 1 && y <= 1 && w <= 1 && h <= 1,
	}, true
}

func explicitlyNormalized(m map[string]any) bool {
	for _, key := range normalizedKeys {
		if truthy(m[key]) {
			return true
		}
	}
	return false
}
