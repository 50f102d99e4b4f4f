package entity

// NormalizedBox задаёт рамку в единичных координатах исходного изображения.
// X, Y задают левый верхний угол, W, H размеры, всё в долях от 0 до 1.
type NormalizedBox struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	W     float64  `json:"w"`
	H     float64  `json:"h"`
	Label string   `json:"label"`
	Score *float64 `json:"score"` // nil, если уверенность не пришла
}

// Center возвращает центр рамки в единичных координатах
func (b NormalizedBox) Center() (x, y float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// ScoreOr возвращает уверенность или значение по умолчанию
func (b NormalizedBox) ScoreOr(def float64) float64 {
	if b.Score == nil {
		return def
	}
	return *b.Score
}

// PixelBox задаёт рамку в CSS-пикселях поверхности отрисовки.
type PixelBox struct {
	X     float64
	Y     float64
	W     float64
	H     float64
	Label string
	Score *float64
}

// Right возвращает правую границу
func (b PixelBox) Right() float64 { return b.X + b.W }

// Bottom возвращает нижнюю границу
func (b PixelBox) Bottom() float64 { return b.Y + b.H }

// Score создаёт указатель на значение уверенности.
func Score(v float64) *float64 {
	return &v
}
