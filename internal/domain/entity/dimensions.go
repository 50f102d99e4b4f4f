package entity

import "math"

// Dimensions хранит размеры в пикселях (исходного изображения или области отображения).
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid сообщает, что обе стороны положительные конечные числа
func (d Dimensions) Valid() bool {
	return positive(d.Width) && positive(d.Height)
}

// Aspect возвращает отношение ширины к высоте (0 для невалидных размеров)
func (d Dimensions) Aspect() float64 {
	if !d.Valid() {
		return 0
	}
	return d.Width / d.Height
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
