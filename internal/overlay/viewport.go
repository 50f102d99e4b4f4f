package overlay

import (
	"errors"
	"math"

	"vision-overlay/internal/domain/entity"
)

// ErrViewportNotReady: у области отображения ещё нет размера (вёрстка не устоялась).
var ErrViewportNotReady = errors.New("viewport has no size yet")

// Transform описывает вписывание исходного изображения в область отображения
// с сохранением пропорций и центрированием (letterbox).
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	Source  entity.Dimensions
}

// NewTransform считает вписывание source в display. Пересчитывается на каждой
// перерисовке: размер вёрстки меняется независимо от данных.
func NewTransform(source, display entity.Dimensions) (Transform, error) {
	if !display.Valid() {
		return Transform{}, ErrViewportNotReady
	}
	if !source.Valid() {
		return Transform{}, errors.New("source dimensions must be positive")
	}

	scale := math.Min(display.Width/source.Width, display.Height/source.Height)
	return Transform{
		Scale:   scale,
		OffsetX: (display.Width - source.Width*scale) / 2,
		OffsetY: (display.Height - source.Height*scale) / 2,
		Source:  source,
	}, nil
}

// Map переводит рамку из единичных координат в пиксели области отображения
func (t Transform) Map(b entity.NormalizedBox) entity.PixelBox {
	return entity.PixelBox{
		X:     t.OffsetX + b.X*t.Source.Width*t.Scale,
		Y:     t.OffsetY + b.Y*t.Source.Height*t.Scale,
		W:     b.W * t.Source.Width * t.Scale,
		H:     b.H * t.Source.Height * t.Scale,
		Label: b.Label,
		Score: b.Score,
	}
}

// MapAll переводит набор рамок, сохраняя порядок
func (t Transform) MapAll(boxes []entity.NormalizedBox) []entity.PixelBox {
	out := make([]entity.PixelBox, len(boxes))
	for i, b := range boxes {
		out[i] = t.Map(b)
	}
	return out
}

// Content возвращает прямоугольник, который занимает само изображение
func (t Transform) Content() entity.PixelBox {
	return entity.PixelBox{
		X: t.OffsetX,
		Y: t.OffsetY,
		W: t.Source.Width * t.Scale,
		H: t.Source.Height * t.Scale,
	}
}

// MapBox выполняет разовое преобразование одной рамки.
func MapBox(b entity.NormalizedBox, source, display entity.Dimensions) (entity.PixelBox, error) {
	t, err := NewTransform(source, display)
	if err != nil {
		return entity.PixelBox{}, err
	}
	return t.Map(b), nil
}
