package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"github.com/nfnt/resize"

	"vision-overlay/internal/domain/entity"
	"vision-overlay/internal/domain/port"
	"vision-overlay/internal/overlay"
)

// DefaultQuality качество JPEG по умолчанию
const DefaultQuality = 90

// Compositor вписывает снимок в слой разметки с сохранением пропорций
// (поля заливаются фоном) и рисует слой поверх.
type Compositor struct {
	Quality    int
	Background color.Color
}

// NewCompositor создаёт компоновщик с тёмным фоном полей
func NewCompositor(quality int) *Compositor {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Compositor{
		Quality:    quality,
		Background: color.RGBA{R: 16, G: 16, B: 20, A: 255},
	}
}

// Compose собирает итоговую картинку и кодирует её в JPEG
func (c *Compositor) Compose(base image.Image, layer *image.RGBA) ([]byte, error) {
	out, err := c.Flatten(base, layer)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: c.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Flatten возвращает итоговую картинку размером со слой
func (c *Compositor) Flatten(base image.Image, layer *image.RGBA) (*image.RGBA, error) {
	if base == nil || layer == nil {
		return nil, errors.New("compose: nil image")
	}
	bounds := layer.Bounds()
	t, err := overlay.NewTransform(sizeOf(base.Bounds()), sizeOf(bounds))
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: c.Background}, image.Point{}, draw.Src)

	content := t.Content()
	target := image.Rect(
		int(math.Round(content.X)), int(math.Round(content.Y)),
		int(math.Round(content.Right())), int(math.Round(content.Bottom())),
	)
	if !target.Empty() {
		scaled := resize.Resize(uint(target.Dx()), uint(target.Dy()), base, resize.Bilinear)
		draw.Draw(out, target, scaled, scaled.Bounds().Min, draw.Src)
	}

	draw.Draw(out, out.Bounds(), layer, bounds.Min, draw.Over)
	return out, nil
}

func sizeOf(r image.Rectangle) entity.Dimensions {
	return entity.Dimensions{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

var _ port.Compositor = (*Compositor)(nil)
