package overlay

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"vision-overlay/internal/domain/entity"
)

// Style описывает оформление рамок и подписей.
type Style struct {
	MinBoxPixels    float64    // рамки меньше этого по обеим сторонам не рисуются
	FillAlpha       float64    // прозрачность заливки рамки
	GradientFrom    color.RGBA // цвет обводки в левом верхнем углу
	GradientTo      color.RGBA // цвет обводки в правом нижнем углу
	LabelBackground color.RGBA
	LabelText       color.RGBA
}

// DefaultStyle возвращает оформление по умолчанию
func DefaultStyle() Style {
	return Style{
		MinBoxPixels:    4,
		FillAlpha:       0.18,
		GradientFrom:    color.RGBA{R: 255, G: 77, B: 109, A: 255},
		GradientTo:      color.RGBA{R: 255, G: 176, B: 32, A: 255},
		LabelBackground: color.RGBA{R: 24, G: 24, B: 32, A: 220},
		LabelText:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Renderer рисует рамки и подписи на Canvas.
type Renderer struct {
	style Style
	fonts *fontCache
}

// NewRenderer создаёт отрисовщик с заданным оформлением
func NewRenderer(style Style) *Renderer {
	if style.MinBoxPixels < 0 {
		style.MinBoxPixels = 0
	}
	return &Renderer{style: style, fonts: newFontCache()}
}

type rect struct{ x, y, w, h float64 }

func (r rect) overlaps(o rect) bool {
	return r.x < o.x+o.w && o.x < r.x+r.w && r.y < o.y+o.h && o.y < r.y+r.h
}

// Render подгоняет подложку под размер отображения × dpr, очищает её и
// рисует рамки. Координаты рамок задаются в CSS-пикселях. Возвращает число
// нарисованных рамок.
func (r *Renderer) Render(c *Canvas, boxes []entity.PixelBox, dpr float64) int {
	c.prepare(dpr)
	display := c.Display()
	if !display.Valid() {
		return 0
	}
	dpr = c.DevicePixelRatio()

	dc := gg.NewContextForRGBA(c.Image())
	dc.Scale(dpr, dpr)

	// оформление масштабируется от ширины отображения
	stroke := clampRange(display.Width*0.003, 1.5, 4)
	fontSize := clampRange(display.Width*0.018, 11, 22)
	face := r.fonts.face(fontSize * dpr)
	dc.SetFontFace(face)

	var placed []rect
	drawn := 0
	for _, b := range byScore(boxes) {
		if b.W < r.style.MinBoxPixels && b.H < r.style.MinBoxPixels {
			continue
		}
		r.drawBox(dc, b, stroke, dpr)
		placed = append(placed, r.drawLabel(dc, face, b, display, stroke, dpr, placed))
		drawn++
	}
	return drawn
}

func (r *Renderer) drawBox(dc *gg.Context, b entity.PixelBox, stroke, dpr float64) {
	radius := math.Min(stroke*3, math.Min(b.W, b.H)/4)

	fill := r.style.GradientFrom
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, radius)
	dc.SetRGBA255(int(fill.R), int(fill.G), int(fill.B), int(math.Round(r.style.FillAlpha*255)))
	dc.Fill()

	// градиент и толщина линии в gg задаются в физических пикселях
	grad := gg.NewLinearGradient(b.X*dpr, b.Y*dpr, b.Right()*dpr, b.Bottom()*dpr)
	grad.AddColorStop(0, r.style.GradientFrom)
	grad.AddColorStop(1, r.style.GradientTo)
	dc.SetStrokeStyle(grad)
	dc.SetLineWidth(stroke * dpr)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, radius)
	dc.Stroke()
}

// drawLabel рисует подпись над рамкой; если сверху нет места или подпись
// налезает на уже размещённую, переносит её под рамку. По горизонтали
// подпись не выходит за край поверхности.
func (r *Renderer) drawLabel(dc *gg.Context, face font.Face, b entity.PixelBox, display entity.Dimensions, stroke, dpr float64, placed []rect) rect {
	caption := labelText(b)
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64 / dpr
	lineHeight := float64(metrics.Height) / 64 / dpr
	textWidth := float64(font.MeasureString(face, caption)) / 64 / dpr

	padX, padY := lineHeight*0.4, lineHeight*0.2
	chip := rect{w: textWidth + 2*padX, h: lineHeight + 2*padY}
	chip.x = math.Max(0, math.Min(b.X, display.Width-chip.w))

	above := b.Y - chip.h - stroke/2
	below := b.Bottom() + stroke/2
	chip.y = above
	if above < 0 || collides(rect{chip.x, above, chip.w, chip.h}, placed) {
		alt := rect{chip.x, below, chip.w, chip.h}
		fitsBelow := below+chip.h <= display.Height && !collides(alt, placed)
		if above < 0 || fitsBelow {
			chip.y = below
		}
	}
	chip.y = math.Max(0, math.Min(chip.y, display.Height-chip.h))

	bg := r.style.LabelBackground
	dc.DrawRoundedRectangle(chip.x, chip.y, chip.w, chip.h, chip.h/4)
	dc.SetRGBA255(int(bg.R), int(bg.G), int(bg.B), int(bg.A))
	dc.Fill()

	fg := r.style.LabelText
	dc.SetRGBA255(int(fg.R), int(fg.G), int(fg.B), int(fg.A))
	dc.DrawString(caption, chip.x+padX, chip.y+padY+ascent)
	return chip
}

func collides(r rect, placed []rect) bool {
	for _, p := range placed {
		if r.overlaps(p) {
			return true
		}
	}
	return false
}

func labelText(b entity.PixelBox) string {
	if b.Score == nil {
		return b.Label
	}
	return fmt.Sprintf("%s %d%%", b.Label, int(math.Round(*b.Score*100)))
}

// byScore упорядочивает рамки по убыванию уверенности: более уверенные
// первыми занимают место под подписи. Рамки без уверенности идут последними.
func byScore(boxes []entity.PixelBox) []entity.PixelBox {
	out := make([]entity.PixelBox, len(boxes))
	copy(out, boxes)
	sort.SliceStable(out, func(i, j int) bool {
		return scoreOf(out[i]) > scoreOf(out[j])
	})
	return out
}

func scoreOf(b entity.PixelBox) float64 {
	if b.Score == nil {
		return -1
	}
	return *b.Score
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
