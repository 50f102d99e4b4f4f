package overlay

import (
	"image"
	"math"

	"vision-overlay/internal/domain/entity"
)

// Canvas это поверхность отрисовки поверх изображения. Display задаёт размер в
// CSS-пикселях, подложка хранится в физических пикселях (Display × DPR).
type Canvas struct {
	display entity.Dimensions
	dpr     float64
	img     *image.RGBA
}

// NewCanvas создаёт пустую поверхность
func NewCanvas() *Canvas {
	return &Canvas{dpr: 1, img: image.NewRGBA(image.Rect(0, 0, 0, 0))}
}

// Display возвращает размер поверхности в CSS-пикселях
func (c *Canvas) Display() entity.Dimensions { return c.display }

// DevicePixelRatio возвращает текущий коэффициент плотности
func (c *Canvas) DevicePixelRatio() float64 { return c.dpr }

// Image возвращает подложку поверхности
func (c *Canvas) Image() *image.RGBA { return c.img }

// SetDisplaySize задаёт CSS-размер поверхности (размер отображаемого элемента)
func (c *Canvas) SetDisplaySize(display entity.Dimensions) {
	c.display = display
}

// prepare подгоняет подложку под display × dpr. Подложка пересоздаётся только
// при изменении размера, иначе очищается.
func (c *Canvas) prepare(dpr float64) {
	if dpr <= 0 || !finite(dpr) {
		dpr = 1
	}
	c.dpr = dpr

	w := max(int(math.Round(c.display.Width*dpr)), 0)
	h := max(int(math.Round(c.display.Height*dpr)), 0)
	if b := c.img.Bounds(); b.Dx() == w && b.Dy() == h {
		c.Erase()
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Erase делает поверхность прозрачной
func (c *Canvas) Erase() {
	clear(c.img.Pix)
}

// Snapshot возвращает копию подложки
func (c *Canvas) Snapshot() *image.RGBA {
	cp := image.NewRGBA(c.img.Bounds())
	copy(cp.Pix, c.img.Pix)
	return cp
}
