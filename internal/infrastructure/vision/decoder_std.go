//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"vision-overlay/internal/domain/port"
)

// Decoder декодирует изображения пакетом image (сборка без OpenCV).
type Decoder struct{}

// NewDecoder создаёт декодер на стандартных кодеках и golang.org/x/image.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode превращает байты изображения в image.Image
func (d *Decoder) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}

var _ port.ImageDecoder = (*Decoder)(nil)
