//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"vision-overlay/internal/domain/port"
)

// Decoder декодирует изображения через OpenCV
type Decoder struct{}

// NewDecoder создаёт декодер на gocv.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode превращает байты изображения в image.Image
func (d *Decoder) Decode(data []byte) (image.Image, error) {
	mat, err := decodeToMat(data)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mat: %w", err)
	}
	return img, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.Join(ErrDecode, err)
}

var _ port.ImageDecoder = (*Decoder)(nil)
