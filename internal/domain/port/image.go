package port

import "image"

// ImageDecoder декодирует байты изображения
type ImageDecoder interface {
	Decode(data []byte) (image.Image, error)
}

// Compositor накладывает слой разметки на изображение и кодирует результат.
type Compositor interface {
	// Compose вписывает base в размер layer с сохранением пропорций и рисует layer поверх
	Compose(base image.Image, layer *image.RGBA) ([]byte, error)
}
