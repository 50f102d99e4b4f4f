package vision

import "errors"

// ErrDecode: байты не удалось разобрать как изображение.
var ErrDecode = errors.New("failed to decode image")
