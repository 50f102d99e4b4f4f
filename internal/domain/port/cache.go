package port

import "context"

// ResultCache кэш ответов сервиса детекции по MD5 изображения
type ResultCache interface {
	// Get возвращает сохранённый ответ; nil без ошибки при промахе
	Get(ctx context.Context, md5 string) ([]byte, error)

	// Set сохраняет ответ
	Set(ctx context.Context, md5 string, payload []byte) error
}
