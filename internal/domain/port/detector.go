package port

import "context"

// DetectionClient интерфейс удалённого сервиса детекции
type DetectionClient interface {
	// Detect отправляет изображение и возвращает ответ сервиса как есть (JSON)
	Detect(ctx context.Context, imageData []byte) ([]byte, error)

	// CheckHealth проверяет доступность сервиса
	CheckHealth(ctx context.Context) error
}
