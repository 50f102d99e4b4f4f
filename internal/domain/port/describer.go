package port

import (
	"context"

	"vision-overlay/internal/domain/entity"
)

// Describer интерфейс описателя найденных областей
type Describer interface {
	// Describe генерирует текстовое описание результата разметки
	Describe(ctx context.Context, result *entity.InspectionResult) (*entity.Description, error)
}
