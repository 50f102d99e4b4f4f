package describe

import (
	"context"
	"fmt"
	"math"
	"strings"

	"vision-overlay/internal/domain/entity"
	"vision-overlay/internal/domain/port"
)

// DefaultMaxItems сколько областей перечислять в подписи
const DefaultMaxItems = 8

// TextDescriber собирает короткую подпись к результату разметки
type TextDescriber struct {
	MaxItems int
}

func NewTextDescriber(maxItems int) *TextDescriber {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &TextDescriber{MaxItems: maxItems}
}

// Describe возвращает подпись вида "Найдено областей: 2. scratch 87%, dent"
func (d *TextDescriber) Describe(ctx context.Context, result *entity.InspectionResult) (*entity.Description, error) {
	if result == nil || len(result.Boxes) == 0 {
		return &entity.Description{Text: "Областей не найдено."}, nil
	}

	items := make([]string, 0, min(len(result.Boxes), d.MaxItems))
	for i, box := range result.Boxes {
		if i == d.MaxItems {
			break
		}
		items = append(items, Item(box))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Найдено областей: %d. %s", len(result.Boxes), strings.Join(items, ", "))
	if rest := len(result.Boxes) - len(items); rest > 0 {
		fmt.Fprintf(&sb, " и ещё %d", rest)
	}
	return &entity.Description{Text: sb.String()}, nil
}

// Item форматирует одну область: подпись и уверенность в процентах
func Item(box entity.NormalizedBox) string {
	if box.Score == nil {
		return box.Label
	}
	return fmt.Sprintf("%s %d%%", box.Label, int(math.Round(*box.Score*100)))
}

var _ port.Describer = (*TextDescriber)(nil)
