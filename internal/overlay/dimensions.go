package overlay

import "vision-overlay/internal/domain/entity"

// ResolveDimensions определяет размеры изображения, в которых модель вернула рамки.
// Сначала ищет их в метаданных ответа, затем берёт собственный размер
// изображения, затем размер области отображения, в крайнем случае 1.
// Всегда возвращает две положительные конечные величины.
func ResolveDimensions(payload any, p Preview) entity.Dimensions {
	w, okW, h, okH := dimensionsFromPayload(payload)
	if okW && okH {
		return entity.Dimensions{Width: w, Height: h}
	}

	var natural, rendered entity.Dimensions
	if p != nil {
		natural = p.NaturalSize()
		rendered = p.RenderedSize()
	}

	// одна ось известна: вторую восстанавливаем по пропорциям изображения
	if natural.Valid() {
		switch {
		case okW:
			return entity.Dimensions{Width: w, Height: w / natural.Aspect()}
		case okH:
			return entity.Dimensions{Width: h * natural.Aspect(), Height: h}
		}
	}

	if !okW {
		w = fallbackAxis(natural.Width, rendered.Width)
	}
	if !okH {
		h = fallbackAxis(natural.Height, rendered.Height)
	}
	return entity.Dimensions{Width: w, Height: h}
}

func fallbackAxis(candidates ...float64) float64 {
	for _, v := range candidates {
		if v > 0 && finite(v) {
			return v
		}
	}
	return 1
}

func dimensionsFromPayload(payload any) (w float64, okW bool, h float64, okH bool) {
	root, ok := object(payload)
	if !ok {
		return 0, false, 0, false
	}

	for _, key := range containerKeys {
		if okW && okH {
			return
		}
		nested, exists := root[key]
		if !exists {
			continue
		}
		if seq, ok := sequence(nested); ok && len(seq) == 2 {
			if !okW {
				w, okW = positiveNumber(seq[0])
			}
			if !okH {
				h, okH = positiveNumber(seq[1])
			}
			continue
		}
		m, ok := object(nested)
		if !ok {
			continue
		}
		if !okW {
			w, okW = firstPositive(m, dimWidthKeys)
		}
		if !okH {
			h, okH = firstPositive(m, dimHeightKeys)
		}
	}

	if !okW {
		w, okW = firstPositive(root, flatWidthKeys)
	}
	if !okH {
		h, okH = firstPositive(root, flatHeightKeys)
	}
	return
}

func positiveNumber(v any) (float64, bool) {
	f, ok := number(v)
	return f, ok && f > 0
}
