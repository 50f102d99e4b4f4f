package overlay

import (
	"vision-overlay/internal/domain/entity"
)

const (
	DefaultAnomalyLabel   = "Anomaly"
	DefaultDetectionLabel = "Detection"
)

// NormalizeOptions управляет извлечением подписи и уверенности.
type NormalizeOptions struct {
	DefaultLabel string  // подпись для записей без класса
	MinScore     float64 // рамки с уверенностью ниже порога отбрасываются; без уверенности остаются
}

func (o NormalizeOptions) defaultLabel() string {
	if o.DefaultLabel == "" {
		return DefaultDetectionLabel
	}
	return o.DefaultLabel
}

// Normalize переводит сырые записи детекций в единичные координаты.
// Записи, которые не удалось разобрать, отбрасываются; порядок сохраняется.
func Normalize(entries []any, dims entity.Dimensions, opts NormalizeOptions) []entity.NormalizedBox {
	boxes := make([]entity.NormalizedBox, 0, len(entries))
	for _, raw := range entries {
		box, ok := normalizeOne(raw, dims, opts)
		if !ok {
			continue
		}
		boxes = append(boxes, box)
	}
	return boxes
}

// NormalizePayload находит список детекций в ответе API и нормализует его.
func NormalizePayload(payload any, dims entity.Dimensions, opts NormalizeOptions) []entity.NormalizedBox {
	return Normalize(Detections(payload), dims, opts)
}

func normalizeOne(raw any, dims entity.Dimensions, opts NormalizeOptions) (entity.NormalizedBox, bool) {
	parsed, ok := ParseBox(raw)
	if !ok {
		return entity.NormalizedBox{}, false
	}

	x, y, w, h := parsed.X, parsed.Y, parsed.W, parsed.H
	if !parsed.Normalized {
		if !dims.Valid() {
			return entity.NormalizedBox{}, false
		}
		x, w = x/dims.Width, w/dims.Width
		y, h = y/dims.Height, h/dims.Height
	}
	if !finite(x, y, w, h) {
		return entity.NormalizedBox{}, false
	}

	x, w = clampSpan(x, w)
	y, h = clampSpan(y, h)
	if w <= 0 || h <= 0 {
		return entity.NormalizedBox{}, false
	}

	label, conf := annotations(raw)
	if conf != nil && *conf < opts.MinScore {
		return entity.NormalizedBox{}, false
	}
	if label == "" {
		label = opts.defaultLabel()
	}
	return entity.NormalizedBox{
		X:     x,
		Y:     y,
		W:     w,
		H:     h,
		Label: label,
		Score: conf,
	}, true
}

// clampSpan прижимает к [0,1] оба края отрезка, а не только начало:
// рамка целиком за кадром получает нулевой размер.
func clampSpan(start, size float64) (float64, float64) {
	end := start + size
	if start >= 0 && end <= 1 {
		return start, size
	}
	s, e := clamp01(start), clamp01(end)
	return s, e - s
}

// annotations извлекает подпись и уверенность из объекта детекции
func annotations(raw any) (string, *float64) {
	m, ok := object(raw)
	if !ok {
		return "", nil
	}

	var label string
	for _, key := range labelKeys {
		if s, ok := text(m[key]); ok {
			label = s
			break
		}
	}
	return label, score(m)
}

func score(m map[string]any) *float64 {
	v, ok := firstNumber(m, scoreKeys)
	if !ok {
		for _, key := range metricKeys {
			nested, isObj := object(m[key])
			if !isObj {
				continue
			}
			if v, ok = firstNumber(nested, scoreKeys); ok {
				break
			}
		}
	}
	if !ok {
		return nil
	}
	if v > 1 {
		v /= 100
	}
	v = clamp01(v)
	return &v
}
