package overlay

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// number приводит значение из JSON к конечному float64.
// Поддерживаются float64, json.Number, целые типы и числовые строки.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// truthy повторяет привычную для API семантику флагов:
// true, ненулевое число или непустая строка кроме "false"/"0".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		return s != "" && s != "false" && s != "0"
	default:
		f, ok := number(v)
		return ok && f != 0
	}
}

// text возвращает непустую строку для подписи
func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case bool:
		return "", false
	default:
		f, ok := number(v)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
}

// sequence возвращает элементы упорядоченной коллекции
func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []float64:
		out := make([]any, len(s))
		for i, f := range s {
			out[i] = f
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

// object возвращает поля JSON-объекта
func object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// firstNumber ищет первое конечное число по списку псевдонимов
func firstNumber(m map[string]any, aliases []string) (float64, bool) {
	for _, key := range aliases {
		if v, ok := m[key]; ok {
			if f, ok := number(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// firstPositive ищет первое положительное конечное число по списку псевдонимов
func firstPositive(m map[string]any, aliases []string) (float64, bool) {
	for _, key := range aliases {
		if v, ok := m[key]; ok {
			if f, ok := number(v); ok && f > 0 {
				return f, true
			}
		}
	}
	return 0, false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
