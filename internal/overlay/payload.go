package overlay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload: ответ API детекции не является JSON.
var ErrInvalidPayload = errors.New("invalid detection payload")

// DecodePayload декодирует ответ API детекции, сохраняя числа как json.Number.
func DecodePayload(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return payload, nil
}

// Detections находит список детекций в ответе API. Ответ-массив сам
// является списком; в объекте просматриваются известные поля, в том числе
// внутри обёрток data/result/output. Без списка результат пустой.
func Detections(payload any) []any {
	if seq, ok := sequence(payload); ok {
		return seq
	}
	root, ok := object(payload)
	if !ok {
		return nil
	}
	if list, ok := bucket(root); ok {
		return list
	}
	for _, key := range envelopeKeys {
		if nested, ok := object(root[key]); ok {
			if list, ok := bucket(nested); ok {
				return list
			}
		}
	}
	return nil
}

func bucket(m map[string]any) ([]any, bool) {
	for _, key := range bucketKeys {
		if list, ok := sequence(m[key]); ok {
			return list, true
		}
	}
	return nil, false
}
