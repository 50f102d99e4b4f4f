package http

import "encoding/json"

// Response общий формат ответа API
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OverlayData результат разметки снимка
type OverlayData struct {
	ImageWidth    int     `json:"image_width"`
	ImageHeight   int     `json:"image_height"`
	SourceWidth   float64 `json:"source_width"`
	SourceHeight  float64 `json:"source_height"`
	Boxes         any     `json:"boxes"`
	HasDetections bool    `json:"has_detections"`
	Summary       string  `json:"summary,omitempty"`
	Cached        bool    `json:"cached"`
	Image         []byte  `json:"image,omitempty"` // JPEG, в JSON кодируется base64
}

// NormalizeRequest тело запроса /api/v1/normalize
type NormalizeRequest struct {
	Payload json.RawMessage `json:"payload"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Label   string          `json:"label"`
}
