package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"vision-overlay/internal/domain/port"
)

// ErrInvalidResponse: сервис ответил не JSON.
var ErrInvalidResponse = errors.New("detection service returned invalid json")

// maxResponseSize ограничивает размер ответа сервиса
const maxResponseSize = 16 << 20

// Options параметры клиента
type Options struct {
	URL       string        // адрес эндпоинта детекции
	HealthURL string        // адрес проверки здоровья; по умолчанию URL + "/health"
	FormField string        // имя поля с файлом в multipart; по умолчанию "file"
	Timeout   time.Duration // таймаут одного запроса
}

// Client отправляет изображения во внешний сервис с моделью
type Client struct {
	url       string
	healthURL string
	field     string
	http      *http.Client
}

// NewClient создаёт клиент сервиса детекции
func NewClient(opts Options) *Client {
	field := opts.FormField
	if field == "" {
		field = "file"
	}
	healthURL := opts.HealthURL
	if healthURL == "" {
		healthURL = strings.TrimRight(opts.URL, "/") + "/health"
	}

	return &Client{
		url:       opts.URL,
		healthURL: healthURL,
		field:     field,
		http:      &http.Client{Timeout: opts.Timeout},
	}
}

// Detect выполняет inference через внешний сервис и возвращает тело ответа
func (c *Client) Detect(ctx context.Context, imageData []byte) ([]byte, error) {
	// Создаём multipart запрос
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(c.field, "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !json.Valid(data) {
		return nil, ErrInvalidResponse
	}

	return data, nil
}

// CheckHealth проверяет доступность ML-сервиса
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml service unhealthy: %d", resp.StatusCode)
	}

	return nil
}

var _ port.DetectionClient = (*Client)(nil)
