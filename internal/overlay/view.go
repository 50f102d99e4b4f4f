package overlay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"vision-overlay/internal/domain/entity"
)

// ErrSuperseded возвращается, когда вызов SetDetections вытеснен более поздним.
var ErrSuperseded = errors.New("detections superseded by a newer call")

// View связывает изображение, разбор ответа API и планировщик отрисовки.
// Это точка входа для страницы: SetDetections, Clear, Invalidate.
type View struct {
	preview   Preview
	scheduler *Scheduler
	opts      NormalizeOptions
	logger    *zap.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewView создаёт представление поверх изображения и планировщика
func NewView(preview Preview, scheduler *Scheduler, opts NormalizeOptions, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		preview:   preview,
		scheduler: scheduler,
		opts:      opts,
		logger:    logger,
	}
}

// SetDetections дожидается изображения, определяет исходные размеры,
// нормализует рамки и передаёт их планировщику. Пустой ответ очищает
// поверхность. Новый вызов отменяет ожидание предыдущего.
func (v *View) SetDetections(ctx context.Context, payload any) ([]entity.NormalizedBox, error) {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	preview := v.preview
	v.mu.Unlock()
	defer cancel()

	waitErr := WaitReady(ctx, preview)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return nil, ErrSuperseded
	}
	if waitErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrPreviewUnavailable, waitErr)
	}

	dims := ResolveDimensions(payload, preview)
	entries := Detections(payload)
	boxes := Normalize(entries, dims, v.opts)
	if dropped := len(entries) - len(boxes); dropped > 0 {
		v.logger.Debug("dropped malformed detections",
			zap.Int("dropped", dropped),
			zap.Int("total", len(entries)))
	}

	if len(boxes) == 0 {
		v.scheduler.Clear()
		return boxes, nil
	}
	v.scheduler.SetBoxes(boxes, dims)
	return boxes, nil
}

// Clear убирает рамки
func (v *View) Clear() {
	v.mu.Lock()
	v.generation++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.mu.Unlock()
	v.scheduler.Clear()
}

// SetPreview переключает представление на другое изображение: ожидание
// прежнего отменяется, рамки сбрасываются.
func (v *View) SetPreview(preview Preview) {
	v.mu.Lock()
	v.generation++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.preview = preview
	v.mu.Unlock()
	v.scheduler.SetPreview(preview)
}

// Invalidate запрашивает перерисовку
func (v *View) Invalidate() { v.scheduler.Invalidate() }

// Scheduler возвращает планировщик представления
func (v *View) Scheduler() *Scheduler { return v.scheduler }
