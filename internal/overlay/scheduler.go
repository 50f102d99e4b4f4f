package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"vision-overlay/internal/domain/entity"
)

// State задаёт состояние планировщика отрисовки.
type State int

const (
	StateEmpty    State = iota // рамок нет, поверхность пустая
	StateCached                // рамки сохранены, ждут кадра или загрузки изображения
	StateRendered              // рамки нарисованы при текущем размере отображения
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCached:
		return "cached"
	case StateRendered:
		return "rendered"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Scheduler владеет кэшем рамок и поверхностью и сводит серии запросов
// на перерисовку в одну отрисовку на кадре.
type Scheduler struct {
	mu       sync.Mutex
	canvas   *Canvas
	renderer *Renderer
	preview  Preview
	frames   FrameRequester
	logger   *zap.Logger

	boxes  []entity.NormalizedBox
	source entity.Dimensions
	state  State
	dpr    float64

	pending     bool
	frameID     uint64
	cancelFrame func()
	cancelWatch context.CancelFunc
	unsubscribe func()
	readyFired  bool

	onReady func()
	onError func(error)
}

// SchedulerOption настраивает Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger задаёт логгер
func WithLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithDevicePixelRatio задаёт начальную плотность пикселей
func WithDevicePixelRatio(dpr float64) SchedulerOption {
	return func(s *Scheduler) { s.dpr = dpr }
}

// OnReady вызывается один раз после первой успешной отрисовки каждого набора рамок.
func OnReady(fn func()) SchedulerOption {
	return func(s *Scheduler) { s.onReady = fn }
}

// OnError вызывается, если изображение не удалось загрузить.
func OnError(fn func(error)) SchedulerOption {
	return func(s *Scheduler) { s.onError = fn }
}

// NewScheduler создаёт планировщик для изображения preview и подписывается
// на изменение размера его области.
func NewScheduler(preview Preview, renderer *Renderer, frames FrameRequester, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		canvas:   NewCanvas(),
		renderer: renderer,
		preview:  preview,
		frames:   frames,
		logger:   zap.NewNop(),
		dpr:      1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = preview.OnResize(s.Invalidate)
	return s
}

// SetBoxes заменяет кэш рамок и запрашивает перерисовку.
func (s *Scheduler) SetBoxes(boxes []entity.NormalizedBox, source entity.Dimensions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.boxes = append([]entity.NormalizedBox(nil), boxes...)
	s.source = source
	s.state = StateCached
	s.readyFired = false

	if !ready(s.preview) {
		s.watchLocked()
	}
	s.requestLocked()
}

// Invalidate запрашивает перерисовку: изменение размера окна или области,
// загрузка изображения. Запросы до ближайшего кадра поглощаются.
func (s *Scheduler) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateEmpty {
		return
	}
	s.state = StateCached
	s.requestLocked()
}

// Clear очищает кэш и поверхность.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.boxes = nil
	s.source = entity.Dimensions{}
	s.state = StateEmpty
	s.readyFired = false
	s.stopLocked()
	s.canvas.Erase()
}

// SetPreview переключает планировщик на другое изображение; прежние рамки сбрасываются.
func (s *Scheduler) SetPreview(preview Preview) {
	s.Clear()

	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.preview = preview
	s.mu.Unlock()

	unsubscribe := preview.OnResize(s.Invalidate)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// SetDevicePixelRatio меняет плотность пикселей и запрашивает перерисовку
func (s *Scheduler) SetDevicePixelRatio(dpr float64) {
	s.mu.Lock()
	changed := dpr > 0 && dpr != s.dpr
	if changed {
		s.dpr = dpr
	}
	s.mu.Unlock()

	if changed {
		s.Invalidate()
	}
}

// Close отписывается от изображения и отменяет отложенную работу
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// State возвращает текущее состояние
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Boxes возвращает копию кэша рамок
func (s *Scheduler) Boxes() []entity.NormalizedBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.NormalizedBox(nil), s.boxes...)
}

// Snapshot возвращает копию поверхности
func (s *Scheduler) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Snapshot()
}

// Display возвращает CSS-размер поверхности на момент последней отрисовки
func (s *Scheduler) Display() entity.Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Display()
}

func (s *Scheduler) requestLocked() {
	if s.pending {
		return
	}
	s.pending = true
	s.frameID++
	id := s.frameID
	s.cancelFrame = s.frames.RequestFrame(func() { s.paint(id) })
}

func (s *Scheduler) stopLocked() {
	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
	s.pending = false
	if s.cancelWatch != nil {
		s.cancelWatch()
		s.cancelWatch = nil
	}
}

// watchLocked ждёт загрузки изображения; новое ожидание отменяет прежнее.
func (s *Scheduler) watchLocked() {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelWatch = cancel
	preview := s.preview

	go func() {
		err := WaitReady(ctx, preview)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.fail(ctx, err)
			return
		}
		s.Invalidate()
	}()
}

// fail сообщает об ошибке загрузки, если ожидание не отменили Clear или SetPreview.
func (s *Scheduler) fail(ctx context.Context, err error) {
	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.cancelWatch()
	s.cancelWatch = nil
	s.mu.Unlock()

	s.logger.Warn("preview failed to load", zap.Error(err))
	if s.onError != nil {
		s.onError(errors.Join(ErrPreviewUnavailable, err))
	}
}

// paint рисует кэш, актуальный на момент кадра, а не на момент запроса.
func (s *Scheduler) paint(id uint64) {
	s.mu.Lock()
	if !s.pending || id != s.frameID {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.cancelFrame = nil

	if s.state == StateEmpty || !ready(s.preview) {
		s.mu.Unlock()
		return
	}

	display := s.preview.RenderedSize()
	t, err := NewTransform(s.source, display)
	if err != nil {
		if errors.Is(err, ErrViewportNotReady) {
			// вёрстка ещё не устоялась: пробуем на следующем кадре
			s.requestLocked()
		} else {
			s.logger.Warn("skip overlay paint", zap.Error(err))
		}
		s.mu.Unlock()
		return
	}

	s.canvas.SetDisplaySize(display)
	drawn := s.renderer.Render(s.canvas, t.MapAll(s.boxes), s.dpr)
	s.state = StateRendered
	fire := !s.readyFired
	s.readyFired = true
	s.mu.Unlock()

	s.logger.Debug("overlay painted",
		zap.Int("boxes", drawn),
		zap.Float64("display_width", display.Width),
		zap.Float64("display_height", display.Height))

	if fire && s.onReady != nil {
		s.onReady()
	}
}
