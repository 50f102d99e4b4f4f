package overlay

import (
	"context"
	"errors"
	"image"
	"sync"

	"vision-overlay/internal/domain/entity"
)

// ErrPreviewUnavailable: изображение так и не стало готовым к отрисовке.
var ErrPreviewUnavailable = errors.New("preview image is not available")

// Preview описывает отображаемое изображение, поверх которого рисуются рамки.
type Preview interface {
	// NaturalSize возвращает собственный размер изображения в пикселях (0, пока не загружено)
	NaturalSize() entity.Dimensions
	// RenderedSize возвращает размер области, в которую вписано изображение
	RenderedSize() entity.Dimensions
	// Done закрывается, когда загрузка завершилась успехом или ошибкой
	Done() <-chan struct{}
	// Err возвращает ошибку загрузки после закрытия Done
	Err() error
	// OnResize подписывает на изменение размера области; возвращает отписку
	OnResize(fn func()) (unsubscribe func())
}

// WaitReady дожидается загрузки изображения. Если оно уже загружено,
// возвращает результат сразу, не переключаясь на ожидание.
func WaitReady(ctx context.Context, p Preview) error {
	select {
	case <-p.Done():
		return p.Err()
	default:
	}

	select {
	case <-p.Done():
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ready сообщает без ожидания, что изображение загружено успешно
func ready(p Preview) bool {
	select {
	case <-p.Done():
		return p.Err() == nil
	default:
		return false
	}
}

// ImagePreview реализует Preview поверх image.Image.
type ImagePreview struct {
	mu       sync.RWMutex
	img      image.Image
	err      error
	rendered entity.Dimensions
	done     chan struct{}
	once     sync.Once

	listeners map[int]func()
	nextID    int
}

// NewImagePreview создаёт незагруженное изображение с областью отображения заданного размера.
func NewImagePreview(rendered entity.Dimensions) *ImagePreview {
	return &ImagePreview{
		rendered:  rendered,
		done:      make(chan struct{}),
		listeners: make(map[int]func()),
	}
}

// NewLoadedPreview создаёт уже загруженное изображение.
func NewLoadedPreview(img image.Image, rendered entity.Dimensions) *ImagePreview {
	p := NewImagePreview(rendered)
	p.Complete(img, nil)
	return p
}

// Load запускает загрузку в фоне и завершает изображение её результатом.
func (p *ImagePreview) Load(load func() (image.Image, error)) {
	go func() {
		img, err := load()
		p.Complete(img, err)
	}()
}

// Complete фиксирует результат загрузки; повторные вызовы игнорируются.
func (p *ImagePreview) Complete(img image.Image, err error) {
	p.once.Do(func() {
		if err == nil && img == nil {
			err = ErrPreviewUnavailable
		}
		p.mu.Lock()
		p.img = img
		p.err = err
		p.mu.Unlock()
		close(p.done)
	})
}

// Image возвращает загруженное изображение или nil
func (p *ImagePreview) Image() image.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.img
}

func (p *ImagePreview) NaturalSize() entity.Dimensions {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.img == nil {
		return entity.Dimensions{}
	}
	b := p.img.Bounds()
	return entity.Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func (p *ImagePreview) RenderedSize() entity.Dimensions {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rendered
}

func (p *ImagePreview) Done() <-chan struct{} { return p.done }

func (p *ImagePreview) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Resize меняет размер области отображения и уведомляет подписчиков.
func (p *ImagePreview) Resize(rendered entity.Dimensions) {
	p.mu.Lock()
	if p.rendered == rendered {
		p.mu.Unlock()
		return
	}
	p.rendered = rendered
	listeners := make([]func(), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (p *ImagePreview) OnResize(fn func()) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// SizedPreview описывает изображение, от которого известны только размеры.
// Всегда готово; используется, когда пиксели не нужны (нормализация без отрисовки).
type SizedPreview struct {
	Natural  entity.Dimensions
	Rendered entity.Dimensions
}

var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func (p SizedPreview) NaturalSize() entity.Dimensions  { return p.Natural }
func (p SizedPreview) RenderedSize() entity.Dimensions { return p.Rendered }
func (p SizedPreview) Done() <-chan struct{}           { return closedDone }
func (p SizedPreview) Err() error                      { return nil }
func (p SizedPreview) OnResize(func()) func()          { return func() {} }

var (
	_ Preview = (*ImagePreview)(nil)
	_ Preview = SizedPreview{}
)
