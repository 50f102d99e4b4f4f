package overlay

import (
	"image"
	"sort"
	"sync"

	"vision-overlay/internal/domain/entity"
)

// manualFrames выполняет кадры только по команде Flush.
type manualFrames struct {
	mu    sync.Mutex
	next  int
	queue map[int]func()
}

func newManualFrames() *manualFrames {
	return &manualFrames{queue: make(map[int]func())}
}

func (f *manualFrames) RequestFrame(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.queue[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.queue, id)
		f.mu.Unlock()
	}
}

func (f *manualFrames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Flush выполняет все запланированные кадры и возвращает их число
func (f *manualFrames) Flush() int {
	f.mu.Lock()
	ids := make([]int, 0, len(f.queue))
	for id := range f.queue {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, f.queue[id])
		delete(f.queue, id)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 120, 150, 255
	}
	return img
}

func dims(w, h float64) entity.Dimensions {
	return entity.Dimensions{Width: w, Height: h}
}

func opaquePixels(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}
