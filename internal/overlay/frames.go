package overlay

import "time"

// DefaultFrameInterval шаг кадра, около 60 кадров в секунду.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameRequester планирует вызов fn на ближайшем кадре.
// Возвращённая функция отменяет ещё не выполненный вызов.
type FrameRequester interface {
	RequestFrame(fn func()) (cancel func())
}

// TimerFrames выдаёт кадры по таймеру.
type TimerFrames struct {
	interval time.Duration
}

// NewTimerFrames создаёт планировщик кадров с заданным шагом
func NewTimerFrames(interval time.Duration) *TimerFrames {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerFrames{interval: interval}
}

func (f *TimerFrames) RequestFrame(fn func()) func() {
	t := time.AfterFunc(f.interval, fn)
	return func() { t.Stop() }
}
