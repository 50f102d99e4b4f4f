package overlay

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitReady_CompleteResolvesImmediately(t *testing.T) {
	p := NewLoadedPreview(solidImage(10, 20), dims(50, 50))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, WaitReady(ctx, p), "already loaded image does not wait on context")
	require.Equal(t, dims(10, 20), p.NaturalSize())
}

func TestWaitReady_AsyncLoad(t *testing.T) {
	p := NewImagePreview(dims(50, 50))
	require.Equal(t, dims(0, 0), p.NaturalSize())

	release := make(chan struct{})
	p.Load(func() (image.Image, error) {
		<-release
		return solidImage(30, 40), nil
	})
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, WaitReady(ctx, p))
	require.Equal(t, dims(30, 40), p.NaturalSize())
}

func TestWaitReady_LoadError(t *testing.T) {
	p := NewImagePreview(dims(50, 50))
	p.Complete(nil, errors.New("corrupt jpeg"))
	require.EqualError(t, WaitReady(context.Background(), p), "corrupt jpeg")

	empty := NewImagePreview(dims(50, 50))
	empty.Complete(nil, nil)
	require.ErrorIs(t, WaitReady(context.Background(), empty), ErrPreviewUnavailable)
}

func TestWaitReady_Cancelled(t *testing.T) {
	p := NewImagePreview(dims(50, 50))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, WaitReady(ctx, p), context.Canceled)
}

func TestImagePreview_ResizeNotifies(t *testing.T) {
	p := NewLoadedPreview(solidImage(10, 10), dims(50, 50))
	calls := 0
	unsubscribe := p.OnResize(func() { calls++ })

	p.Resize(dims(60, 50))
	p.Resize(dims(60, 50))
	require.Equal(t, 1, calls, "same size does not notify")
	require.Equal(t, dims(60, 50), p.RenderedSize())

	unsubscribe()
	p.Resize(dims(70, 50))
	require.Equal(t, 1, calls)
}

func TestImagePreview_CompleteOnce(t *testing.T) {
	p := NewImagePreview(dims(50, 50))
	p.Complete(solidImage(5, 5), nil)
	p.Complete(nil, errors.New("late"))
	require.NoError(t, p.Err())
	require.NotNil(t, p.Image())
}

func TestSizedPreview(t *testing.T) {
	p := SizedPreview{Natural: dims(640, 480)}
	require.NoError(t, WaitReady(context.Background(), p))
	require.True(t, ready(p))
	require.Equal(t, dims(640, 480), ResolveDimensions(map[string]any{}, p))
}
