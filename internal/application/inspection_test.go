package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vision-overlay/internal/domain/entity"
	"vision-overlay/internal/infrastructure/describe"
	"vision-overlay/internal/infrastructure/storage"
	"vision-overlay/internal/infrastructure/vision"
	"vision-overlay/internal/overlay"
)

type fakeDetector struct {
	payload string
	err     error
	calls   atomic.Int32
	release chan struct{} // если задан, Detect ждёт его закрытия
}

func (d *fakeDetector) Detect(ctx context.Context, imageData []byte) ([]byte, error) {
	d.calls.Add(1)
	if d.release != nil {
		<-d.release
	}
	if d.err != nil {
		return nil, d.err
	}
	return []byte(d.payload), nil
}

func (d *fakeDetector) CheckHealth(ctx context.Context) error { return nil }

func testPhoto(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(t *testing.T, detector *fakeDetector) (*InspectionService, *UserService) {
	t.Helper()
	users := NewUserService(storage.NewMemoryUserRepository())
	opts := DefaultRenderOptions()
	opts.DisplayMaxSide = 100
	opts.DevicePixelRatio = 2
	opts.FrameInterval = time.Millisecond
	opts.RenderTimeout = 5 * time.Second
	opts.MinScore = 0.3

	deps := InspectionDeps{
		Decoder:    vision.NewDecoder(),
		Compositor: vision.NewCompositor(90),
		Cache:      storage.NewMemoryResultCache(time.Minute),
		Describer:  describe.NewTextDescriber(0),
	}
	if detector != nil {
		deps.Detector = detector
	}
	return NewInspectionService(users, deps, opts, zaptest.NewLogger(t)), users
}

const scratchPayload = `{"image":{"width":200,"height":100},"detections":[
	{"bbox":[20,10,120,90],"class":"scratch","confidence":0.87},
	{"x":150,"y":20,"w":30,"h":30,"score":0.1},
	{"x":150,"y":60,"w":30,"h":30}
]}`

func TestInspectionService_Inspect(t *testing.T) {
	detector := &fakeDetector{payload: scratchPayload}
	svc, _ := newTestService(t, detector)
	photo := testPhoto(t, 200, 100)

	out, err := svc.Inspect(context.Background(), photo, overlay.DefaultAnomalyLabel)
	require.NoError(t, err)
	require.False(t, out.Cached)
	require.True(t, out.Result.HasDetections)
	require.Equal(t, 200, out.Result.ImageWidth)
	require.Equal(t, entity.Dimensions{Width: 200, Height: 100}, out.Result.Source)

	// рамка с уверенностью 0.1 ниже порога
	require.Len(t, out.Result.Boxes, 2)
	require.Equal(t, "scratch", out.Result.Boxes[0].Label)
	require.Equal(t, "Anomaly", out.Result.Boxes[1].Label)
	require.Equal(t, "Найдено областей: 2. scratch 87%, Anomaly", out.Summary)

	// область 100x50 при плотности 2
	require.NotEmpty(t, out.Highlighted)
	img, err := vision.NewDecoder().Decode(out.Highlighted)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	again, err := svc.Inspect(context.Background(), photo, overlay.DefaultAnomalyLabel)
	require.NoError(t, err)
	require.True(t, again.Cached)
	require.Equal(t, int32(1), detector.calls.Load())
}

func TestInspectionService_NoDetections(t *testing.T) {
	svc, _ := newTestService(t, &fakeDetector{payload: `{"boxes":[]}`})

	out, err := svc.Inspect(context.Background(), testPhoto(t, 50, 50), overlay.DefaultAnomalyLabel)
	require.NoError(t, err)
	require.False(t, out.Result.HasDetections)
	require.Empty(t, out.Result.Boxes)
	require.Empty(t, out.Highlighted)
	require.Equal(t, "Областей не найдено.", out.Summary)
}

func TestInspectionService_Errors(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Inspect(context.Background(), testPhoto(t, 10, 10), "")
	require.ErrorIs(t, err, ErrDetectorNotConfigured)

	detector := &fakeDetector{err: errors.New("model is down")}
	svc, _ = newTestService(t, detector)
	_, err = svc.Inspect(context.Background(), testPhoto(t, 10, 10), "")
	require.ErrorContains(t, err, "model is down")

	_, err = svc.Inspect(context.Background(), nil, "")
	require.ErrorIs(t, err, ErrEmptyImage)

	svc, _ = newTestService(t, &fakeDetector{payload: `{"boxes":[[1,1,5,5]]}`})
	_, err = svc.Inspect(context.Background(), []byte("not an image"), "")
	require.ErrorIs(t, err, overlay.ErrPreviewUnavailable)

	svc, _ = newTestService(t, &fakeDetector{payload: `{"boxes":`})
	_, err = svc.Inspect(context.Background(), testPhoto(t, 10, 10), "")
	require.Error(t, err)
}

func TestInspectionService_ErrorNotCached(t *testing.T) {
	detector := &fakeDetector{err: errors.New("timeout")}
	svc, _ := newTestService(t, detector)
	photo := testPhoto(t, 10, 10)

	_, err := svc.Inspect(context.Background(), photo, "")
	require.Error(t, err)

	detector.err = nil
	detector.payload = `[]`
	out, err := svc.Inspect(context.Background(), photo, "")
	require.NoError(t, err)
	require.False(t, out.Cached)
	require.Equal(t, int32(2), detector.calls.Load())
}

func TestInspectionService_ConcurrentDetectCollapses(t *testing.T) {
	detector := &fakeDetector{payload: scratchPayload, release: make(chan struct{})}
	svc, _ := newTestService(t, detector)
	photo := testPhoto(t, 40, 20)

	const callers = 8
	results := make([][]byte, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = svc.Detect(context.Background(), photo)
		}(i)
	}

	require.Eventually(t, func() bool { return detector.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(detector.release)
	wg.Wait()

	require.Equal(t, int32(1), detector.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, scratchPayload, string(results[i]))
	}
}

func TestInspectionService_RenderPayload(t *testing.T) {
	svc, _ := newTestService(t, nil)

	out, err := svc.RenderPayload(context.Background(), testPhoto(t, 300, 300),
		[]byte(`[{"x":0.1,"y":0.1,"width":0.5,"height":0.5,"normalized":true}]`), overlay.DefaultDetectionLabel)
	require.NoError(t, err)
	require.Len(t, out.Result.Boxes, 1)
	require.Equal(t, "Detection", out.Result.Boxes[0].Label)
	require.NotEmpty(t, out.Highlighted)
}

func TestInspectionService_ProcessPhoto(t *testing.T) {
	svc, users := newTestService(t, &fakeDetector{payload: `{"boxes":[{"x":10,"y":10,"w":20,"h":20}]}`})
	ctx := context.Background()

	_, err := users.SetMode(ctx, 1, 10, entity.ModeDetection)
	require.NoError(t, err)

	out, err := svc.ProcessPhoto(ctx, 1, 10, testPhoto(t, 100, 100))
	require.NoError(t, err)
	require.Equal(t, "Detection", out.Result.Boxes[0].Label)

	user, err := users.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestInspectionService_Normalize(t *testing.T) {
	svc, _ := newTestService(t, nil)

	result, err := svc.Normalize([]byte(`{"predictions":[{"xmin":10,"ymin":10,"xmax":50,"ymax":90,"label":"dent"}]}`),
		entity.Dimensions{Width: 100, Height: 100}, "")
	require.NoError(t, err)
	require.Len(t, result.Boxes, 1)
	require.InDelta(t, 0.4, result.Boxes[0].W, 1e-9)
	require.Equal(t, entity.Dimensions{Width: 100, Height: 100}, result.Source)
}

func TestFitDisplay(t *testing.T) {
	require.Equal(t, entity.Dimensions{Width: 100, Height: 50}, fitDisplay(entity.Dimensions{Width: 200, Height: 100}, 100))
	require.Equal(t, entity.Dimensions{Width: 80, Height: 60}, fitDisplay(entity.Dimensions{Width: 80, Height: 60}, 100))
	require.Equal(t, entity.Dimensions{Width: 1, Height: 100}, fitDisplay(entity.Dimensions{Width: 2, Height: 1000}, 100))
	require.Equal(t, entity.Dimensions{Width: 500, Height: 10}, fitDisplay(entity.Dimensions{Width: 500, Height: 10}, 0))
}
