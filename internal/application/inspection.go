package app

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vision-overlay/internal/domain/entity"
	"vision-overlay/internal/domain/port"
	"vision-overlay/internal/overlay"
)

var (
	ErrDetectorNotConfigured = errors.New("detector is not configured")
	ErrEmptyImage            = errors.New("image is empty")
	ErrRenderTimeout         = errors.New("overlay was not rendered in time")
)

// RenderOptions параметры отрисовки разметки
type RenderOptions struct {
	DisplayMaxSide   int           // длинная сторона области отображения
	DevicePixelRatio float64       // плотность пикселей итоговой картинки
	MinScore         float64       // порог уверенности
	FrameInterval    time.Duration // шаг кадра планировщика
	RenderTimeout    time.Duration // сколько ждать загрузки и первой отрисовки
	Style            overlay.Style
}

// DefaultRenderOptions возвращает параметры по умолчанию
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		DisplayMaxSide:   1280,
		DevicePixelRatio: 1,
		FrameInterval:    overlay.DefaultFrameInterval,
		RenderTimeout:    10 * time.Second,
		Style:            overlay.DefaultStyle(),
	}
}

// InspectionDeps адаптеры, с которыми работает InspectionService
type InspectionDeps struct {
	Detector   port.DetectionClient
	Decoder    port.ImageDecoder
	Compositor port.Compositor
	Cache      port.ResultCache
	Describer  port.Describer
}

type InspectionService struct {
	users      *UserService
	detector   port.DetectionClient
	decoder    port.ImageDecoder
	compositor port.Compositor
	cache      port.ResultCache
	describer  port.Describer
	opts       RenderOptions
	logger     *zap.Logger

	// одинаковые снимки, пришедшие одновременно, уходят в детектор один раз
	inflight singleflight.Group
}

// InspectionOutput содержит результат разметки и картинку с подсветкой.
type InspectionOutput struct {
	Result      *entity.InspectionResult
	Highlighted []byte // JPEG; пусто, если рамок нет
	Summary     string
	Cached      bool // ответ детектора взят из кэша
}

// NewInspectionService создаёт сервис, который размечает снимки.
func NewInspectionService(users *UserService, deps InspectionDeps, opts RenderOptions, logger *zap.Logger) *InspectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = DefaultRenderOptions().RenderTimeout
	}
	return &InspectionService{
		users:      users,
		detector:   deps.Detector,
		decoder:    deps.Decoder,
		compositor: deps.Compositor,
		cache:      deps.Cache,
		describer:  deps.Describer,
		opts:       opts,
		logger:     logger,
	}
}

// ProcessPhoto размечает фото пользователя с подписью по его режиму.
// На время обработки пользователь переводится в StateProcessing, после неё в главное меню.
func (s *InspectionService) ProcessPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*InspectionOutput, error) {
	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	defer func() {
		if _, err := s.users.SetState(context.WithoutCancel(ctx), userID, chatID, entity.StateMainMenu); err != nil {
			s.logger.Warn("failed to reset user state", zap.Int64("user_id", userID), zap.Error(err))
		}
	}()

	return s.Inspect(ctx, photo, user.Mode.DefaultLabel())
}

// Inspect отправляет снимок в детектор и рисует рамки поверх него.
// Декодирование снимка идёт параллельно с запросом к детектору.
func (s *InspectionService) Inspect(ctx context.Context, photo []byte, label string) (*InspectionOutput, error) {
	if len(photo) == 0 {
		return nil, ErrEmptyImage
	}
	if s.detector == nil {
		return nil, ErrDetectorNotConfigured
	}

	preview := s.loadPreview(photo)
	raw, cached, err := s.Detect(ctx, photo)
	if err != nil {
		return nil, err
	}

	out, err := s.render(ctx, preview, raw, label)
	if err != nil {
		return nil, err
	}
	out.Cached = cached
	return out, nil
}

// RenderPayload рисует уже полученный ответ детектора поверх снимка.
func (s *InspectionService) RenderPayload(ctx context.Context, photo, payload []byte, label string) (*InspectionOutput, error) {
	if len(photo) == 0 {
		return nil, ErrEmptyImage
	}
	return s.render(ctx, s.loadPreview(photo), payload, label)
}

// Normalize разбирает ответ детектора без отрисовки. natural задаёт размер
// снимка, если он известен вызывающему.
func (s *InspectionService) Normalize(payload []byte, natural entity.Dimensions, label string) (*entity.InspectionResult, error) {
	decoded, err := overlay.DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	preview := overlay.SizedPreview{Natural: natural, Rendered: natural}
	source := overlay.ResolveDimensions(decoded, preview)
	boxes := overlay.NormalizePayload(decoded, source, s.normalizeOptions(label))

	return &entity.InspectionResult{
		ImageWidth:    int(natural.Width),
		ImageHeight:   int(natural.Height),
		Source:        source,
		Boxes:         boxes,
		HasDetections: len(boxes) > 0,
	}, nil
}

// Detect возвращает ответ детектора для снимка, по возможности из кэша.
func (s *InspectionService) Detect(ctx context.Context, photo []byte) ([]byte, bool, error) {
	if s.detector == nil {
		return nil, false, ErrDetectorNotConfigured
	}

	key := photoMD5(photo)
	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("failed to get cache", zap.String("md5", key), zap.Error(err))
		}
		if data != nil {
			s.logger.Debug("cache hit", zap.String("md5", key))
			return data, true, nil
		}
	}

	v, err, shared := s.inflight.Do(key, func() (any, error) {
		start := time.Now()
		data, err := s.detector.Detect(ctx, photo)
		if err != nil {
			return nil, fmt.Errorf("detect: %w", err)
		}
		s.logger.Info("detector responded",
			zap.String("md5", key),
			zap.Int("bytes", len(data)),
			zap.Duration("cost", time.Since(start)))

		if s.cache != nil {
			if err := s.cache.Set(ctx, key, data); err != nil {
				s.logger.Warn("failed to set cache", zap.String("md5", key), zap.Error(err))
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	if shared {
		s.logger.Debug("detector call shared", zap.String("md5", key))
	}
	return v.([]byte), false, nil
}

func (s *InspectionService) loadPreview(photo []byte) *overlay.ImagePreview {
	// размер области станет известен после декодирования
	preview := overlay.NewImagePreview(entity.Dimensions{})
	preview.Load(func() (image.Image, error) {
		if s.decoder == nil {
			return nil, errors.New("image decoder is not configured")
		}
		return s.decoder.Decode(photo)
	})
	return preview
}

func (s *InspectionService) render(ctx context.Context, preview *overlay.ImagePreview, raw []byte, label string) (*InspectionOutput, error) {
	payload, err := overlay.DecodePayload(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.RenderTimeout)
	defer cancel()

	painted := make(chan struct{})
	var once sync.Once
	scheduler := overlay.NewScheduler(preview,
		overlay.NewRenderer(s.opts.Style),
		overlay.NewTimerFrames(s.opts.FrameInterval),
		overlay.WithLogger(s.logger),
		overlay.WithDevicePixelRatio(s.opts.DevicePixelRatio),
		overlay.OnReady(func() { once.Do(func() { close(painted) }) }),
	)
	defer scheduler.Close()

	view := overlay.NewView(preview, scheduler, s.normalizeOptions(label), s.logger)
	boxes, err := view.SetDetections(ctx, payload)
	if err != nil {
		return nil, err
	}

	natural := preview.NaturalSize()
	// раскладка устоялась: область получает размер по загруженному снимку
	preview.Resize(fitDisplay(natural, s.opts.DisplayMaxSide))

	result := &entity.InspectionResult{
		ImageWidth:    int(natural.Width),
		ImageHeight:   int(natural.Height),
		Source:        overlay.ResolveDimensions(payload, preview),
		Boxes:         boxes,
		HasDetections: len(boxes) > 0,
	}
	out := &InspectionOutput{Result: result, Summary: s.describe(ctx, result)}

	if !result.HasDetections || s.compositor == nil {
		return out, nil
	}

	select {
	case <-painted:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrRenderTimeout, ctx.Err())
	}

	highlighted, err := s.compositor.Compose(preview.Image(), scheduler.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	out.Highlighted = highlighted
	return out, nil
}

func (s *InspectionService) describe(ctx context.Context, result *entity.InspectionResult) string {
	if s.describer == nil {
		return ""
	}
	desc, err := s.describer.Describe(ctx, result)
	if err != nil {
		s.logger.Warn("failed to describe result", zap.Error(err))
		return ""
	}
	return desc.Text
}

func (s *InspectionService) normalizeOptions(label string) overlay.NormalizeOptions {
	return overlay.NormalizeOptions{DefaultLabel: label, MinScore: s.opts.MinScore}
}

// fitDisplay вписывает снимок в квадрат maxSide, не увеличивая его
func fitDisplay(natural entity.Dimensions, maxSide int) entity.Dimensions {
	longest := math.Max(natural.Width, natural.Height)
	if maxSide <= 0 || longest <= float64(maxSide) {
		return natural
	}
	scale := float64(maxSide) / longest
	return entity.Dimensions{
		Width:  math.Max(1, math.Round(natural.Width*scale)),
		Height: math.Max(1, math.Round(natural.Height*scale)),
	}
}

func photoMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
