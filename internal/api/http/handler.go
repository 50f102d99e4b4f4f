package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "vision-overlay/internal/application"
	"vision-overlay/internal/domain/entity"
	"vision-overlay/internal/domain/port"
	"vision-overlay/internal/overlay"
)

// BuildInfo сведения о сборке для /health и /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Options параметры HTTP-слоя
type Options struct {
	MaxUpload    int64  // максимальный размер загружаемого снимка
	DefaultLabel string // подпись для рамок без класса
	Build        BuildInfo
}

type Handler struct {
	inspection *app.InspectionService
	detector   port.DetectionClient
	opts       Options
	logger     *zap.Logger
}

func NewHandler(inspection *app.InspectionService, detector port.DetectionClient, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultLabel == "" {
		opts.DefaultLabel = overlay.DefaultAnomalyLabel
	}
	return &Handler{
		inspection: inspection,
		detector:   detector,
		opts:       opts,
		logger:     logger,
	}
}

// Overlay обрабатывает POST /api/v1/overlay.
// Поля формы: image (файл), detections (необязательный JSON ответа детектора),
// label, format (json по умолчанию или jpeg).
func (h *Handler) Overlay(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Загрузите изображение в поле image", err)
		return
	}
	if h.opts.MaxUpload > 0 && file.Size > h.opts.MaxUpload {
		h.fail(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Размер файла превышает лимит (%d МБ)", h.opts.MaxUpload/(1024*1024)), nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Не удалось прочитать файл", err)
		return
	}
	photo, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		h.fail(c, http.StatusBadRequest, "Не удалось прочитать файл", err)
		return
	}

	label := h.label(c.PostForm("label"))
	ctx := c.Request.Context()

	var out *app.InspectionOutput
	if detections := c.PostForm("detections"); detections != "" {
		out, err = h.inspection.RenderPayload(ctx, photo, []byte(detections), label)
	} else {
		out, err = h.inspection.Inspect(ctx, photo, label)
	}
	if err != nil {
		status := statusFor(err)
		h.logger.Warn("overlay failed", zap.Int("status", status), zap.Error(err))
		h.fail(c, status, "Не удалось обработать изображение", err)
		return
	}

	h.logger.Info("overlay rendered",
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
		zap.Int("boxes", len(out.Result.Boxes)),
		zap.Bool("cached", out.Cached))

	if c.DefaultPostForm("format", "json") == "jpeg" {
		if len(out.Highlighted) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.Data(http.StatusOK, "image/jpeg", out.Highlighted)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Обработка завершена",
		Data: OverlayData{
			ImageWidth:    out.Result.ImageWidth,
			ImageHeight:   out.Result.ImageHeight,
			SourceWidth:   out.Result.Source.Width,
			SourceHeight:  out.Result.Source.Height,
			Boxes:         out.Result.Boxes,
			HasDetections: out.Result.HasDetections,
			Summary:       out.Summary,
			Cached:        out.Cached,
			Image:         out.Highlighted,
		},
	})
}

// Normalize обрабатывает POST /api/v1/normalize: разбор ответа детектора без отрисовки
func (h *Handler) Normalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "Некорректное тело запроса", err)
		return
	}

	natural := entity.Dimensions{Width: req.Width, Height: req.Height}
	result, err := h.inspection.Normalize(req.Payload, natural, h.label(req.Label))
	if err != nil {
		h.fail(c, statusFor(err), "Не удалось разобрать ответ детектора", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Найдено областей: %d", len(result.Boxes)),
		Data: OverlayData{
			ImageWidth:    result.ImageWidth,
			ImageHeight:   result.ImageHeight,
			SourceWidth:   result.Source.Width,
			SourceHeight:  result.Source.Height,
			Boxes:         result.Boxes,
			HasDetections: result.HasDetections,
		},
	})
}

// Health обрабатывает GET /health
func (h *Handler) Health(c *gin.Context) {
	detector := "disabled"
	if h.detector != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		detector = "ok"
		if err := h.detector.CheckHealth(ctx); err != nil {
			h.logger.Warn("detector health check failed", zap.Error(err))
			detector = "unavailable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  h.opts.Build.Version,
		"detector": detector,
	})
}

// Version обрабатывает GET /version
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    h.opts.Build.Version,
		"build_time": h.opts.Build.BuildTime,
		"git_commit": h.opts.Build.GitCommit,
	})
}

// label переводит режим из запроса в подпись для рамок без класса
func (h *Handler) label(v string) string {
	return entity.ResolveLabel(v, h.opts.DefaultLabel)
}

func (h *Handler) fail(c *gin.Context, status int, message string, err error) {
	resp := Response{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrEmptyImage), errors.Is(err, overlay.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, overlay.ErrPreviewUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrDetectorNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, app.ErrRenderTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
