package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter собирает маршруты API
func NewRouter(h *Handler, mode string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Logger(logger))
	r.MaxMultipartMemory = 32 << 20

	r.GET("/health", h.Health)
	r.GET("/version", h.Version)

	api := r.Group("/api/v1")
	{
		api.POST("/overlay", h.Overlay)
		api.POST("/normalize", h.Normalize)
	}

	return r
}
