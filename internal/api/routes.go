package api

import (
	"github.com/gin-gonic/gin"

	"github.com/youruser/coverapp/internal/metrics"
)

func RegisterRoutes(r *gin.Engine, h *Handler, limiter *RateLimiter) {
	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/qr", qrHandler)
	r.POST("/upload_image", h.UploadImage)
	r.POST("/generate_cover", limiter.Middleware(), h.GenerateCover)
}
