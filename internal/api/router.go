package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/coverapp/internal/config"
	"github.com/youruser/coverapp/internal/metrics"
)

// NewRouter builds the engine with logging, recovery, metrics and CORS.
func NewRouter(cfg *config.Config, logger *zap.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(CorrelationID())
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))
	r.Use(metrics.GinMiddleware())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", correlationIDHeader},
		ExposeHeaders: []string{"Content-Length", correlationIDHeader, "X-Cover-Path"},
		MaxAge:        12 * time.Hour,
	}
	if allowAll(cfg.Server.AllowedOrigins) {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	return r
}

func allowAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
