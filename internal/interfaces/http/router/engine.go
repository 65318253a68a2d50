package router

import (
	"github.com/erp/purchasing/internal/infrastructure/config"
	"github.com/erp/purchasing/internal/infrastructure/logger"
	"github.com/erp/purchasing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig collects what the HTTP middleware stack needs
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Logger  *zap.Logger
	Tracing middleware.TracingConfig
	// Metrics is typically middleware.HTTPMetrics; nil disables it
	Metrics gin.HandlerFunc
}

// NewEngine builds a gin engine with the middleware stack applied in order:
// RequestID, Recovery, Tracing, request logging, security headers, CORS, body limit, metrics.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics)
	}

	return engine
}
