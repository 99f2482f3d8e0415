package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/infrastructure/config"
	"github.com/shopflux/storefront/internal/infrastructure/logger"
	"github.com/shopflux/storefront/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig holds what the global middleware stack needs
type EngineConfig struct {
	Logger         *zap.Logger
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	// Meter records HTTP metrics; nil leaves them off.
	Meter metric.Meter
	// ProfilingEnabled adds Pyroscope labels per request; the profiler itself
	// is started by the caller.
	ProfilingEnabled bool
}

// NewEngine builds a gin engine with the global middleware stack:
//
//  1. RequestID - generate or propagate X-Request-ID
//  2. Tracing - one otelgin server span per request
//  3. Recovery - turn panics into 500s
//  4. Logger - request-scoped zap logger and access line
//  5. SpanStatus - mark 4xx/5xx spans as errors
//  6. SecurityHeaders, CORS, BodyLimit
//  7. HTTPMetrics, Profiling
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			cfg.Logger.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled))
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.SpanStatus())
	engine.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORS(corsConfig(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	engine.Use(middleware.HTTPMetrics(cfg.Meter, cfg.Logger))
	engine.Use(middleware.Profiling(cfg.ProfilingEnabled))

	return engine
}

func corsConfig(httpCfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = httpCfg.CORSAllowOrigins
	if len(httpCfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = httpCfg.CORSAllowMethods
	}
	if len(httpCfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = httpCfg.CORSAllowHeaders
	}
	return cors
}
