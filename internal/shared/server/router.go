package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/services/health"
	"maintenance-backend/internal/shared/config"
	"maintenance-backend/internal/shared/metrics"
	"maintenance-backend/internal/shared/server/middleware"
	"maintenance-backend/internal/shared/server/respond"
	"maintenance-backend/internal/shared/telemetry"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Options tunes router construction; the zero value uses production defaults.
type Options struct {
	RateLimits map[string]middleware.RateLimitRule
	Limiter    *middleware.RateLimiter
	Health     *health.Service
}

// NewRouter constructs the Gin engine with middleware, health, metrics and the feature routes.
func NewRouter(cfg config.Config, opts Options, handlers ...RouteRegistrar) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Forwarded headers only count from configured proxies; ClientIP keys the rate limiter.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		telemetry.Warn("router.trusted_proxies_invalid", map[string]any{"proxies": cfg.TrustedProxies, "error": err.Error()})
		_ = r.SetTrustedProxies(nil)
	}

	rules := opts.RateLimits
	if rules == nil {
		rules = middleware.DefaultRules()
	}
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules:    rules,
		GroupFor: middleware.GroupForRoute,
		Limiter:  opts.Limiter,
	}))
	api.GET("/health", func(c *gin.Context) {
		if opts.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		payload, ok := opts.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})
	for _, h := range handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
