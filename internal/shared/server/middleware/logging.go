package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/shared/telemetry"
)

// quietRoutes are polled by infrastructure and only logged when they fail.
var quietRoutes = map[string]bool{
	"/metrics":       true,
	"/api/v1/health": true,
}

// Logging emits one line per request. The level follows the status class
// so a blocked export shows up as a warning.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if quietRoutes[c.FullPath()] && status < http.StatusInternalServerError {
			return
		}

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes":       c.Writer.Size(),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.Param("id"); id != "" {
			fields["plan_id"] = id
		}
		if reason := c.GetString("gateReason"); reason != "" {
			fields["gate_reason"] = reason
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
