package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/shared/server/respond"
	"maintenance-backend/internal/shared/telemetry"
)

// Recovery turns a panic into a 500 envelope. If the handler already
// started streaming a body the connection is left as is.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && err == http.ErrAbortHandler {
				panic(rec)
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"route":      c.FullPath(),
				"panic":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
			}
			if planID := c.Param("id"); planID != "" {
				fields["plan_id"] = planID
			}
			telemetry.Error("panic.recovered", fields)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
