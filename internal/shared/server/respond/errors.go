package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/shared/telemetry"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error aborts the request with the error envelope. Client errors log at
// warn, server errors at error.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"route":      c.FullPath(),
		"request_id": c.GetString("requestId"),
	}
	if planID := c.Param("id"); planID != "" {
		fields["plan_id"] = planID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.rejected", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// Internal hides the cause from the client; it is logged instead.
func Internal(c *gin.Context, message string, cause error) {
	if cause != nil {
		_ = c.Error(cause)
	}
	Error(c, http.StatusInternalServerError, "internal_error", message, nil)
}
