package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var corsStatic = map[string]string{
	"Access-Control-Allow-Methods":  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	"Access-Control-Allow-Headers":  "Content-Type, X-Request-Id",
	"Access-Control-Max-Age":        "600",
	"Access-Control-Expose-Headers": "X-Request-Id, X-Export-Alert, X-Report-Pages, X-Storage-Key, Content-Disposition, Retry-After",
}

// CORS answers browser preflights for the tablet frontend. A "*" entry
// allows any origin but then withholds credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]bool)
	wildcard := false
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			wildcard = true
		default:
			origins[o] = true
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := c.GetHeader("Origin"); origin != "" {
			switch {
			case origins[origin]:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if h.Get("Access-Control-Allow-Origin") != "" {
				for k, v := range corsStatic {
					h.Set(k, v)
				}
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
