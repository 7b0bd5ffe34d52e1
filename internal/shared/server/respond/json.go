package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/shared/util"
)

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Attachment writes data as a download. With inline set the browser is
// asked to display it instead, which the printable fallback relies on.
func Attachment(c *gin.Context, fileName, contentType string, data []byte, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", util.ContentDisposition(disposition, fileName))
	c.Data(http.StatusOK, contentType, data)
}
