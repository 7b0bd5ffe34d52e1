package export

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
	"maintenance-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the export service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/plans/:id/export/pdf", h.pdf)
	rg.GET("/plans/:id/export/json", h.json)
}

func (h *Handler) pdf(c *gin.Context) {
	h.download(c, h.Svc.ExportPDF)
}

func (h *Handler) json(c *gin.Context) {
	h.download(c, h.Svc.ExportJSON)
}

func (h *Handler) download(c *gin.Context, fn func(ctx context.Context, id string) (Artifact, error)) {
	art, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if art.Pages > 0 {
		c.Header("X-Report-Pages", strconv.Itoa(art.Pages))
	}
	if art.StorageKey != "" {
		c.Header("X-Storage-Key", art.StorageKey)
	}
	if art.Fallback {
		c.Header("X-Export-Alert", art.Alert)
	}
	respond.Attachment(c, art.FileName, art.ContentType, art.Data, art.Fallback)
}

func writeError(c *gin.Context, err error) {
	var blocked *BlockedError
	switch {
	case errors.As(err, &blocked):
		if first, ok := blocked.Result.First(); ok {
			c.Set("gateReason", string(first.Code))
		}
		respond.Error(c, http.StatusUnprocessableEntity, "export_blocked", review.BlockedMessage, blocked.Result)
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, "busy", "an export is already in progress", nil)
	case errors.Is(err, plans.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "plan not found", nil)
	case errors.Is(err, review.ErrNoSession):
		respond.Error(c, http.StatusConflict, "no_session", "review session is not open for this plan", nil)
	default:
		respond.Internal(c, "failed to export report", err)
	}
}
