package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the settings service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches settings routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings", h.get)
	rg.PUT("/settings", h.put)
}

func (h *Handler) get(c *gin.Context) {
	s, err := h.Svc.Get(c.Request.Context())
	if err != nil {
		respond.Internal(c, "failed to load settings", err)
		return
	}
	respond.OK(c, s)
}

func (h *Handler) put(c *gin.Context) {
	var req Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	saved, err := h.Svc.Save(c.Request.Context(), req)
	if err != nil {
		respond.Internal(c, "failed to save settings", err)
		return
	}
	respond.OK(c, saved)
}
