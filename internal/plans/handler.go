package plans

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/shared/server/respond"
)

// ReviewViewer renders the review payload of an open plan.
type ReviewViewer interface {
	Snapshot(ctx context.Context, plan Plan) (any, error)
}

// Handler wires HTTP handlers to the plans service.
type Handler struct {
	Svc    *Service
	Review ReviewViewer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches plan routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog", h.catalog)
	rg.POST("/plans", h.generate)
	rg.GET("/plans", h.list)
	rg.GET("/plans/current", h.current)
	rg.GET("/plans/:id", h.open)
}

func (h *Handler) catalog(c *gin.Context) {
	respond.OK(c, CatalogResponse{
		Categories:      []Category{CategoryPreventive, CategoryCorrective},
		InstrumentTypes: InstrumentTypes,
		PlatformTypes:   PlatformTypes,
	})
}

func (h *Handler) generate(c *gin.Context) {
	var form Form
	if err := c.ShouldBindJSON(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	plan, err := h.Svc.Generate(c.Request.Context(), form)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, plan)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Internal(c, "failed to list plans", err)
		return
	}
	resp := make([]SummaryResponse, 0, len(items))
	for _, p := range items {
		resp = append(resp, toSummary(p))
	}
	respond.OK(c, gin.H{"items": resp})
}

func (h *Handler) current(c *gin.Context) {
	plan, ok := h.Svc.Current()
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "no plan is open", nil)
		return
	}
	resp := gin.H{"plan": plan}
	if h.Review != nil {
		if view, err := h.Review.Snapshot(c.Request.Context(), plan); err == nil {
			resp["review"] = view
		}
	}
	respond.OK(c, resp)
}

func (h *Handler) open(c *gin.Context) {
	plan, err := h.Svc.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, plan)
}

func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "validation_error", GeneralValidationMessage, verr.Fields)
	case errors.Is(err, ErrBusy):
		respond.Error(c, http.StatusConflict, "busy", ErrBusy.Error(), nil)
	case errors.Is(err, ErrGenerationFailed):
		respond.Error(c, http.StatusBadGateway, "generation_failed", "Failed to generate the maintenance document. Please try again.", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "plan not found", nil)
	default:
		respond.Internal(c, "request failed", err)
	}
}
