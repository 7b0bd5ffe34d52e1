package review

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/shared/server/respond"
	"maintenance-backend/internal/signature"
)

// PlanOpener resolves a plan id to the displayed plan, opening its session.
type PlanOpener interface {
	Open(ctx context.Context, id string) (plans.Plan, error)
}

// Handler wires HTTP handlers to the review manager.
type Handler struct {
	Plans   PlanOpener
	Manager *Manager
}

// NewHandler constructs a Handler.
func NewHandler(plansSvc PlanOpener, manager *Manager) *Handler {
	return &Handler{Plans: plansSvc, Manager: manager}
}

// RegisterRoutes attaches review routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/plans/:id/review", h.get)
	rg.PATCH("/plans/:id/review", h.patch)
	rg.POST("/plans/:id/review/risks/:index/toggle", h.toggleRisk)
	rg.POST("/plans/:id/review/risks/acknowledge-all", h.acknowledgeAll)
	rg.PUT("/plans/:id/review/signatures/:role", h.captureSignature)
	rg.DELETE("/plans/:id/review/signatures/:role", h.clearSignature)
}

// Snapshot returns the review view for the plan, used by the plans handler.
func (h *Handler) Snapshot(ctx context.Context, plan plans.Plan) (any, error) {
	p, st, err := h.Manager.Snapshot(plan.ID)
	if err != nil {
		return nil, err
	}
	return NewView(p, st), nil
}

func (h *Handler) get(c *gin.Context) {
	plan, ok := h.open(c)
	if !ok {
		return
	}
	p, st, err := h.Manager.Snapshot(plan.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, NewView(p, st))
}

func (h *Handler) patch(c *gin.Context) {
	var req Patch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.mutate(c, func(ctx context.Context, planID string) (State, error) {
		return h.Manager.Patch(ctx, planID, req)
	})
}

func (h *Handler) toggleRisk(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "risk index must be an integer", nil)
		return
	}
	h.mutate(c, func(ctx context.Context, planID string) (State, error) {
		return h.Manager.ToggleRisk(ctx, planID, index)
	})
}

func (h *Handler) acknowledgeAll(c *gin.Context) {
	h.mutate(c, h.Manager.AcknowledgeAllRisks)
}

func (h *Handler) captureSignature(c *gin.Context) {
	role, err := ParseRole(c.Param("role"))
	if err != nil {
		writeError(c, err)
		return
	}
	var req Capture
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.mutate(c, func(ctx context.Context, planID string) (State, error) {
		return h.Manager.CaptureSignature(ctx, planID, role, req)
	})
}

func (h *Handler) clearSignature(c *gin.Context) {
	role, err := ParseRole(c.Param("role"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.mutate(c, func(ctx context.Context, planID string) (State, error) {
		return h.Manager.ClearSignature(ctx, planID, role)
	})
}

func (h *Handler) mutate(c *gin.Context, fn func(ctx context.Context, planID string) (State, error)) {
	plan, ok := h.open(c)
	if !ok {
		return
	}
	st, err := fn(c.Request.Context(), plan.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, NewView(plan, st))
}

func (h *Handler) open(c *gin.Context) (plans.Plan, bool) {
	plan, err := h.Plans.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return plans.Plan{}, false
	}
	return plan, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, plans.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "plan not found", nil)
	case errors.Is(err, ErrNoSession):
		respond.Error(c, http.StatusConflict, "no_session", "review session is not open for this plan", nil)
	case errors.Is(err, ErrRiskOutOfRange):
		respond.Error(c, http.StatusBadRequest, "validation_error", "risk index out of range", nil)
	case errors.Is(err, ErrUnknownRole):
		respond.Error(c, http.StatusNotFound, "not_found", "unknown signature role", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, signature.ErrInactive):
		respond.Error(c, http.StatusConflict, "signature_present", "clear the stored signature before drawing a new one", nil)
	case errors.Is(err, signature.ErrEmpty):
		respond.Error(c, http.StatusBadRequest, "validation_error", "signature is empty", nil)
	default:
		respond.Internal(c, "failed to update review", err)
	}
}
