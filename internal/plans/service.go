package plans

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"maintenance-backend/internal/settings"
	"maintenance-backend/internal/shared/metrics"
	"maintenance-backend/internal/shared/telemetry"
)

// Generator is the Generation Gateway: it turns a request into a plan-shaped JSON value.
type Generator interface {
	Generate(ctx context.Context, req Request) (json.RawMessage, error)
}

// History is the bounded, most-recent-first list of generated plans.
type History interface {
	Prepend(ctx context.Context, plan Plan) error
	List(ctx context.Context) ([]Plan, error)
	Find(ctx context.Context, id string) (Plan, bool, error)
}

// SettingsSource supplies the user's generation preferences.
type SettingsSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// ReviewOpener loads the annotation session of the plan being displayed.
type ReviewOpener interface {
	Open(ctx context.Context, plan Plan) error
}

// Service owns the current plan and the generation workflow.
type Service struct {
	Generator Generator
	History   History
	Settings  SettingsSource
	Review    ReviewOpener

	busy    atomic.Bool
	mu      sync.RWMutex
	current *Plan
}

// Generate validates the form, calls the gateway and adopts the result only if it
// passes the structural check. On any failure the current plan and history are
// left untouched.
func (s *Service) Generate(ctx context.Context, form Form) (Plan, error) {
	req, err := form.Validate()
	if err != nil {
		metrics.IncGeneration("rejected")
		return Plan{}, err
	}
	if s.Generator == nil || s.History == nil {
		return Plan{}, errors.New("missing dependencies")
	}
	if !s.busy.CompareAndSwap(false, true) {
		metrics.IncGeneration("busy")
		return Plan{}, ErrBusy
	}
	defer s.busy.Store(false)

	req.Settings = s.loadSettings(ctx)

	start := time.Now()
	raw, err := s.Generator.Generate(ctx, req)
	metrics.ObserveGeneration(time.Since(start))
	if err != nil {
		telemetry.Error("plan.generate_failed", map[string]any{
			"tag":      req.Tag,
			"category": string(req.Category),
			"error":    err,
		})
		metrics.IncGeneration("failed")
		return Plan{}, ErrGenerationFailed
	}

	plan, err := Decode(raw)
	if err != nil {
		telemetry.Error("plan.invalid_structure", map[string]any{
			"tag":   req.Tag,
			"error": err,
		})
		metrics.IncGeneration("failed")
		return Plan{}, ErrGenerationFailed
	}

	if err := s.History.Prepend(ctx, plan); err != nil {
		telemetry.Error("plan.history_write_failed", map[string]any{"plan_id": plan.ID, "error": err})
	}
	s.setCurrent(plan)
	s.openReview(ctx, plan)

	metrics.IncGeneration("succeeded")
	telemetry.Info("plan.generated", map[string]any{
		"plan_id":  plan.ID,
		"tag":      plan.Tag,
		"category": string(plan.Category),
		"risks":    len(plan.SafetyAnalysis),
	})
	return plan.Clone(), nil
}

// Generating reports whether a generation is in flight.
func (s *Service) Generating() bool {
	return s.busy.Load()
}

// Current returns the plan being displayed, if any.
func (s *Service) Current() (Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Plan{}, false
	}
	return s.current.Clone(), true
}

// Open makes the plan with id the displayed plan and loads its review session.
// Plans come from history as detached copies; history itself is not written.
func (s *Service) Open(ctx context.Context, id string) (Plan, error) {
	if id == "" {
		return Plan{}, ErrNotFound
	}
	if cur, ok := s.Current(); ok && cur.ID == id {
		s.openReview(ctx, cur)
		return cur, nil
	}
	plan, ok, err := s.History.Find(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if !ok {
		return Plan{}, ErrNotFound
	}
	plan = plan.Clone()
	s.setCurrent(plan)
	s.openReview(ctx, plan)
	return plan.Clone(), nil
}

// List returns the history, most recent first.
func (s *Service) List(ctx context.Context) ([]Plan, error) {
	return s.History.List(ctx)
}

func (s *Service) setCurrent(plan Plan) {
	cp := plan.Clone()
	s.mu.Lock()
	s.current = &cp
	s.mu.Unlock()
}

func (s *Service) openReview(ctx context.Context, plan Plan) {
	if s.Review == nil {
		return
	}
	if err := s.Review.Open(ctx, plan); err != nil {
		telemetry.Error("review.open_failed", map[string]any{"plan_id": plan.ID, "error": err})
	}
}

func (s *Service) loadSettings(ctx context.Context) settings.Settings {
	if s.Settings == nil {
		return settings.Defaults()
	}
	got, err := s.Settings.Get(ctx)
	if err != nil {
		telemetry.Warn("settings.load_failed", map[string]any{"error": err})
		return settings.Defaults()
	}
	return got
}
