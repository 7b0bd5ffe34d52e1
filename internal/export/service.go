package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
	"maintenance-backend/internal/shared/metrics"
	"maintenance-backend/internal/shared/storage/object"
	"maintenance-backend/internal/shared/telemetry"
)

// ErrBusy indicates another export is still running.
var ErrBusy = errors.New("an export is already in progress")

const archiveNamespace = "reports"

// BlockedError carries the gate result of a refused PDF export.
type BlockedError struct {
	Result review.Result
}

func (e *BlockedError) Error() string {
	if v, ok := e.Result.First(); ok {
		return "export blocked: " + string(v.Code)
	}
	return "export blocked"
}

// StateSource returns the displayed plan and a copy of its annotation state.
// It fails with review.ErrNoSession for any other plan.
type StateSource interface {
	Snapshot(planID string) (plans.Plan, review.State, error)
}

// Artifact is a produced export ready to download.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
	Pages       int
	Fallback    bool
	Alert       string
	StorageKey  string
}

// Service runs the gated PDF export and the ungated JSON export.
type Service struct {
	Review   StateSource
	Gate     review.Gate
	Renderer Renderer
	Store    object.ObjectStore
	Now      func() time.Time

	busy atomic.Bool
}

// NewService constructs a Service with the fpdf renderer.
func NewService(states StateSource, store object.ObjectStore) *Service {
	return &Service{
		Review:   states,
		Renderer: PDFRenderer{},
		Store:    store,
		Now:      time.Now,
	}
}

// Exporting reports whether an export is running.
func (s *Service) Exporting() bool {
	return s.busy.Load()
}

// ExportPDF checks the gate and renders the report. When rendering or the
// read-back check fails the printable HTML view is returned instead, with Alert set.
func (s *Service) ExportPDF(ctx context.Context, id string) (Artifact, error) {
	plan, st, err := s.load(id)
	if err != nil {
		return Artifact{}, err
	}

	result := s.Gate.Check(plan, st)
	if !result.Allowed {
		first, _ := result.First()
		metrics.IncGateBlocked(string(first.Code))
		telemetry.Info("export.pdf.blocked", map[string]any{
			"plan_id":    plan.ID,
			"reason":     string(first.Code),
			"violations": len(result.Violations),
		})
		return Artifact{}, &BlockedError{Result: result}
	}

	if !s.busy.CompareAndSwap(false, true) {
		return Artifact{}, ErrBusy
	}
	defer s.busy.Store(false)

	art, err := s.renderPDF(plan, st)
	if err != nil {
		telemetry.Warn("export.pdf.fallback", map[string]any{
			"plan_id": plan.ID,
			"error":   err.Error(),
		})
		html, herr := RenderPrintView(plan, st, FallbackAlert)
		if herr != nil {
			metrics.IncExport("pdf", "failed")
			telemetry.Error("export.print.failed", map[string]any{
				"plan_id": plan.ID,
				"error":   herr.Error(),
			})
			return Artifact{}, fmt.Errorf("render print view: %w", herr)
		}
		metrics.IncExport("pdf", "fallback")
		return Artifact{
			FileName:    PrintFileName(plan),
			ContentType: "text/html; charset=utf-8",
			Data:        html,
			Fallback:    true,
			Alert:       FallbackAlert,
		}, nil
	}

	art.StorageKey = s.archive(ctx, plan, art)
	metrics.IncExport("pdf", "ok")
	telemetry.Info("export.pdf.ok", map[string]any{
		"plan_id": plan.ID,
		"pages":   art.Pages,
		"bytes":   len(art.Data),
	})
	return art, nil
}

// ExportJSON writes the plan and its annotation state. It is not gated.
func (s *Service) ExportJSON(ctx context.Context, id string) (Artifact, error) {
	plan, st, err := s.load(id)
	if err != nil {
		return Artifact{}, err
	}
	data, err := MarshalRecord(NewRecord(plan, st))
	if err != nil {
		metrics.IncExport("json", "failed")
		return Artifact{}, fmt.Errorf("marshal record: %w", err)
	}
	metrics.IncExport("json", "ok")
	return Artifact{
		FileName:    JSONFileName(plan, s.now()),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

// load reads the displayed plan without touching the current plan or the session.
func (s *Service) load(id string) (plans.Plan, review.State, error) {
	if s.Review == nil {
		return plans.Plan{}, review.State{}, errors.New("missing review session source")
	}
	return s.Review.Snapshot(id)
}

func (s *Service) renderPDF(plan plans.Plan, st review.State) (Artifact, error) {
	renderer := s.Renderer
	if renderer == nil {
		renderer = PDFRenderer{}
	}
	data, err := renderer.Render(plan, st)
	if err != nil {
		return Artifact{}, err
	}
	pages, err := Verify(data, plan.Tag)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		FileName:    PDFFileName(plan),
		ContentType: "application/pdf",
		Data:        data,
		Pages:       pages,
	}, nil
}

// archive keeps a copy of the PDF; failures do not affect the download.
func (s *Service) archive(ctx context.Context, plan plans.Plan, art Artifact) string {
	if s.Store == nil {
		return ""
	}
	key, _, _, err := s.Store.Save(ctx, archiveNamespace, art.FileName, bytes.NewReader(art.Data))
	if err != nil {
		telemetry.Warn("export.archive.failed", map[string]any{
			"plan_id": plan.ID,
			"error":   err.Error(),
		})
		return ""
	}
	return key
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
