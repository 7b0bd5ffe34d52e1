package review

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/shared/storage/kv"
)

type stubOpener struct {
	manager *Manager
	plans   map[string]plans.Plan
}

func (s stubOpener) Open(ctx context.Context, id string) (plans.Plan, error) {
	p, ok := s.plans[id]
	if !ok {
		return plans.Plan{}, plans.ErrNotFound
	}
	if err := s.manager.Open(ctx, p); err != nil {
		return plans.Plan{}, err
	}
	return p, nil
}

func setupReviewRouter(t *testing.T, plan plans.Plan) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := newTestManager(kv.NewMemoryStore())
	opener := stubOpener{manager: m, plans: map[string]plans.Plan{plan.ID: plan}}
	router := gin.New()
	NewHandler(opener, m).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, View) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var view View
	if resp.Code == http.StatusOK {
		if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode view: %v", err)
		}
	}
	return resp, view
}

func TestReviewWorkflowOverHTTP(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 4)
	router := setupReviewRouter(t, plan)
	base := "/api/v1/plans/p1/review"

	resp, view := do(t, router, http.MethodGet, base, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("GET review: %d", resp.Code)
	}
	if view.Gate.Allowed || view.Gate.Focus != "risk-analysis" || view.RiskCount != 4 {
		t.Fatalf("unexpected initial view %+v", view)
	}

	_, view = do(t, router, http.MethodPost, base+"/risks/acknowledge-all", nil)
	if view.AcknowledgedRisks != 4 {
		t.Fatalf("expected 4 acknowledged, got %d", view.AcknowledgedRisks)
	}

	patch := map[string]any{
		"safetyVerification":    "Yes",
		"technicalReviewerName": "Eng. Costa",
		"technicalComments":     "ok",
		"executor":              map[string]string{"name": "J. Silva"},
		"supervisor":            map[string]string{"name": "M. Souza"},
	}
	_, view = do(t, router, http.MethodPatch, base, patch)
	if first, _ := view.Gate.First(); first.Code != ExecutorSignature {
		t.Fatalf("expected executor signature to be next, got %+v", view.Gate.Violations)
	}

	_, view = do(t, router, http.MethodPut, base+"/signatures/executor", scribble())
	if view.Pads.ExecutorActive {
		t.Fatalf("executor pad must be inactive after capture")
	}
	_, view = do(t, router, http.MethodPut, base+"/signatures/supervisor", scribble())
	if !view.Gate.Allowed {
		t.Fatalf("expected gate to allow export, got %+v", view.Gate)
	}

	_, view = do(t, router, http.MethodDelete, base+"/signatures/supervisor", nil)
	if view.Gate.Allowed || !view.Pads.SupervisorActive {
		t.Fatalf("clearing a signature must move the workflow backward")
	}
}

func TestReviewHTTPErrors(t *testing.T) {
	plan := planWithRisks("p1", plans.CategoryPreventive, 2)
	router := setupReviewRouter(t, plan)

	cases := []struct {
		method, path string
		body         any
		want         int
	}{
		{http.MethodGet, "/api/v1/plans/missing/review", nil, http.StatusNotFound},
		{http.MethodPost, "/api/v1/plans/p1/review/risks/9/toggle", nil, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/plans/p1/review/risks/x/toggle", nil, http.StatusBadRequest},
		{http.MethodPut, "/api/v1/plans/p1/review/signatures/witness", scribble(), http.StatusNotFound},
		{http.MethodPut, "/api/v1/plans/p1/review/signatures/executor", Capture{}, http.StatusBadRequest},
		{http.MethodPatch, "/api/v1/plans/p1/review", map[string]string{"equipmentStatus": "Broken"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, _ := do(t, router, tc.method, tc.path, tc.body)
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, resp.Code, resp.Body.String())
		}
	}
}
