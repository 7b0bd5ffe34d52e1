package export

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/review"
)

func setupExportRouter(t *testing.T, sessions *stubSessions) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, sessions)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router, svc
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestPDFEndpointReturnsGateResultWhenBlocked(t *testing.T) {
	plan := samplePlan()
	router, _ := setupExportRouter(t, &stubSessions{plan: plan, state: review.Defaults(plan, fixedNow)})

	resp := get(router, "/api/v1/plans/plan-7/export/pdf")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Error struct {
			Code    string        `json:"code"`
			Message string        `json:"message"`
			Details review.Result `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "export_blocked" || body.Error.Message != review.BlockedMessage {
		t.Fatalf("unexpected error %+v", body.Error)
	}
	if len(body.Error.Details.Violations) != 8 {
		t.Fatalf("expected 8 violations, got %d", len(body.Error.Details.Violations))
	}
	if body.Error.Details.Notice == nil || body.Error.Details.Notice.DismissAfterMS != 5000 {
		t.Fatalf("expected 5s notice, got %+v", body.Error.Details.Notice)
	}
}

func TestPDFEndpointServesAttachment(t *testing.T) {
	plan := samplePlan()
	router, _ := setupExportRouter(t, &stubSessions{plan: plan, state: releasedState(t, plan)})

	resp := get(router, "/api/v1/plans/plan-7/export/pdf")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "Technical_Report_PT-1001_Pressure_Transmitter.pdf") {
		t.Fatalf("unexpected disposition %q", cd)
	}
}

func TestPDFEndpointFallbackCarriesAlert(t *testing.T) {
	plan := samplePlan()
	router, svc := setupExportRouter(t, &stubSessions{plan: plan, state: releasedState(t, plan)})
	svc.Renderer = failingRenderer{}

	resp := get(router, "/api/v1/plans/plan-7/export/pdf")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("X-Export-Alert") != FallbackAlert {
		t.Fatalf("expected fallback alert header")
	}
	if !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html fallback, got %q", resp.Header().Get("Content-Type"))
	}
}

func TestJSONEndpoint(t *testing.T) {
	plan := samplePlan()
	router, _ := setupExportRouter(t, &stubSessions{plan: plan, state: review.Defaults(plan, fixedNow)})

	resp := get(router, "/api/v1/plans/plan-7/export/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "Maintenance_PT-1001_2026-04-12.json") {
		t.Fatalf("unexpected disposition %q", cd)
	}

	if resp := get(router, "/api/v1/plans/other/export/json"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown plan, got %d", resp.Code)
	}
}
