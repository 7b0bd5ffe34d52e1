package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"maintenance-backend/internal/plans"
)

type stubCompleter struct {
	replies []string
	errs    []error
	calls   int
	last    CompletionRequest
}

func (s *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	i := s.calls
	s.calls++
	s.last = req
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return s.replies[len(s.replies)-1], nil
}

const modelOutput = `{"id":"MP-001","category":"Preventive","instrumentType":"Pressure Transmitter","platformType":"Fixed Platform","tag":"PT-1001","personnel":[],"materials":[],"standards":[],"safetyAnalysis":[{"hazard":"h","mitigation":"m"}],"safetyPrecautions":[],"testProcedures":[],"technicalSpecifications":{"rangeMin":0,"rangeMax":10,"unit":"bar","accuracy":"0.1%","expectedSignal":"4-20 mA"}}`

func TestGenerateStampsCreatedAt(t *testing.T) {
	stub := &stubCompleter{replies: []string{modelOutput}}
	fixed := time.Date(2026, 5, 4, 13, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	gw := &Gateway{Completer: stub, Now: func() time.Time { return fixed }}

	raw, err := gw.Generate(context.Background(), plans.Request{
		Category:       plans.CategoryPreventive,
		InstrumentType: plans.InstrumentPressureTransmitter,
		PlatformType:   plans.PlatformFixed,
		Tag:            "PT-1001",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	plan, err := plans.Decode(raw)
	if err != nil {
		t.Fatalf("gateway output should pass the structural check: %v", err)
	}
	if !plan.CreatedAt.Equal(fixed) || plan.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC createdAt %s, got %s", fixed.UTC(), plan.CreatedAt)
	}
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	if fields["createdAt"] != "2026-05-04T16:30:00Z" {
		t.Fatalf("unexpected createdAt text %v", fields["createdAt"])
	}
	if stub.last.Schema == nil || stub.last.System == "" {
		t.Fatalf("expected schema and system prompt to be sent")
	}
}

func TestGenerateRejectsNonObject(t *testing.T) {
	for _, reply := range []string{`not json`, `[1,2]`, `null`, `"text"`} {
		gw := &Gateway{Completer: &stubCompleter{replies: []string{reply}}}
		if _, err := gw.Generate(context.Background(), plans.Request{}); !errors.Is(err, ErrInvalidJSON) {
			t.Fatalf("reply %q: expected ErrInvalidJSON, got %v", reply, err)
		}
	}
}

func TestGenerateStripsCodeFence(t *testing.T) {
	gw := &Gateway{Completer: &stubCompleter{replies: []string{"```json\n" + modelOutput + "\n```"}}}
	raw, err := gw.Generate(context.Background(), plans.Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !plans.IsValidPlan(raw) {
		t.Fatalf("expected fenced output to be accepted")
	}
}

func TestGenerateWithPlaceholderFails(t *testing.T) {
	gw := NewGateway(PlaceholderCompleter{})
	if _, err := gw.Generate(context.Background(), plans.Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRetryOnceOnTransientError(t *testing.T) {
	stub := &stubCompleter{
		replies: []string{"", "{}"},
		errs:    []error{&ProviderError{Provider: "gemini", Status: 503, Message: "overloaded"}},
	}
	r := retryingCompleter{base: stub, delay: time.Millisecond, attempts: 2}
	out, err := r.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "{}" || stub.calls != 2 {
		t.Fatalf("expected one retry, got calls=%d out=%q", stub.calls, out)
	}
}

func TestNoRetryOnPermanentError(t *testing.T) {
	stub := &stubCompleter{
		replies: []string{""},
		errs:    []error{&ProviderError{Provider: "openai", Status: 401, Message: "invalid key"}},
	}
	r := retryingCompleter{base: stub, delay: time.Millisecond, attempts: 3}
	if _, err := r.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if stub.calls != 1 {
		t.Fatalf("expected no retry, got %d calls", stub.calls)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	overloaded := &ProviderError{Provider: "gemini", Status: 503, Message: "overloaded"}
	stub := &stubCompleter{
		replies: []string{""},
		errs:    []error{overloaded, overloaded, overloaded, overloaded},
	}
	r := retryingCompleter{base: stub, delay: time.Millisecond, attempts: 3}
	_, err := r.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, overloaded) {
		t.Fatalf("expected last provider error, got %v", err)
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", stub.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: context.DeadlineExceeded, want: true},
		{err: context.Canceled, want: false},
		{err: ErrNotConfigured, want: false},
		{err: errors.New("read: connection reset by peer"), want: true},
		{err: errors.New("unexpected EOF"), want: true},
		{err: &ProviderError{Provider: "gemini", Status: 400, Message: "bad schema"}, want: false},
		{err: fmt.Errorf("wrapped: %w", &ProviderError{Provider: "openai", Status: 429}), want: true},
		{err: &ProviderError{Provider: "openai", Status: 500, Message: "connection reset"}, want: true},
	}
	for _, tt := range tests {
		if got := shouldRetry(tt.err); got != tt.want {
			t.Fatalf("shouldRetry(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
