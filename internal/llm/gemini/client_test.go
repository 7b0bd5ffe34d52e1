package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"maintenance-backend/internal/llm"
)

func TestCompleteWithAPIKey(t *testing.T) {
	var gotPath, gotKey string
	var body generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"id\":"},{"text":"\"p1\"}"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Options{APIKey: "k-123", Model: "gemini-2.5-pro", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.CompletionRequest{
		System: "sys",
		Prompt: "generate",
		Schema: llm.PlanSchema(),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"id":"p1"}` {
		t.Fatalf("unexpected text %q", out)
	}
	if gotPath != "/models/gemini-2.5-pro:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "k-123" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if body.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("expected JSON mime type, got %q", body.GenerationConfig.ResponseMimeType)
	}
	if body.GenerationConfig.ResponseSchema["type"] != "OBJECT" {
		t.Fatalf("expected response schema to be forwarded")
	}
	if body.SystemInstruction == nil || body.SystemInstruction.Parts[0].Text != "sys" {
		t.Fatalf("expected system instruction")
	}
}

func TestCompleteWithTokenSource(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`))
	}))
	defer server.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
	client, err := NewClient(context.Background(), Options{Model: "gemini-2.5-pro", BaseURL: server.URL, TokenSource: ts})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if auth != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", auth)
	}
}

func TestCompleteSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Options{APIKey: "k", Model: "m", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "http status 503") {
		t.Fatalf("expected status 503 error, got %v", err)
	}
}

func TestNewClientRequiresModel(t *testing.T) {
	if _, err := NewClient(context.Background(), Options{APIKey: "k"}); err == nil {
		t.Fatalf("expected error without model")
	}
}
