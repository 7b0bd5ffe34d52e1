package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"maintenance-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

type capture struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (c *capture) add(body map[string]any) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies = append(c.bodies, body)
	return len(c.bodies)
}

func newServer(t *testing.T, rec *capture, reply func(call int) string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		call := rec.add(payload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply(call)))
	}))
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() {
		apiURL = oldURL
		server.Close()
	})
}

func TestCompleteSendsJSONMode(t *testing.T) {
	rec := &capture{}
	newServer(t, rec, func(int) string {
		return `{"choices":[{"message":{"content":"{\"id\":\"p1\"}"}}]}`
	})

	client, err := NewClient("test-key", "gpt-4o-mini", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.CompletionRequest{System: "sys", Prompt: "generate"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"id":"p1"}` {
		t.Fatalf("unexpected content %q", out)
	}

	body := rec.bodies[0]
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
	if _, ok := body["temperature"]; !ok {
		t.Fatalf("expected temperature to be set")
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestCompleteOmitsTemperatureForDenylist(t *testing.T) {
	t.Setenv("LLM_NO_TEMP0_MODELS", "gpt-4.1-mini")
	rec := &capture{}
	newServer(t, rec, func(int) string {
		return `{"choices":[{"message":{"content":"{}"}}]}`
	})

	client, err := NewClient("test-key", "gpt-4.1-mini", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := rec.bodies[0]["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted for denylisted model")
	}
}

func TestCompleteRetriesWithoutTemperature(t *testing.T) {
	t.Setenv("LLM_NO_TEMP0_MODELS", "")
	rec := &capture{}
	newServer(t, rec, func(call int) string {
		if call == 1 {
			return `{"error":{"message":"Unsupported value: 'temperature' does not support 0 with this model.","type":"invalid_request_error"}}`
		}
		return `{"choices":[{"message":{"content":"{}"}}]}`
	})

	client, err := NewClient("test-key", "gpt-4o-mini", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(rec.bodies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(rec.bodies))
	}
	if _, ok := rec.bodies[1]["temperature"]; ok {
		t.Fatalf("expected retry request to omit temperature")
	}
}

func TestCompleteRepairsInvalidJSON(t *testing.T) {
	rec := &capture{}
	newServer(t, rec, func(call int) string {
		if call == 1 {
			return `{"choices":[{"message":{"content":"{\"id\": "}}]}`
		}
		return `{"choices":[{"message":{"content":"{\"id\":\"fixed\"}"}}]}`
	})

	client, err := NewClient("test-key", "gpt-4o-mini", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"id":"fixed"}` {
		t.Fatalf("unexpected repaired content %q", out)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini", 0); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestCompleteSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() {
		apiURL = oldURL
		server.Close()
	})

	client, err := NewClient("test-key", "gpt-5-mini", 0)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"})
	var perr *llm.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Status != http.StatusServiceUnavailable || perr.Code != "server_error" || !perr.Retryable() {
		t.Fatalf("unexpected provider error %+v", perr)
	}
}
