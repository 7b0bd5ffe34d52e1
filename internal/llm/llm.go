package llm

import (
	"context"
	"errors"
)

// Completer is a provider that returns the raw text of a JSON-constrained completion.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a provider-neutral prompt.
type CompletionRequest struct {
	System string
	Prompt string
	// Schema is an OpenAPI-style object schema for providers that accept one.
	Schema map[string]any
}

// ErrNotConfigured is returned by the placeholder completer.
var ErrNotConfigured = errors.New("LLM provider not configured")

// ErrInvalidJSON indicates the provider returned text that is not a JSON object.
var ErrInvalidJSON = errors.New("LLM response is not a JSON object")

// PlaceholderCompleter is used when no provider is configured.
type PlaceholderCompleter struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}
