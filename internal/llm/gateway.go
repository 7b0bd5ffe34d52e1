package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"maintenance-backend/internal/plans"
)

// Gateway turns a generation request into a plan-shaped JSON object.
// It does not check the number of safety-analysis entries the model returned.
type Gateway struct {
	Completer Completer
	Now       func() time.Time
}

// NewGateway wraps completer with one transient retry.
func NewGateway(completer Completer) *Gateway {
	return &Gateway{Completer: WithRetry(completer), Now: time.Now}
}

var _ plans.Generator = (*Gateway)(nil)

// Generate calls the provider and stamps createdAt onto the returned object.
func (g *Gateway) Generate(ctx context.Context, req plans.Request) (json.RawMessage, error) {
	if g.Completer == nil {
		return nil, ErrNotConfigured
	}
	text, err := g.Completer.Complete(ctx, CompletionRequest{
		System: systemPrompt,
		Prompt: BuildPrompt(req),
		Schema: PlanSchema(),
	})
	if err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(text)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if doc == nil {
		return nil, ErrInvalidJSON
	}

	stamp, err := json.Marshal(g.now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	doc["createdAt"] = stamp

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Join(ErrInvalidJSON, err)
	}
	return out, nil
}

func (g *Gateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// stripFences removes a markdown code fence some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
