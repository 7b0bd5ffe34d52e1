// Package openai implements llm.Completer on Chat Completions in JSON mode.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"maintenance-backend/internal/llm"
	"maintenance-backend/internal/shared/telemetry"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

const repairInstruction = "You repair JSON. Reply with the corrected JSON object only, keeping every field of the maintenance plan."

type Client struct {
	apiKey     string
	model      string
	zeroTemp   bool
	httpClient *http.Client
}

// NewClient requires a key and model. LLM_NO_TEMP0_MODELS lists extra
// models that reject temperature 0.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		zeroTemp:   acceptsZeroTemperature(model, os.Getenv("LLM_NO_TEMP0_MODELS")),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionBody struct {
	Model          string            `json:"model"`
	Messages       []message         `json:"messages"`
	Temperature    *float32          `json:"temperature,omitempty"`
	ResponseFormat map[string]string `json:"response_format"`
}

type completionReply struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete asks for a JSON object. A reply that does not parse gets a
// single repair round trip.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (string, error) {
	var msgs []message
	if strings.TrimSpace(in.System) != "" {
		msgs = append(msgs, message{Role: "system", Content: in.System})
	}
	msgs = append(msgs, message{Role: "user", Content: in.Prompt})

	out, err := c.chat(ctx, msgs)
	if err != nil {
		return "", err
	}
	if json.Valid([]byte(out)) {
		return out, nil
	}

	telemetry.Warn("llm.repair", map[string]any{"provider": "openai", "model": c.model})
	out, err = c.chat(ctx, []message{
		{Role: "system", Content: repairInstruction},
		{Role: "user", Content: out},
	})
	if err != nil {
		return "", err
	}
	if !json.Valid([]byte(out)) {
		return "", fmt.Errorf("openai repair: %w", llm.ErrInvalidJSON)
	}
	return out, nil
}

// chat posts once. A 4xx complaining about temperature flips zeroTemp
// off for the rest of the client's life and retries.
func (c *Client) chat(ctx context.Context, msgs []message) (string, error) {
	out, err := c.post(ctx, msgs, c.zeroTemp)
	var perr *llm.ProviderError
	if err != nil && c.zeroTemp && errors.As(err, &perr) && rejectsTemperature(perr) {
		telemetry.Warn("llm.temperature_rejected", map[string]any{"model": c.model})
		c.zeroTemp = false
		return c.post(ctx, msgs, false)
	}
	return out, err
}

func (c *Client) post(ctx context.Context, msgs []message, zeroTemp bool) (string, error) {
	body := completionBody{
		Model:          c.model,
		Messages:       msgs,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	if zeroTemp {
		body.Temperature = new(float32)
	}

	var reply completionReply
	err := llm.PostJSON(ctx, c.httpClient, llm.Call{
		Provider: "openai",
		URL:      apiURL,
		Headers:  map[string]string{"Authorization": "Bearer " + c.apiKey},
		Body:     body,
		ErrorOf:  errorOf,
	}, &reply)
	if err != nil {
		return "", err
	}
	if len(reply.Choices) == 0 {
		return "", errors.New("openai response missing choices")
	}
	if u := reply.Usage; u != nil {
		llm.LogUsage("openai", c.model, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	}
	out := strings.TrimSpace(reply.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("openai response empty content (finish_reason=%s)", reply.Choices[0].FinishReason)
	}
	return out, nil
}

func errorOf(body []byte) (string, string, bool) {
	var env struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) != nil || env.Error == nil {
		return "", "", false
	}
	return env.Error.Type, env.Error.Message, true
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func acceptsZeroTemperature(model, denylist string) bool {
	if isGPT5(model) {
		return false
	}
	normalized := strings.ToLower(model)
	for _, m := range strings.Split(denylist, ",") {
		if strings.ToLower(strings.TrimSpace(m)) == normalized {
			return false
		}
	}
	return true
}

func rejectsTemperature(err *llm.ProviderError) bool {
	msg := strings.ToLower(err.Message)
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

var _ llm.Completer = (*Client)(nil)
