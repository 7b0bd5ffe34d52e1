package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"maintenance-backend/internal/shared/telemetry"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

// ProviderError is a non-2xx answer from a completion API.
type ProviderError struct {
	Provider string
	Status   int
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s http status %d: %s", e.Provider, e.Status, e.Message)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	return msg
}

// Retryable is true for throttling and server-side failures.
func (e *ProviderError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// Call describes one JSON POST to a provider.
type Call struct {
	Provider string
	URL      string
	Headers  map[string]string
	Body     any
	// ErrorOf extracts code and message from a provider error body, if any.
	ErrorOf func(body []byte) (code, message string, ok bool)
}

// PostJSON sends c.Body and decodes a successful response into out.
func PostJSON(ctx context.Context, client *http.Client, c Call, out any) error {
	payload, err := json.Marshal(c.Body)
	if err != nil {
		return fmt.Errorf("%s encode request: %w", c.Provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fmt.Errorf("%s request timeout: %w", c.Provider, err)
		}
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read response: %w", c.Provider, err)
	}

	code, message, hasErr := "", "", false
	if c.ErrorOf != nil {
		code, message, hasErr = c.ErrorOf(body)
	}
	if resp.StatusCode >= 400 || hasErr {
		if !hasErr {
			message = strings.TrimSpace(string(body))
			if len(message) > maxErrorBody {
				message = message[:maxErrorBody]
			}
		}
		return &ProviderError{Provider: c.Provider, Status: resp.StatusCode, Code: code, Message: message}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s response parse: %w", c.Provider, err)
	}
	return nil
}

// LogUsage records token accounting for a completion.
func LogUsage(provider, model string, prompt, completion, total int) {
	telemetry.Info("llm.usage", map[string]any{
		"provider":          provider,
		"model":             model,
		"prompt_tokens":     prompt,
		"completion_tokens": completion,
		"total_tokens":      total,
	})
}
