package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"maintenance-backend/internal/shared/telemetry"
)

const (
	retryBaseDelay   = 300 * time.Millisecond
	retryMaxAttempts = 2
)

type retryingCompleter struct {
	base     Completer
	delay    time.Duration
	attempts int
}

// WithRetry wraps base so transient failures are retried with doubling pauses.
func WithRetry(base Completer) Completer {
	if base == nil {
		return nil
	}
	return retryingCompleter{base: base, delay: retryBaseDelay, attempts: retryMaxAttempts}
}

func (r retryingCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	attempts := r.attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := r.delay
	var (
		out string
		err error
	)
	for attempt := 1; ; attempt++ {
		out, err = r.base.Complete(ctx, req)
		if err == nil || attempt >= attempts || !shouldRetry(err) {
			return out, err
		}
		telemetry.Warn("llm.retry", map[string]any{"attempt": attempt, "error": truncate(err.Error(), 200)})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}
}

func shouldRetry(err error) bool {
	if err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, transient := range []string{"timeout", "connection reset", "connection refused", "connection closed", "broken pipe", "eof"} {
		if strings.Contains(msg, transient) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > n {
		return s[:n]
	}
	return s
}
