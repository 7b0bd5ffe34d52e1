// Package telemetry writes one JSON object per log line: ts, level, msg
// and the caller's fields.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.RWMutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
			case slog.LevelKey:
				return slog.String("level", strings.ToLower(a.Value.String()))
			}
			return a
		},
	}))
}

// SetOutput redirects log lines and returns a function restoring the previous writer.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	prev := logger
	logger = newLogger(w)
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

// SetLevel drops lines below name (debug, info, warn, error). Unknown names keep info.
func SetLevel(name string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		l = slog.LevelInfo
	}
	level.Set(l)
}

func Debug(msg string, fields map[string]any) { write(slog.LevelDebug, msg, fields) }

func Info(msg string, fields map[string]any) { write(slog.LevelInfo, msg, fields) }

// Warn is for recovered failures such as corrupt persisted state.
func Warn(msg string, fields map[string]any) { write(slog.LevelWarn, msg, fields) }

func Error(msg string, fields map[string]any) { write(slog.LevelError, msg, fields) }

var reserved = map[string]bool{"ts": true, "level": true, "msg": true, slog.TimeKey: true}

func write(l slog.Level, msg string, fields map[string]any) {
	mu.RLock()
	lg := logger
	mu.RUnlock()
	if !lg.Enabled(context.Background(), l) {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		attrs = append(attrs, slog.Any(k, v))
	}
	lg.LogAttrs(context.Background(), l, msg, attrs...)
}
