package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service reports liveness plus the state of the persistence backend and the
// single-flight generation and export workflows.
type Service struct {
	KVBackend  string
	DB         *sql.DB
	Generating func() bool
	Exporting  func() bool
}

// NewService constructs a new health service.
func NewService(kvBackend string, db *sql.DB) *Service {
	return &Service{KVBackend: kvBackend, DB: db}
}

// Status returns the health payload and whether the service is usable.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	out := map[string]any{"ok": true, "kv": s.KVBackend}
	ok := true
	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			out["ok"] = false
			out["kvError"] = err.Error()
			ok = false
		}
	}
	if s.Generating != nil {
		out["generating"] = s.Generating()
	}
	if s.Exporting != nil {
		out["exporting"] = s.Exporting()
	}
	return out, ok
}
