// Package history keeps the most recent generated plans in the persistence port.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/shared/metrics"
	"maintenance-backend/internal/shared/storage/kv"
	"maintenance-backend/internal/shared/telemetry"
)

const (
	// Key is the persistence key for the history list.
	Key = "maintenance_history"
	// Limit is the maximum number of retained plans.
	Limit = 20
)

// Store implements plans.History over a kv.Store.
type Store struct {
	KV    kv.Store
	Limit int
}

// NewStore constructs a Store with the default limit.
func NewStore(store kv.Store) *Store {
	return &Store{KV: store, Limit: Limit}
}

var _ plans.History = (*Store)(nil)

// List returns retained plans, newest first. Entries that fail the structural
// plan check are dropped; an unreadable record reads as empty.
func (s *Store) List(ctx context.Context) ([]plans.Plan, error) {
	raw, ok, err := s.KV.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return []plans.Plan{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		telemetry.Warn("history.corrupt", map[string]any{"key": Key, "error": err})
		metrics.IncCorruptRead("history")
		return []plans.Plan{}, nil
	}

	out := make([]plans.Plan, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		plan, err := plans.Decode(entry)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, plan)
	}
	if dropped > 0 {
		telemetry.Warn("history.entries_dropped", map[string]any{"key": Key, "dropped": dropped})
		metrics.IncCorruptRead("history_entry")
	}
	return out, nil
}

// Prepend stores plan at the head of the list and truncates to the limit.
func (s *Store) Prepend(ctx context.Context, plan plans.Plan) error {
	current, err := s.List(ctx)
	if err != nil {
		return err
	}
	next := make([]plans.Plan, 0, len(current)+1)
	next = append(next, plan)
	next = append(next, current...)
	if limit := s.limit(); len(next) > limit {
		next = next[:limit]
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.KV.Put(ctx, Key, payload); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Find returns a detached copy of the plan with id.
func (s *Store) Find(ctx context.Context, id string) (plans.Plan, bool, error) {
	items, err := s.List(ctx)
	if err != nil {
		return plans.Plan{}, false, err
	}
	for _, p := range items {
		if p.ID == id {
			return p.Clone(), true, nil
		}
	}
	return plans.Plan{}, false, nil
}

func (s *Store) limit() int {
	if s.Limit <= 0 {
		return Limit
	}
	return s.Limit
}
