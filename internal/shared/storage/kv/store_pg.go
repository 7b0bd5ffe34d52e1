package kv

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// PGStore implements Store on the kv_records table in Postgres.
type PGStore struct {
	DB  *sql.DB
	Now func() time.Time
}

// Get returns the value stored for key.
func (s *PGStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, ErrEmptyKey
	}
	const query = `
SELECT value
FROM kv_records
WHERE key = $1
LIMIT 1`
	var value string
	if err := s.DB.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Put upserts the value for key.
func (s *PGStore) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	const query = `
INSERT INTO kv_records (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := s.DB.ExecContext(ctx, query, key, string(value), now(s.Now))
	return err
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now().UTC()
	}
	return fn().UTC()
}

var _ Store = (*PGStore)(nil)
