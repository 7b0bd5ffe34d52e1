package kv

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SQLiteStore implements Store on the kv_records table of a local sqlite file.
type SQLiteStore struct {
	DB  *sql.DB
	Now func() time.Time
}

// Get returns the value stored for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, ErrEmptyKey
	}
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_records WHERE key = ? LIMIT 1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Put upserts the value for key.
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	const query = `
INSERT INTO kv_records (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := s.DB.ExecContext(ctx, query, key, string(value), now(s.Now))
	return err
}

var _ Store = (*SQLiteStore)(nil)
