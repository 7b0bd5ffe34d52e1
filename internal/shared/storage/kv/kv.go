// Package kv is the persistence port used by history, settings and review state.
//
// Values are opaque byte slices (JSON text in practice). Implementations store
// whatever they are given, including bytes that are not valid JSON; callers are
// responsible for discarding records they cannot parse.
package kv

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when a blank key is used.
var ErrEmptyKey = errors.New("kv: empty key")

// Store is a string-keyed blob store with overwrite semantics.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put overwrites the value for key.
	Put(ctx context.Context, key string, value []byte) error
}
