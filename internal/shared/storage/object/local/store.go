// Package local archives report artifacts under a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"maintenance-backend/internal/shared/storage/object"
)

type Store struct {
	root string
	now  func() time.Time
}

func New(root string) object.ObjectStore {
	return &Store{root: root, now: time.Now}
}

// Save streams r into a hidden temp file beside the destination and
// renames it once complete. A failed save leaves nothing behind.
func (s *Store) Save(ctx context.Context, namespace string, fileName string, r io.Reader) (key string, size int64, mimeType string, err error) {
	if err = ctx.Err(); err != nil {
		return "", 0, "", err
	}
	key, err = object.NewKey(namespace, fileName, s.now())
	if err != nil {
		return "", 0, "", err
	}
	mimeType, body, err := object.Sniff(fileName, r)
	if err != nil {
		return "", 0, "", err
	}

	dest := filepath.Join(s.root, filepath.FromSlash(key))
	if err = os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", 0, "", fmt.Errorf("create archive directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if size, err = io.Copy(tmp, body); err != nil {
		return "", 0, "", fmt.Errorf("write %s: %w", key, err)
	}
	if err = tmp.Sync(); err != nil {
		return "", 0, "", fmt.Errorf("sync %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return "", 0, "", fmt.Errorf("close %s: %w", key, err)
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return "", 0, "", fmt.Errorf("commit %s: %w", key, err)
	}
	return key, size, mimeType, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, object.ErrInvalidKey
	}
	f, err := os.Open(filepath.Join(s.root, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, object.ErrNotFound)
	}
	return f, err
}

var _ object.ObjectStore = (*Store)(nil)
