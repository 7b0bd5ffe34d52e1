package object

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"maintenance-backend/internal/shared/util"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// SniffLen is how many leading bytes are inspected when the extension is not conclusive.
const SniffLen = 512

// NewKey builds the storage key <hash(namespace)>/<yyyy>/<mm>/<random>_<name>.
// Keys never collide and sort by archive month.
func NewKey(namespace, fileName string, now time.Time) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	now = now.UTC()
	return path.Join(
		util.HashKey(namespace),
		now.Format("2006"),
		now.Format("01"),
		random+"_"+name,
	), nil
}

// ContentType resolves the MIME type from the file extension, falling back to
// sniffing the leading bytes.
func ContentType(fileName string, head []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".png":
		return "image/png"
	}
	if t := mime.TypeByExtension(filepath.Ext(fileName)); t != "" {
		return t
	}
	return http.DetectContentType(head)
}

// Sniff resolves the content type of r without consuming it. The returned
// reader yields the full stream.
func Sniff(fileName string, r io.Reader) (string, io.Reader, error) {
	br := bufio.NewReaderSize(r, SniffLen)
	head, err := br.Peek(SniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read head: %w", err)
	}
	return ContentType(fileName, head), br, nil
}
