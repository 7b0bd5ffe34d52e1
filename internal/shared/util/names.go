package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// MaxFileNameLen bounds stored object names; long instrument types otherwise
// push keys past common filesystem limits.
const MaxFileNameLen = 120

var (
	ErrInvalidFileName = errors.New("invalid file name")
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// HashKey maps a namespace to a short stable directory name.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// SanitizeFileName flattens separators, drops control characters and
// truncates long names while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" || strings.Trim(s, "_.") == "" {
		return "", ErrInvalidFileName
	}
	if len(s) > MaxFileNameLen {
		ext := filepath.Ext(s)
		if len(ext) > 10 {
			ext = ""
		}
		s = strings.ToValidUTF8(s[:MaxFileNameLen-len(ext)], "") + ext
	}
	return s, nil
}

// Underscore replaces every whitespace run with a single underscore.
func Underscore(s string) string {
	return whitespaceRun.ReplaceAllString(s, "_")
}

// ContentDisposition formats the header with an RFC 2231 filename so
// non-ASCII and separator characters in instrument names survive.
func ContentDisposition(disposition, fileName string) string {
	name := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' || r == '\\' {
			return -1
		}
		return r
	}, fileName)
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": name}); v != "" {
		return v
	}
	return disposition
}
