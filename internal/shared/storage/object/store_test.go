package object

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestNewKeyLayout(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	key, err := NewKey("reports", "Technical Report PT-1.pdf", now)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	parts := strings.Split(key, "/")
	if len(parts) != 4 {
		t.Fatalf("expected 4 segments, got %q", key)
	}
	if parts[1] != "2026" || parts[2] != "03" {
		t.Fatalf("expected UTC year/month 2026/03, got %q", key)
	}
	if !strings.HasSuffix(parts[3], "PT-1.pdf") {
		t.Fatalf("expected sanitized name suffix, got %q", parts[3])
	}

	other, err := NewKey("reports", "Technical Report PT-1.pdf", now)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if other == key {
		t.Fatalf("expected unique keys")
	}
}

func TestNewKeyRejectsEmptyName(t *testing.T) {
	if _, err := NewKey("reports", "   ", time.Now()); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"report.pdf":  "application/pdf",
		"record.json": "application/json",
		"print.html":  "text/html; charset=utf-8",
	}
	for name, want := range cases {
		if got := ContentType(name, nil); got != want {
			t.Fatalf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
	if got := ContentType("blob", []byte("%PDF-1.3\n")); got != "application/pdf" {
		t.Fatalf("expected sniffed pdf, got %q", got)
	}
}

func TestSniffKeepsStream(t *testing.T) {
	payload := "%PDF-1.3\n" + strings.Repeat("x", 2*SniffLen)
	mimeType, r, err := Sniff("blob", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("expected sniffed pdf, got %q", mimeType)
	}
	rest, err := io.ReadAll(r)
	if err != nil || string(rest) != payload {
		t.Fatalf("expected full payload back, got %d bytes err=%v", len(rest), err)
	}

	mimeType, _, err = Sniff("short.json", strings.NewReader("{}"))
	if err != nil || mimeType != "application/json" {
		t.Fatalf("short input: %q %v", mimeType, err)
	}
}
