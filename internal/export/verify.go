package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"maintenance-backend/internal/shared/telemetry"
)

// ErrUnreadablePDF indicates the rendered bytes could not be read back as a PDF.
var ErrUnreadablePDF = errors.New("rendered PDF is unreadable")

// Verify parses data as a PDF and checks that it has pages with extractable text.
// expect is looked up in the first page text; a miss is logged only.
func Verify(data []byte, expect string) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	pages = r.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("%w: no pages", ErrUnreadablePDF)
	}
	first := r.Page(1)
	if first.V.IsNull() {
		return 0, fmt.Errorf("%w: missing first page", ErrUnreadablePDF)
	}
	text, err := first.GetPlainText(nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	if expect != "" && !strings.Contains(text, expect) {
		telemetry.Warn("export.verify_text_missing", map[string]any{"expected": expect, "pages": pages})
	}
	return pages, nil
}
