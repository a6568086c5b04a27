package documents

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor pulls plain text out of a document.
type TextExtractor interface {
	Extract(data []byte) (text string, pages int, err error)
}

// PDFExtractor extracts the text of every page of a PDF, joined by
// newlines.
type PDFExtractor struct{}

func (PDFExtractor) Extract(data []byte) (text string, pages int, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	pages = r.NumPage()
	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("read page %d: %w", i, err)
		}
		texts = append(texts, t)
	}
	return strings.Join(texts, "\n"), pages, nil
}

// readLimited reads at most limit bytes and reports whether r held more.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return nil, true, nil
	}
	return data, false, nil
}
