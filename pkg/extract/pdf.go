package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PagewisePDFExtractor walks the document page by page. It is the
// primary PDF strategy: per-page extraction survives a single damaged
// page table better than whole-document traversal.
type PagewisePDFExtractor struct{}

// Name returns the strategy name.
func (e *PagewisePDFExtractor) Name() string {
	return "pdf-pagewise"
}

// Extract returns the concatenated plain text of every page.
func (e *PagewisePDFExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	// The pdf package panics on malformed cross-reference tables.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteByte(' ')
	}
	return sb.String(), nil
}

// PlainTextPDFExtractor extracts the whole document in one traversal.
// It is the fallback tier for documents the page-wise walk rejects.
type PlainTextPDFExtractor struct{}

// Name returns the strategy name.
func (e *PlainTextPDFExtractor) Name() string {
	return "pdf-plaintext"
}

// Extract returns the document's plain text in a single pass.
func (e *PlainTextPDFExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	rc, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(raw), nil
}
