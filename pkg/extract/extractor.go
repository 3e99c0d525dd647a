// Package extract turns structured documents into normalized text so the
// classifier can compare content rather than bytes. Extraction is a
// capability keyed by file kind; kinds without a registered strategy are
// a recognized non-error outcome, not a failure.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"

	"github.com/mtakahara/docdiff/pkg/digest"
	"github.com/mtakahara/docdiff/pkg/models"
)

// ErrUnsupportedKind is returned when a file's kind has no registered
// extraction strategy. Callers fall back to raw-hash comparison.
var ErrUnsupportedKind = errors.New("no content extractor for file kind")

// ExtractionError indicates a file is corrupt or unreadable in its
// declared format. All strategies for the kind were attempted.
type ExtractionError struct {
	Path string
	Kind models.FileKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s content from %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor is the per-format extraction capability: document bytes in,
// plain text out.
type Extractor interface {
	// Extract reads the document and returns its text content
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)

	// Name returns the strategy name
	Name() string
}

// Registry dispatches extraction by file kind. Each kind maps to an
// ordered list of strategies; later entries are fallbacks tried when an
// earlier strategy fails. New formats are added by registering a
// strategy, never by touching the classifier.
type Registry struct {
	strategies map[models.FileKind][]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[models.FileKind][]Extractor)}
}

// DefaultRegistry returns a registry covering the document kinds:
// OOXML extraction for word documents, spreadsheets and presentations,
// and two-tier PDF extraction (page-wise first, whole-document plain
// text as fallback).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(models.KindWordDocument, NewOOXMLExtractor(models.KindWordDocument))
	r.Register(models.KindSpreadsheet, NewOOXMLExtractor(models.KindSpreadsheet))
	r.Register(models.KindPresentation, NewOOXMLExtractor(models.KindPresentation))
	r.Register(models.KindPDF, &PagewisePDFExtractor{})
	r.Register(models.KindPDF, &PlainTextPDFExtractor{})
	return r
}

// Register appends a strategy for the kind. Registration order is
// fallback order.
func (r *Registry) Register(kind models.FileKind, e Extractor) {
	r.strategies[kind] = append(r.strategies[kind], e)
}

// Supported reports whether the kind has at least one strategy.
func (r *Registry) Supported(kind models.FileKind) bool {
	return len(r.strategies[kind]) > 0
}

// Extract reads the file and returns its normalized text content.
// It returns ErrUnsupportedKind when no strategy covers the kind, and an
// ExtractionError when every strategy fails.
func (r *Registry) Extract(ctx context.Context, path string, kind models.FileKind) (string, error) {
	strategies, ok := r.strategies[kind]
	if !ok || len(strategies) == 0 {
		return "", ErrUnsupportedKind
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Kind: kind, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", &ExtractionError{Path: path, Kind: kind, Err: err}
	}

	if err := sniffContainer(f, kind); err != nil {
		return "", &ExtractionError{Path: path, Kind: kind, Err: err}
	}

	var lastErr error
	for _, strategy := range strategies {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		text, err := strategy.Extract(ctx, f, info.Size())
		if err == nil {
			return Normalize(text), nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		lastErr = err
	}

	return "", &ExtractionError{Path: path, Kind: kind, Err: lastErr}
}

// ContentHash composes extraction with the digest primitive: the digest
// of the normalized text, or ErrUnsupportedKind when no extractor applies.
func (r *Registry) ContentHash(ctx context.Context, path string, kind models.FileKind) (string, error) {
	text, err := r.Extract(ctx, path, kind)
	if err != nil {
		return "", err
	}
	return digest.Sum(text), nil
}

// sniffContainer verifies the file's leading bytes match the container
// its kind declares, so that a mislabeled file fails fast instead of
// confusing a format parser. Legacy binary .doc/.ppt/.xls files fail
// the zip check here and fall back to raw-hash comparison.
func sniffContainer(r io.ReaderAt, kind models.FileKind) error {
	head := make([]byte, 262)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return err
	}
	head = head[:n]

	t, err := filetype.Match(head)
	if err != nil {
		return err
	}

	switch kind {
	case models.KindPDF:
		if t.Extension != "pdf" {
			return fmt.Errorf("not a PDF container (detected %q)", t.Extension)
		}
	case models.KindWordDocument, models.KindSpreadsheet, models.KindPresentation:
		switch t.Extension {
		case "zip", "docx", "xlsx", "pptx":
			return nil
		default:
			return fmt.Errorf("not an OOXML container (detected %q)", t.Extension)
		}
	}
	return nil
}
