package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileKind classifies a file by the document format its extension declares.
// The kind decides which content extractor applies during comparison.
type FileKind string

const (
	// KindWordDocument covers .doc and .docx files
	KindWordDocument FileKind = "word-document"
	// KindPresentation covers .ppt and .pptx files
	KindPresentation FileKind = "presentation"
	// KindSpreadsheet covers .xls and .xlsx files
	KindSpreadsheet FileKind = "spreadsheet"
	// KindPDF covers .pdf files
	KindPDF FileKind = "pdf"
	// KindOther covers everything else; no content extraction applies
	KindOther FileKind = "other"
)

// KindFromPath derives the file kind from the path's extension.
func KindFromPath(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".doc", ".docx":
		return KindWordDocument
	case ".ppt", ".pptx":
		return KindPresentation
	case ".xls", ".xlsx":
		return KindSpreadsheet
	case ".pdf":
		return KindPDF
	default:
		return KindOther
	}
}

// FileEntry represents one file discovered during a scan.
// Entries are created once per scan and never mutated afterwards.
type FileEntry struct {
	// RelativePath is the path relative to the scan root.
	// It uniquely identifies the entry within one side of a comparison.
	RelativePath string

	// AbsolutePath is the resolved filesystem location, used only for I/O
	AbsolutePath string

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Kind is the document format derived from the extension
	Kind FileKind
}
