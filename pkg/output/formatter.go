// Package output renders comparison and copy results: human-readable
// bucket listings, machine-readable JSON, and a live progress bar.
package output

import (
	"fmt"
	"io"

	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/progress"
)

// Formatter renders run output. Implementations are human-readable,
// JSON, and progress-bar variants.
type Formatter interface {
	// Start initializes the formatter for a new run
	Start(writer io.Writer, op *models.CompareOperation) error

	// Progress reports a per-file event during the run
	Progress(e progress.Event) error

	// Complete renders the final comparison result
	Complete(result *models.ComparisonResult) error

	// CopySummary renders the result of a copy run
	CopySummary(report *models.CopyReport) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter for the given name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "human", "":
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "progress":
		return NewProgressFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected human, json or progress)", name)
	}
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
