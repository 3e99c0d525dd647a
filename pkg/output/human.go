package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/progress"
)

// HumanFormatter renders bucket listings and summaries for a terminal.
type HumanFormatter struct {
	writer io.Writer
	quiet  bool
}

// NewHumanFormatter creates a human-readable formatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// SetQuiet suppresses bucket listings, leaving only the summary.
func (f *HumanFormatter) SetQuiet(quiet bool) {
	f.quiet = quiet
}

// Start prints the run header.
func (f *HumanFormatter) Start(writer io.Writer, op *models.CompareOperation) error {
	f.writer = writer
	if writer == nil {
		f.writer = io.Discard
	}
	fmt.Fprintf(f.writer, "Comparing %s (before) against %s (after)\n", op.BeforePath, op.AfterPath)
	return nil
}

// Progress is a no-op; the human formatter only prints final output.
func (f *HumanFormatter) Progress(e progress.Event) error {
	return nil
}

// Complete prints the per-bucket listings and a summary.
func (f *HumanFormatter) Complete(result *models.ComparisonResult) error {
	w := f.writer
	if w == nil {
		w = io.Discard
	}

	if !f.quiet {
		f.printBucket(w, "Modified", result.Modified, color.New(color.FgYellow))
		f.printBucket(w, "Renamed", result.Renamed, color.New(color.FgCyan))
		f.printBucket(w, "Added", result.Added, color.New(color.FgGreen))
		f.printBucket(w, "Deleted", result.Deleted, color.New(color.FgRed))
	}

	counts := result.Counts()
	fmt.Fprintf(w, "\nCompared %d files in %s\n", counts.Total(), result.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Unchanged: %d\n", counts.Unchanged)
	fmt.Fprintf(w, "  Modified:  %d\n", counts.Modified)
	fmt.Fprintf(w, "  Renamed:   %d\n", counts.Renamed)
	fmt.Fprintf(w, "  Added:     %d\n", counts.Added)
	fmt.Fprintf(w, "  Deleted:   %d\n", counts.Deleted)
	if counts.Warnings > 0 {
		color.New(color.FgYellow).Fprintf(w, "  Warnings:  %d\n", counts.Warnings)
	}
	fmt.Fprintf(w, "Status: %s\n", result.Status)

	if counts.Warnings > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, rec := range result.All() {
			for _, warning := range rec.Warnings {
				fmt.Fprintf(w, "  %s: %s\n", rec.Path(), warning)
			}
		}
	}
	return nil
}

// printBucket lists one bucket with a colored header. Empty buckets are
// omitted.
func (f *HumanFormatter) printBucket(w io.Writer, label string, recs []models.MatchRecord, c *color.Color) {
	if len(recs) == 0 {
		return
	}
	c.Fprintf(w, "\n%s (%d):\n", label, len(recs))
	for _, rec := range recs {
		switch rec.Category {
		case models.CategoryRenamed:
			fmt.Fprintf(w, "  %s -> %s\n", rec.Before.RelativePath, rec.After.RelativePath)
		case models.CategoryDeleted:
			fmt.Fprintf(w, "  %s\n", rec.Before.RelativePath)
		default:
			fmt.Fprintf(w, "  %s\n", rec.Path())
		}
	}
}

// CopySummary prints the outcome of a copy run.
func (f *HumanFormatter) CopySummary(report *models.CopyReport) error {
	w := f.writer
	if w == nil {
		w = io.Discard
	}

	counts := report.Counts()
	fmt.Fprintf(w, "\nCopied %d files (%s) to %s in %s\n",
		counts.Copied, formatBytes(counts.Bytes), report.DestRoot,
		report.Duration.Round(time.Millisecond))
	if counts.Skipped > 0 {
		fmt.Fprintf(w, "  Skipped: %d\n", counts.Skipped)
	}
	if counts.Failed > 0 {
		color.New(color.FgRed).Fprintf(w, "  Failed:  %d\n", counts.Failed)
		for _, outcome := range report.Outcomes {
			if outcome.Status == models.CopyStatusFailed {
				fmt.Fprintf(w, "    %s: %s\n", outcome.RelativePath, outcome.Reason)
			}
		}
	}
	fmt.Fprintf(w, "Status: %s\n", report.Status)
	return nil
}

// Error prints a fatal error.
func (f *HumanFormatter) Error(err error) error {
	w := f.writer
	if w == nil {
		w = io.Discard
	}
	color.New(color.FgRed).Fprintf(w, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name.
func (f *HumanFormatter) Name() string {
	return "human"
}
