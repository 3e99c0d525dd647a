package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/progress"
)

// JSONFormatter renders a single JSON document per run, for automation.
type JSONFormatter struct {
	writer io.Writer
	op     *models.CompareOperation
}

// JSONFileData describes one side of a record.
type JSONFileData struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
	Kind    string `json:"kind"`
}

// JSONRecordData describes one classified record.
type JSONRecordData struct {
	Category string        `json:"category"`
	Before   *JSONFileData `json:"before,omitempty"`
	After    *JSONFileData `json:"after,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// JSONCountsData holds per-bucket totals.
type JSONCountsData struct {
	Unchanged int `json:"unchanged"`
	Modified  int `json:"modified"`
	Renamed   int `json:"renamed"`
	Added     int `json:"added"`
	Deleted   int `json:"deleted"`
	Warnings  int `json:"warnings"`
}

// JSONResultData is the top-level comparison document.
type JSONResultData struct {
	RunID      string           `json:"run_id"`
	BeforeRoot string           `json:"before_root"`
	AfterRoot  string           `json:"after_root"`
	Status     string           `json:"status"`
	Duration   string           `json:"duration"`
	DurationMs int64            `json:"duration_ms"`
	Counts     JSONCountsData   `json:"counts"`
	Records    []JSONRecordData `json:"records"`
}

// JSONCopyOutcomeData describes one copy outcome.
type JSONCopyOutcomeData struct {
	Path        string `json:"path"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	BytesCopied int64  `json:"bytes_copied,omitempty"`
}

// JSONCopyReportData is the top-level copy document.
type JSONCopyReportData struct {
	RunID    string                `json:"run_id"`
	DestRoot string                `json:"dest_root"`
	Status   string                `json:"status"`
	Duration string                `json:"duration"`
	Copied   int                   `json:"copied"`
	Skipped  int                   `json:"skipped"`
	Failed   int                   `json:"failed"`
	Bytes    int64                 `json:"bytes"`
	Outcomes []JSONCopyOutcomeData `json:"outcomes"`
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start records the writer; nothing is emitted until Complete.
func (f *JSONFormatter) Start(writer io.Writer, op *models.CompareOperation) error {
	f.writer = writer
	if writer == nil {
		f.writer = io.Discard
	}
	f.op = op
	return nil
}

// Progress is a no-op; JSON output is a single final document.
func (f *JSONFormatter) Progress(e progress.Event) error {
	return nil
}

// Complete writes the comparison result as one JSON document.
func (f *JSONFormatter) Complete(result *models.ComparisonResult) error {
	counts := result.Counts()
	doc := JSONResultData{
		RunID:      result.RunID,
		BeforeRoot: result.BeforeRoot,
		AfterRoot:  result.AfterRoot,
		Status:     string(result.Status),
		Duration:   result.Duration.Round(time.Millisecond).String(),
		DurationMs: result.Duration.Milliseconds(),
		Counts: JSONCountsData{
			Unchanged: counts.Unchanged,
			Modified:  counts.Modified,
			Renamed:   counts.Renamed,
			Added:     counts.Added,
			Deleted:   counts.Deleted,
			Warnings:  counts.Warnings,
		},
	}
	for _, rec := range result.All() {
		doc.Records = append(doc.Records, JSONRecordData{
			Category: string(rec.Category),
			Before:   fileData(rec.Before),
			After:    fileData(rec.After),
			Reason:   rec.Reason,
			Warnings: rec.Warnings,
		})
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// CopySummary writes the copy report as one JSON document.
func (f *JSONFormatter) CopySummary(report *models.CopyReport) error {
	counts := report.Counts()
	doc := JSONCopyReportData{
		RunID:    report.RunID,
		DestRoot: report.DestRoot,
		Status:   string(report.Status),
		Duration: report.Duration.Round(time.Millisecond).String(),
		Copied:   counts.Copied,
		Skipped:  counts.Skipped,
		Failed:   counts.Failed,
		Bytes:    counts.Bytes,
	}
	for _, outcome := range report.Outcomes {
		doc.Outcomes = append(doc.Outcomes, JSONCopyOutcomeData{
			Path:        outcome.RelativePath,
			Status:      string(outcome.Status),
			Reason:      outcome.Reason,
			BytesCopied: outcome.BytesCopied,
		})
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Error writes a JSON error object.
func (f *JSONFormatter) Error(err error) error {
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

func fileData(e *models.FileEntry) *JSONFileData {
	if e == nil {
		return nil
	}
	return &JSONFileData{
		Path:    e.RelativePath,
		Size:    e.Size,
		ModTime: e.ModTime.UTC().Format(time.RFC3339),
		Kind:    string(e.Kind),
	}
}
