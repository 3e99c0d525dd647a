package models

import (
	"time"
)

// CopyStatus is the per-file outcome of a copy operation.
type CopyStatus string

const (
	// CopyStatusCopied indicates the file was written to the destination
	CopyStatusCopied CopyStatus = "copied"
	// CopyStatusSkipped indicates the file was not selected for copying
	CopyStatusSkipped CopyStatus = "skipped"
	// CopyStatusFailed indicates the copy failed for this file only
	CopyStatusFailed CopyStatus = "failed"
)

// CopyOutcome reports what happened to one requested relative path.
type CopyOutcome struct {
	RelativePath string
	Status       CopyStatus
	Reason       string
	BytesCopied  int64
	Duration     time.Duration
}

// CopyReport holds the outcomes of one copy run.
type CopyReport struct {
	RunID    string
	DestRoot string

	Outcomes []CopyOutcome

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Status RunStatus
}

// CopyCounts holds per-status totals for a copy report.
type CopyCounts struct {
	Copied  int
	Skipped int
	Failed  int
	Bytes   int64
}

// Counts returns per-status totals for the report.
func (r *CopyReport) Counts() CopyCounts {
	var c CopyCounts
	for _, o := range r.Outcomes {
		switch o.Status {
		case CopyStatusCopied:
			c.Copied++
			c.Bytes += o.BytesCopied
		case CopyStatusSkipped:
			c.Skipped++
		case CopyStatusFailed:
			c.Failed++
		}
	}
	return c
}
