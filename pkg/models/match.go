package models

import (
	"sort"
	"time"
)

// Category is the classification outcome for one file (or rename pair).
type Category string

const (
	// CategoryUnchanged indicates identical raw bytes or identical extracted content
	CategoryUnchanged Category = "unchanged"
	// CategoryModified indicates same path, different content
	CategoryModified Category = "modified"
	// CategoryRenamed indicates different path, identical raw bytes
	CategoryRenamed Category = "renamed"
	// CategoryAdded indicates the file exists only in the after tree
	CategoryAdded Category = "added"
	// CategoryDeleted indicates the file exists only in the before tree
	CategoryDeleted Category = "deleted"
)

// MatchRecord is the outcome of classification for one relative path or
// one content identity (a rename pair).
// Added records carry only After; Deleted records carry only Before;
// all other categories carry both sides.
type MatchRecord struct {
	Category Category
	Before   *FileEntry
	After    *FileEntry
	Reason   string

	// Warnings holds non-fatal per-file errors (read or extraction
	// failures) encountered while classifying this record.
	Warnings []string
}

// Path returns the record's display path: the after-side path when
// present, otherwise the before-side path.
func (r MatchRecord) Path() string {
	if r.After != nil {
		return r.After.RelativePath
	}
	if r.Before != nil {
		return r.Before.RelativePath
	}
	return ""
}

// RunStatus represents the overall result of a comparison or copy run.
type RunStatus string

const (
	// StatusSuccess indicates the run completed without per-file errors
	StatusSuccess RunStatus = "success"
	// StatusPartial indicates the run completed but some files carry warnings
	StatusPartial RunStatus = "partial"
	// StatusFailed indicates the run aborted with a fatal error
	StatusFailed RunStatus = "failed"
	// StatusCancelled indicates the run was cancelled before completion
	StatusCancelled RunStatus = "cancelled"
)

// ExitCode returns the process exit code for the run status.
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// BucketCounts holds per-category totals for a comparison result.
type BucketCounts struct {
	Unchanged int
	Modified  int
	Renamed   int
	Added     int
	Deleted   int
	Warnings  int
}

// Total returns the number of records across all buckets.
func (c BucketCounts) Total() int {
	return c.Unchanged + c.Modified + c.Renamed + c.Added + c.Deleted
}

// ComparisonResult holds the five classification buckets for one run.
// Every scanned entry from both sides appears in exactly one record.
type ComparisonResult struct {
	// RunID identifies this comparison run
	RunID string

	// BeforeRoot and AfterRoot are the compared directory roots
	BeforeRoot string
	AfterRoot  string

	// The five buckets, each sorted by relative path
	Unchanged []MatchRecord
	Modified  []MatchRecord
	Renamed   []MatchRecord
	Added     []MatchRecord
	Deleted   []MatchRecord

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Status is the overall run outcome
	Status RunStatus
}

// Add routes a record into its category bucket.
func (r *ComparisonResult) Add(rec MatchRecord) {
	switch rec.Category {
	case CategoryUnchanged:
		r.Unchanged = append(r.Unchanged, rec)
	case CategoryModified:
		r.Modified = append(r.Modified, rec)
	case CategoryRenamed:
		r.Renamed = append(r.Renamed, rec)
	case CategoryAdded:
		r.Added = append(r.Added, rec)
	case CategoryDeleted:
		r.Deleted = append(r.Deleted, rec)
	}
}

// All returns every record across the five buckets, in bucket order.
func (r *ComparisonResult) All() []MatchRecord {
	size := len(r.Unchanged) + len(r.Modified) + len(r.Renamed) + len(r.Added) + len(r.Deleted)
	out := make([]MatchRecord, 0, size)
	out = append(out, r.Unchanged...)
	out = append(out, r.Modified...)
	out = append(out, r.Renamed...)
	out = append(out, r.Added...)
	out = append(out, r.Deleted...)
	return out
}

// Counts returns per-bucket totals and the number of records with warnings.
func (r *ComparisonResult) Counts() BucketCounts {
	c := BucketCounts{
		Unchanged: len(r.Unchanged),
		Modified:  len(r.Modified),
		Renamed:   len(r.Renamed),
		Added:     len(r.Added),
		Deleted:   len(r.Deleted),
	}
	for _, rec := range r.All() {
		if len(rec.Warnings) > 0 {
			c.Warnings++
		}
	}
	return c
}

// SortBuckets orders each bucket by relative path so that results are
// deterministic regardless of worker completion order.
func (r *ComparisonResult) SortBuckets() {
	byAfter := func(recs []MatchRecord) {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Path() < recs[j].Path() })
	}
	byBefore := func(recs []MatchRecord) {
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].Before.RelativePath < recs[j].Before.RelativePath
		})
	}
	byAfter(r.Unchanged)
	byAfter(r.Modified)
	byAfter(r.Added)
	byBefore(r.Deleted)
	byBefore(r.Renamed)
}

// CopyEntries returns the after-side entries that can be copied to a
// destination, keyed by relative path. Deleted records have no after-side
// file and are excluded.
func (r *ComparisonResult) CopyEntries() map[string]*FileEntry {
	out := make(map[string]*FileEntry)
	for _, rec := range r.All() {
		if rec.After != nil {
			out[rec.After.RelativePath] = rec.After
		}
	}
	return out
}
