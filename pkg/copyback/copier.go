// Package copyback writes a selected subset of a comparison result's
// after-side files into a destination tree, preserving relative paths
// and modification times.
package copyback

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mtakahara/docdiff/pkg/logging"
	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/progress"
	"github.com/mtakahara/docdiff/pkg/ratelimit"
	"github.com/mtakahara/docdiff/pkg/storage"
)

// Config controls copy behavior.
type Config struct {
	// Limiter caps aggregate copy bandwidth; nil disables limiting
	Limiter *ratelimit.Limiter

	// Progress receives per-file events; nil disables reporting
	Progress progress.Func

	// Logger receives diagnostics; nil uses a no-op logger
	Logger logging.Logger
}

// Copier copies classified files out of the after tree.
type Copier struct {
	limiter  *ratelimit.Limiter
	progress progress.Func
	logger   logging.Logger
}

// New creates a copier from the config.
func New(cfg Config) *Copier {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNullLogger()
	}
	return &Copier{
		limiter:  cfg.Limiter,
		progress: cfg.Progress,
		logger:   cfg.Logger,
	}
}

// Copy writes the selected relative paths from the result's after tree
// into destRoot, creating it if needed. Every copyable path in the
// result gets an outcome: copied, skipped (not selected) or failed.
// Selected paths with no after-side file fail rather than abort the run.
func (c *Copier) Copy(ctx context.Context, result *models.ComparisonResult, destRoot string, selected []string) (*models.CopyReport, error) {
	absDest, err := filepath.Abs(destRoot)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return nil, err
	}

	source, err := storage.NewLocal(result.AfterRoot)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	dest, err := storage.NewLocal(absDest)
	if err != nil {
		return nil, err
	}
	defer dest.Close()

	report := &models.CopyReport{
		RunID:     result.RunID,
		DestRoot:  absDest,
		StartTime: time.Now(),
		Status:    models.StatusSuccess,
	}

	copyable := result.CopyEntries()
	wanted := make(map[string]bool, len(selected))
	for _, path := range selected {
		wanted[path] = true
	}

	// Selected paths that classification never produced fail up front.
	var missing []string
	for path := range wanted {
		if _, ok := copyable[path]; !ok {
			missing = append(missing, path)
		}
	}
	sort.Strings(missing)
	for _, path := range missing {
		report.Outcomes = append(report.Outcomes, models.CopyOutcome{
			RelativePath: path,
			Status:       models.CopyStatusFailed,
			Reason:       "not present in the after tree",
		})
	}

	paths := make([]string, 0, len(copyable))
	for path := range copyable {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	total := len(paths)
	cancelled := false
	for i, path := range paths {
		entry := copyable[path]

		if !wanted[path] {
			report.Outcomes = append(report.Outcomes, models.CopyOutcome{
				RelativePath: path,
				Status:       models.CopyStatusSkipped,
				Reason:       "not selected",
			})
			continue
		}

		if cancelled || ctx.Err() != nil {
			cancelled = true
			report.Outcomes = append(report.Outcomes, models.CopyOutcome{
				RelativePath: path,
				Status:       models.CopyStatusSkipped,
				Reason:       "cancelled",
			})
			continue
		}

		c.progress.Emit(progress.Event{
			Stage:     progress.StageCopy,
			Path:      path,
			Processed: i + 1,
			Total:     total,
		})

		outcome := c.copyOne(ctx, source, dest, entry)
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.Status == models.CopyStatusFailed {
			c.logger.Error(ctx, "copy failed", nil, logging.Fields{
				"path":   path,
				"reason": outcome.Reason,
			})
		}
	}

	counts := report.Counts()
	switch {
	case cancelled:
		report.Status = models.StatusCancelled
	case counts.Failed > 0:
		report.Status = models.StatusPartial
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	c.logger.Info(ctx, "copy finished", logging.Fields{
		"run_id":  report.RunID,
		"dest":    absDest,
		"copied":  counts.Copied,
		"skipped": counts.Skipped,
		"failed":  counts.Failed,
		"bytes":   counts.Bytes,
		"status":  string(report.Status),
	})

	if cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// copyOne transfers a single file through the backends.
func (c *Copier) copyOne(ctx context.Context, source storage.Backend, dest *storage.Local, entry *models.FileEntry) models.CopyOutcome {
	start := time.Now()
	outcome := models.CopyOutcome{RelativePath: entry.RelativePath}

	info, err := source.Stat(ctx, entry.RelativePath)
	if err != nil {
		outcome.Status = models.CopyStatusFailed
		outcome.Reason = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}

	reader, err := source.Read(ctx, entry.RelativePath)
	if err != nil {
		outcome.Status = models.CopyStatusFailed
		outcome.Reason = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}
	defer reader.Close()

	limited := ratelimit.NewReadCloser(ctx, reader, c.limiter)

	if err := dest.Write(ctx, entry.RelativePath, limited, info.Size, info); err != nil {
		outcome.Status = models.CopyStatusFailed
		outcome.Reason = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}

	outcome.Status = models.CopyStatusCopied
	outcome.BytesCopied = info.Size
	outcome.Duration = time.Since(start)
	return outcome
}
