// Package classify compares two directory snapshots and sorts every file
// into exactly one of five buckets: unchanged, modified, renamed, added
// or deleted. Byte-identical files and files whose extracted content
// matches both count as unchanged; renames are detected by matching raw
// digests between files that exist on only one side.
package classify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mtakahara/docdiff/pkg/digest"
	"github.com/mtakahara/docdiff/pkg/extract"
	"github.com/mtakahara/docdiff/pkg/logging"
	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/progress"
)

// Config controls classification behavior.
type Config struct {
	// MaxWorkers caps concurrent hashing goroutines (default 4)
	MaxWorkers int

	// BufferSize is the hashing buffer size in bytes (default 64KB)
	BufferSize int

	// ContentCompare enables extracted-content comparison for document
	// kinds. When false every file pair is compared by raw digest only.
	ContentCompare bool

	// Progress receives per-file events; nil disables reporting
	Progress progress.Func

	// Logger receives diagnostics; nil uses a no-op logger
	Logger logging.Logger

	// Extractors dispatches content extraction; nil uses DefaultRegistry
	Extractors *extract.Registry

	// ReaderWrapper optionally wraps file readers during hashing,
	// typically for bandwidth limiting
	ReaderWrapper digest.ReaderWrapper
}

// Classifier compares before/after file listings.
type Classifier struct {
	maxWorkers     int
	contentCompare bool
	hasher         *digest.Hasher
	extractors     *extract.Registry
	progress       progress.Func
	logger         logging.Logger
}

// New creates a classifier from the config, applying defaults for any
// zero field.
func New(cfg Config) *Classifier {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 4
	}
	if cfg.Extractors == nil {
		cfg.Extractors = extract.DefaultRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNullLogger()
	}
	hasher := digest.NewHasher(cfg.BufferSize)
	if cfg.ReaderWrapper != nil {
		hasher.SetReaderWrapper(cfg.ReaderWrapper)
	}
	return &Classifier{
		maxWorkers:     cfg.MaxWorkers,
		contentCompare: cfg.ContentCompare,
		hasher:         hasher,
		extractors:     cfg.Extractors,
		progress:       cfg.Progress,
		logger:         cfg.Logger,
	}
}

// pathPair holds the two sides of a path present in both snapshots.
type pathPair struct {
	before *models.FileEntry
	after  *models.FileEntry
}

// Classify compares the two snapshots and returns every file assigned to
// exactly one bucket. Hash failures degrade to warnings rather than
// aborting the run. Cancellation returns the partial result together
// with the context error; a result with status cancelled holds only the
// records classified before the cutoff, so every-file totality is
// guaranteed only for completed runs.
func (c *Classifier) Classify(ctx context.Context, before, after []models.FileEntry) (*models.ComparisonResult, error) {
	result := &models.ComparisonResult{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
		Status:    models.StatusSuccess,
	}

	cache := digest.NewCache()

	beforeByPath := make(map[string]*models.FileEntry, len(before))
	for i := range before {
		beforeByPath[before[i].RelativePath] = &before[i]
	}
	afterByPath := make(map[string]*models.FileEntry, len(after))
	for i := range after {
		afterByPath[after[i].RelativePath] = &after[i]
	}

	var common []pathPair
	var beforeOnly []*models.FileEntry
	for i := range before {
		b := &before[i]
		if a, ok := afterByPath[b.RelativePath]; ok {
			common = append(common, pathPair{before: b, after: a})
		} else {
			beforeOnly = append(beforeOnly, b)
		}
	}
	var afterOnly []*models.FileEntry
	for i := range after {
		a := &after[i]
		if _, ok := beforeByPath[a.RelativePath]; !ok {
			afterOnly = append(afterOnly, a)
		}
	}

	total := len(common) + len(beforeOnly) + len(afterOnly)
	processed := 0
	var mu sync.Mutex

	emit := func(stage progress.Stage, path string) {
		processed++
		c.progress.Emit(progress.Event{
			Stage:     stage,
			Path:      path,
			Processed: processed,
			Total:     total,
		})
	}

	c.logger.Info(ctx, "classification started", logging.Fields{
		"run_id":      result.RunID,
		"before":      len(before),
		"after":       len(after),
		"common":      len(common),
		"max_workers": c.maxWorkers,
	})

	// Pass 1: files present on both sides.
	records := make([]*models.MatchRecord, len(common))
	semaphore := make(chan struct{}, c.maxWorkers)
	var wg sync.WaitGroup

pass1:
	for i := range common {
		select {
		case <-ctx.Done():
			break pass1
		case semaphore <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int, pair pathPair) {
			defer wg.Done()
			defer func() { <-semaphore }()

			rec := c.classifyPair(ctx, cache, pair)

			mu.Lock()
			records[idx] = rec
			emit(progress.StageCompare, pair.after.RelativePath)
			mu.Unlock()
		}(i, common[i])
	}
	wg.Wait()

	for _, rec := range records {
		if rec != nil {
			result.Add(*rec)
		}
	}

	if ctx.Err() != nil {
		return c.finish(ctx, result, models.StatusCancelled), ctx.Err()
	}

	// Pass 2: rename detection among one-sided files.
	beforeHashes := c.hashSide(ctx, cache, beforeOnly, &mu, emit)
	afterHashes := c.hashSide(ctx, cache, afterOnly, &mu, emit)

	if ctx.Err() != nil {
		return c.finish(ctx, result, models.StatusCancelled), ctx.Err()
	}

	unmatchedBefore, unmatchedAfter := c.pairRenames(result, beforeOnly, afterOnly, beforeHashes, afterHashes)

	// Pass 3: whatever remains is a plain addition or deletion.
	for _, b := range unmatchedBefore {
		rec := models.MatchRecord{
			Category: models.CategoryDeleted,
			Before:   b,
			Reason:   "present only in the before tree",
		}
		if msg, failed := beforeHashes.failure(b.RelativePath); failed {
			rec.Warnings = append(rec.Warnings, msg)
		}
		result.Add(rec)
	}
	for _, a := range unmatchedAfter {
		rec := models.MatchRecord{
			Category: models.CategoryAdded,
			After:    a,
			Reason:   "present only in the after tree",
		}
		if msg, failed := afterHashes.failure(a.RelativePath); failed {
			rec.Warnings = append(rec.Warnings, msg)
		}
		result.Add(rec)
	}

	status := models.StatusSuccess
	if c.hasWarnings(result) {
		status = models.StatusPartial
	}
	return c.finish(ctx, result, status), nil
}

// classifyPair decides the bucket for a path that exists on both sides.
func (c *Classifier) classifyPair(ctx context.Context, cache *digest.Cache, pair pathPair) *models.MatchRecord {
	rec := &models.MatchRecord{Before: pair.before, After: pair.after}

	beforeHash, errB := c.rawHash(ctx, cache, pair.before)
	afterHash, errA := c.rawHash(ctx, cache, pair.after)
	if errB != nil || errA != nil {
		rec.Category = models.CategoryModified
		rec.Reason = "hash unavailable, assuming modified"
		for _, err := range []error{errB, errA} {
			if err != nil {
				rec.Warnings = append(rec.Warnings, err.Error())
			}
		}
		return rec
	}

	if beforeHash == afterHash {
		rec.Category = models.CategoryUnchanged
		rec.Reason = "identical bytes"
		return rec
	}

	if !c.contentCompare || pair.before.Kind != pair.after.Kind || !c.extractors.Supported(pair.after.Kind) {
		rec.Category = models.CategoryModified
		rec.Reason = "byte content differs"
		return rec
	}

	beforeContent, errB := c.contentHash(ctx, cache, pair.before)
	afterContent, errA := c.contentHash(ctx, cache, pair.after)
	if errB != nil || errA != nil {
		rec.Category = models.CategoryModified
		rec.Reason = "byte content differs, content extraction failed"
		for _, err := range []error{errB, errA} {
			if err != nil {
				rec.Warnings = append(rec.Warnings, err.Error())
			}
		}
		return rec
	}

	if beforeContent == afterContent {
		rec.Category = models.CategoryUnchanged
		rec.Reason = "extracted content matches"
	} else {
		rec.Category = models.CategoryModified
		rec.Reason = "extracted content differs"
	}
	return rec
}

// sideHashes holds the raw digests of one-sided files, keyed by relative
// path, with failures recorded separately.
type sideHashes struct {
	digests  map[string]string
	failures map[string]string
}

func (s sideHashes) failure(path string) (string, bool) {
	msg, ok := s.failures[path]
	return msg, ok
}

// hashSide computes raw digests for one-sided entries in parallel.
func (c *Classifier) hashSide(ctx context.Context, cache *digest.Cache, entries []*models.FileEntry, mu *sync.Mutex, emit func(progress.Stage, string)) sideHashes {
	hashes := sideHashes{
		digests:  make(map[string]string, len(entries)),
		failures: make(map[string]string),
	}

	semaphore := make(chan struct{}, c.maxWorkers)
	var wg sync.WaitGroup

loop:
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			break loop
		case semaphore <- struct{}{}:
		}
		wg.Add(1)
		go func(e *models.FileEntry) {
			defer wg.Done()
			defer func() { <-semaphore }()

			h, err := c.rawHash(ctx, cache, e)

			mu.Lock()
			if err != nil {
				hashes.failures[e.RelativePath] = err.Error()
			} else {
				hashes.digests[e.RelativePath] = h
			}
			emit(progress.StageRename, e.RelativePath)
			mu.Unlock()
		}(entry)
	}
	wg.Wait()

	return hashes
}

// pairRenames matches one-sided files by raw digest. Candidates sharing
// a digest are paired in listing order on both sides, so duplicate
// content pairs deterministically. Unpaired entries are returned for the
// added/deleted pass.
func (c *Classifier) pairRenames(result *models.ComparisonResult, beforeOnly, afterOnly []*models.FileEntry, beforeHashes, afterHashes sideHashes) ([]*models.FileEntry, []*models.FileEntry) {
	beforeByHash := make(map[string][]*models.FileEntry)
	for _, b := range beforeOnly {
		if h, ok := beforeHashes.digests[b.RelativePath]; ok {
			beforeByHash[h] = append(beforeByHash[h], b)
		}
	}
	afterByHash := make(map[string][]*models.FileEntry)
	for _, a := range afterOnly {
		if h, ok := afterHashes.digests[a.RelativePath]; ok {
			afterByHash[h] = append(afterByHash[h], a)
		}
	}

	keys := make([]string, 0, len(beforeByHash))
	for h := range beforeByHash {
		if _, ok := afterByHash[h]; ok {
			keys = append(keys, h)
		}
	}
	sort.Strings(keys)

	paired := make(map[*models.FileEntry]bool)
	for _, h := range keys {
		bs, as := beforeByHash[h], afterByHash[h]
		n := len(bs)
		if len(as) < n {
			n = len(as)
		}
		for i := 0; i < n; i++ {
			result.Add(models.MatchRecord{
				Category: models.CategoryRenamed,
				Before:   bs[i],
				After:    as[i],
				Reason:   fmt.Sprintf("identical bytes at a new path (was %s)", bs[i].RelativePath),
			})
			paired[bs[i]] = true
			paired[as[i]] = true
		}
	}

	var unmatchedBefore, unmatchedAfter []*models.FileEntry
	for _, b := range beforeOnly {
		if !paired[b] {
			unmatchedBefore = append(unmatchedBefore, b)
		}
	}
	for _, a := range afterOnly {
		if !paired[a] {
			unmatchedAfter = append(unmatchedAfter, a)
		}
	}
	return unmatchedBefore, unmatchedAfter
}

// rawHash returns the memoized raw digest of the entry.
func (c *Classifier) rawHash(ctx context.Context, cache *digest.Cache, e *models.FileEntry) (string, error) {
	return cache.Get("raw:"+e.AbsolutePath, func() (string, error) {
		h, err := c.hasher.File(ctx, e.AbsolutePath)
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", e.RelativePath, err)
		}
		return h, nil
	})
}

// contentHash returns the memoized extracted-content digest of the entry.
func (c *Classifier) contentHash(ctx context.Context, cache *digest.Cache, e *models.FileEntry) (string, error) {
	return cache.Get("content:"+e.AbsolutePath, func() (string, error) {
		return c.extractors.ContentHash(ctx, e.AbsolutePath, e.Kind)
	})
}

// hasWarnings reports whether any record carries a warning.
func (c *Classifier) hasWarnings(result *models.ComparisonResult) bool {
	for _, rec := range result.All() {
		if len(rec.Warnings) > 0 {
			return true
		}
	}
	return false
}

// finish stamps timing and status, sorts the buckets and logs a summary.
func (c *Classifier) finish(ctx context.Context, result *models.ComparisonResult, status models.RunStatus) *models.ComparisonResult {
	result.Status = status
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.SortBuckets()

	counts := result.Counts()
	c.logger.Info(ctx, "classification finished", logging.Fields{
		"run_id":    result.RunID,
		"status":    string(status),
		"unchanged": counts.Unchanged,
		"modified":  counts.Modified,
		"renamed":   counts.Renamed,
		"added":     counts.Added,
		"deleted":   counts.Deleted,
		"warnings":  counts.Warnings,
		"duration":  result.Duration.String(),
	})
	return result
}

// IsCancelled reports whether the error is a context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
