package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/mtakahara/docdiff/pkg/classify"
	"github.com/mtakahara/docdiff/pkg/copyback"
	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/progress"
	"github.com/mtakahara/docdiff/pkg/ratelimit"
)

// CopyFlags holds copy command flags
type CopyFlags struct {
	Compare CompareFlags
	Dest    string
	Buckets []string
	Select  []string
}

var copyFlags CopyFlags

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy classified files to a destination",
		Long: `Compare the two trees, then copy the after-side files of the chosen
buckets into a destination directory, preserving relative paths and
modification times. The destination is created if it does not exist.`,
		RunE: runCopy,
	}

	addCompareFlags(cmd, &copyFlags.Compare)

	cmd.Flags().StringVarP(&copyFlags.Dest, "dest", "d", "", "destination directory (required)")
	cmd.MarkFlagRequired("dest")
	cmd.Flags().StringSliceVar(&copyFlags.Buckets, "buckets", []string{"added", "modified", "renamed"},
		"buckets to copy: unchanged, modified, renamed, added")
	cmd.Flags().StringSliceVar(&copyFlags.Select, "select", []string{},
		"glob patterns narrowing the copied paths within the chosen buckets")

	return cmd
}

func runCopy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	buckets, err := parseBuckets(copyFlags.Buckets)
	if err != nil {
		return err
	}

	cfg, op, err := prepareRun(&copyFlags.Compare)
	if err != nil {
		return err
	}

	formatter, err := makeFormatter(cfg)
	if err != nil {
		return err
	}

	logger, err := createLogger(copyFlags.Compare.LogFile, copyFlags.Compare.LogFormat, copyFlags.Compare.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	if err := formatter.Start(os.Stdout, op); err != nil {
		return err
	}

	result, err := runComparison(ctx, cfg, op, formatter, logger)
	if err != nil && !classify.IsCancelled(err) {
		formatter.Error(err)
		os.Exit(models.StatusFailed.ExitCode())
	}
	if classify.IsCancelled(err) {
		if result != nil {
			formatter.Complete(result)
		} else {
			// Cancelled during scanning, before classification
			// produced any result.
			formatter.Error(err)
		}
		os.Exit(models.StatusCancelled.ExitCode())
	}

	selected, err := selectPaths(result, buckets, copyFlags.Select)
	if err != nil {
		return err
	}

	copier := copyback.New(copyback.Config{
		Limiter:  ratelimit.NewLimiter(op.BandwidthLimit),
		Progress: func(e progress.Event) { formatter.Progress(e) },
		Logger:   logger,
	})

	report, err := copier.Copy(ctx, result, copyFlags.Dest, selected)
	if err != nil && !classify.IsCancelled(err) {
		formatter.Error(err)
		os.Exit(models.StatusFailed.ExitCode())
	}

	if err := formatter.CopySummary(report); err != nil {
		return err
	}

	// The run is only as good as its worst phase.
	exitCode := report.Status.ExitCode()
	if result.Status.ExitCode() > exitCode {
		exitCode = result.Status.ExitCode()
	}
	os.Exit(exitCode)
	return nil
}

// parseBuckets validates the bucket names. Deleted files have no
// after-side content, so that bucket cannot be copied.
func parseBuckets(names []string) (map[models.Category]bool, error) {
	valid := map[string]models.Category{
		"unchanged": models.CategoryUnchanged,
		"modified":  models.CategoryModified,
		"renamed":   models.CategoryRenamed,
		"added":     models.CategoryAdded,
	}

	buckets := make(map[models.Category]bool, len(names))
	for _, name := range names {
		category, ok := valid[name]
		if !ok {
			return nil, fmt.Errorf("invalid bucket %q (valid: unchanged, modified, renamed, added)", name)
		}
		buckets[category] = true
	}
	return buckets, nil
}

// selectPaths resolves the chosen buckets and glob patterns into the
// list of relative paths to copy.
func selectPaths(result *models.ComparisonResult, buckets map[models.Category]bool, globs []string) ([]string, error) {
	for _, pattern := range globs {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid select pattern %q", pattern)
		}
	}

	var selected []string
	for _, rec := range result.All() {
		if !buckets[rec.Category] || rec.After == nil {
			continue
		}
		path := rec.After.RelativePath
		if len(globs) > 0 && !matchesAny(globs, path) {
			continue
		}
		selected = append(selected, path)
	}
	sort.Strings(selected)
	return selected, nil
}

func matchesAny(globs []string, path string) bool {
	for _, pattern := range globs {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
