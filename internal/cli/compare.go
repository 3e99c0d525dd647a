package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mtakahara/docdiff/pkg/classify"
	"github.com/mtakahara/docdiff/pkg/config"
	"github.com/mtakahara/docdiff/pkg/digest"
	"github.com/mtakahara/docdiff/pkg/logging"
	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/output"
	"github.com/mtakahara/docdiff/pkg/progress"
	"github.com/mtakahara/docdiff/pkg/ratelimit"
	"github.com/mtakahara/docdiff/pkg/scan"
)

// CompareFlags holds compare command flags
type CompareFlags struct {
	Before       string
	After        string
	Exclude      []string
	Parallel     int
	Bandwidth    string
	NoContent    bool
	Output       string
	Report       string
	ReportFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var compareFlags CompareFlags

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two directory trees",
		Long: `Compare a before tree against an after tree and classify every file
as unchanged, modified, renamed, added or deleted. Office documents and
PDFs whose bytes differ are additionally compared by extracted content,
so save-artifact differences do not count as modifications.`,
		RunE: runCompare,
	}

	addCompareFlags(cmd, &compareFlags)

	return cmd
}

// addCompareFlags registers the comparison flag set; the copy command
// shares it.
func addCompareFlags(cmd *cobra.Command, flags *CompareFlags) {
	cmd.Flags().StringVarP(&flags.Before, "before", "b", "", "before directory path (required)")
	cmd.Flags().StringVarP(&flags.After, "after", "a", "", "after directory path (required)")
	cmd.MarkFlagRequired("before")
	cmd.MarkFlagRequired("after")

	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().IntVarP(&flags.Parallel, "parallel", "p", 0, "number of parallel workers (default: 4)")
	cmd.Flags().StringVar(&flags.Bandwidth, "bandwidth", "", "read bandwidth limit (e.g. \"10M\", \"1G\")")
	cmd.Flags().BoolVar(&flags.NoContent, "no-content", false, "disable extracted-content comparison, compare raw bytes only")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output format: human, json, progress")
	cmd.Flags().StringVar(&flags.Report, "report", "", "write full classification report to file")
	cmd.Flags().StringVar(&flags.ReportFormat, "report-format", "human", "report format: human, json")

	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, op, err := prepareRun(&compareFlags)
	if err != nil {
		return err
	}

	formatter, err := makeFormatter(cfg)
	if err != nil {
		return err
	}

	logger, err := createLogger(compareFlags.LogFile, compareFlags.LogFormat, compareFlags.LogLevel)
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
	if result == nil {
		// Cancelled during scanning, before classification produced
		// any result.
		formatter.Error(err)
		os.Exit(models.StatusCancelled.ExitCode())
	}

	if err := formatter.Complete(result); err != nil {
		return err
	}

	if compareFlags.Report != "" {
		if err := output.WriteBucketReport(result, compareFlags.Report, compareFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	os.Exit(result.Status.ExitCode())
	return nil
}

// runComparison scans both trees and classifies them. A cancelled run
// returns the partial result together with the context error.
func runComparison(ctx context.Context, cfg *config.Config, op *models.CompareOperation, formatter output.Formatter, logger logging.Logger) (*models.ComparisonResult, error) {
	scanner := scan.New(op.ExcludePatterns)

	before, err := scanner.Scan(ctx, op.BeforePath)
	if err != nil {
		return nil, fmt.Errorf("scan before tree: %w", err)
	}
	after, err := scanner.Scan(ctx, op.AfterPath)
	if err != nil {
		return nil, fmt.Errorf("scan after tree: %w", err)
	}

	beforeRoot, err := filepath.Abs(op.BeforePath)
	if err != nil {
		return nil, err
	}
	afterRoot, err := filepath.Abs(op.AfterPath)
	if err != nil {
		return nil, err
	}

	var wrapper digest.ReaderWrapper
	if limiter := ratelimit.NewLimiter(op.BandwidthLimit); limiter != nil {
		wrapper = func(r io.Reader) io.Reader {
			return ratelimit.NewReader(ctx, r, limiter)
		}
	}

	classifier := classify.New(classify.Config{
		MaxWorkers:     op.MaxWorkers,
		BufferSize:     op.BufferSize,
		ContentCompare: op.ContentCompare,
		Progress:       func(e progress.Event) { formatter.Progress(e) },
		Logger:         logger,
		ReaderWrapper:  wrapper,
	})

	result, err := classifier.Classify(ctx, before, after)
	if result != nil {
		result.BeforeRoot = beforeRoot
		result.AfterRoot = afterRoot
	}
	return result, err
}

// makeFormatter picks the output formatter from config.
func makeFormatter(cfg *config.Config) (output.Formatter, error) {
	name := cfg.Output.Format
	if name == "human" && cfg.Output.Progress && !cfg.Output.Quiet {
		name = "progress"
	}
	formatter, err := output.NewFormatter(name)
	if err != nil {
		return nil, err
	}
	if human, ok := formatter.(*output.HumanFormatter); ok {
		human.SetQuiet(cfg.Output.Quiet)
	}
	return formatter, nil
}

// createLogger creates a file logger, or a discarding one when no log
// file is configured.
func createLogger(logFile, logFormat, logLevel string) (logging.Logger, error) {
	if logFile == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch logFormat {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       logFile,
		Format:     format,
		Level:      logging.ParseLevel(logLevel),
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 5,
	})
}
