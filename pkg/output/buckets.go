package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mtakahara/docdiff/pkg/models"
)

// WriteBucketReport writes the full classification to a file, in
// "human" or "json" format. Unlike the terminal output it always
// includes the unchanged bucket.
func WriteBucketReport(result *models.ComparisonResult, path string, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return writeBucketsJSON(result, file)
	case "human", "":
		return writeBucketsHuman(result, file)
	default:
		return fmt.Errorf("unknown report format %q (expected human or json)", format)
	}
}

func writeBucketsJSON(result *models.ComparisonResult, w io.Writer) error {
	f := NewJSONFormatter()
	f.writer = w
	return f.Complete(result)
}

func writeBucketsHuman(result *models.ComparisonResult, w io.Writer) error {
	fmt.Fprintf(w, "Comparison Report\n")
	fmt.Fprintf(w, "=================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Run ID:    %s\n", result.RunID)
	fmt.Fprintf(w, "Before:    %s\n", result.BeforeRoot)
	fmt.Fprintf(w, "After:     %s\n", result.AfterRoot)
	fmt.Fprintf(w, "Status:    %s\n\n", result.Status)

	sections := []struct {
		label string
		recs  []models.MatchRecord
	}{
		{"Unchanged", result.Unchanged},
		{"Modified", result.Modified},
		{"Renamed", result.Renamed},
		{"Added", result.Added},
		{"Deleted", result.Deleted},
	}

	for _, section := range sections {
		fmt.Fprintf(w, "%s (%d):\n", section.label, len(section.recs))
		for _, rec := range section.recs {
			switch rec.Category {
			case models.CategoryRenamed:
				fmt.Fprintf(w, "  %s -> %s", rec.Before.RelativePath, rec.After.RelativePath)
			case models.CategoryDeleted:
				fmt.Fprintf(w, "  %s", rec.Before.RelativePath)
			default:
				fmt.Fprintf(w, "  %s", rec.Path())
			}
			if rec.Reason != "" {
				fmt.Fprintf(w, "  (%s)", rec.Reason)
			}
			fmt.Fprintln(w)
			for _, warning := range rec.Warnings {
				fmt.Fprintf(w, "    warning: %s\n", warning)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
