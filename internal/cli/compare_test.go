package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mtakahara/docdiff/pkg/classify"
	"github.com/mtakahara/docdiff/pkg/config"
	"github.com/mtakahara/docdiff/pkg/logging"
	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/output"
)

// TestRunComparisonCancelledScan tests that cancellation during the scan
// phase yields a nil result with a cancellation error, the case the
// commands must turn into a cancelled exit instead of using the result.
func TestRunComparisonCancelledScan(t *testing.T) {
	before := t.TempDir()
	after := t.TempDir()
	if err := os.WriteFile(filepath.Join(before, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(after, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := &models.CompareOperation{
		BeforePath: before,
		AfterPath:  after,
		MaxWorkers: 1,
	}
	formatter, err := output.NewFormatter("human")
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}

	result, err := runComparison(ctx, config.Default(), op, formatter, logging.NewNullLogger())
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	if !classify.IsCancelled(err) {
		t.Errorf("error %v should be recognized as cancellation", err)
	}
	if result != nil {
		t.Errorf("cancelled scan should not produce a result, got %+v", result)
	}
}
