package copyback

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mtakahara/docdiff/pkg/models"
)

// fixture builds an after tree and a comparison result referencing it.
type fixture struct {
	afterRoot string
	result    *models.ComparisonResult
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	afterRoot := t.TempDir()

	result := &models.ComparisonResult{
		RunID:     "test-run",
		AfterRoot: afterRoot,
		Status:    models.StatusSuccess,
	}

	modTime := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	for name, content := range files {
		path := filepath.Join(afterRoot, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatalf("failed to set mod time: %v", err)
		}

		result.Add(models.MatchRecord{
			Category: models.CategoryAdded,
			After: &models.FileEntry{
				RelativePath: filepath.FromSlash(name),
				AbsolutePath: path,
				Size:         int64(len(content)),
				ModTime:      modTime,
			},
		})
	}

	return &fixture{afterRoot: afterRoot, result: result}
}

func outcomesByPath(report *models.CopyReport) map[string]models.CopyOutcome {
	out := make(map[string]models.CopyOutcome)
	for _, o := range report.Outcomes {
		out[filepath.ToSlash(o.RelativePath)] = o
	}
	return out
}

// TestCopySelected tests copying a subset of classified files
func TestCopySelected(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"pick.txt":       "chosen",
		"sub/nested.txt": "also chosen",
		"leave.txt":      "not chosen",
	})
	dest := filepath.Join(t.TempDir(), "dest")

	copier := New(Config{})
	report, err := copier.Copy(context.Background(), fx.result, dest,
		[]string{"pick.txt", filepath.FromSlash("sub/nested.txt")})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	counts := report.Counts()
	if counts.Copied != 2 || counts.Skipped != 1 || counts.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if report.Status != models.StatusSuccess {
		t.Errorf("Status = %q, want success", report.Status)
	}

	got, err := os.ReadFile(filepath.Join(dest, "sub", "nested.txt"))
	if err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
	if string(got) != "also chosen" {
		t.Errorf("copied content = %q", got)
	}

	if _, err := os.Stat(filepath.Join(dest, "leave.txt")); !os.IsNotExist(err) {
		t.Error("unselected file must not be copied")
	}

	outcomes := outcomesByPath(report)
	if outcomes["leave.txt"].Reason != "not selected" {
		t.Errorf("skip reason = %q", outcomes["leave.txt"].Reason)
	}
}

// TestCopyPreservesModTime tests metadata preservation
func TestCopyPreservesModTime(t *testing.T) {
	fx := newFixture(t, map[string]string{"doc.txt": "content"})
	dest := filepath.Join(t.TempDir(), "dest")

	copier := New(Config{})
	if _, err := copier.Copy(context.Background(), fx.result, dest, []string{"doc.txt"}); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	srcInfo, err := os.Stat(filepath.Join(fx.afterRoot, "doc.txt"))
	if err != nil {
		t.Fatalf("stat source: %v", err)
	}
	dstInfo, err := os.Stat(filepath.Join(dest, "doc.txt"))
	if err != nil {
		t.Fatalf("stat dest: %v", err)
	}
	if !srcInfo.ModTime().Equal(dstInfo.ModTime()) {
		t.Errorf("ModTime = %v, want %v", dstInfo.ModTime(), srcInfo.ModTime())
	}
}

// TestCopyCreatesDestination tests that a missing destination is created
func TestCopyCreatesDestination(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.txt": "x"})
	dest := filepath.Join(t.TempDir(), "deep", "nested", "dest")

	copier := New(Config{})
	report, err := copier.Copy(context.Background(), fx.result, dest, []string{"a.txt"})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if report.Counts().Copied != 1 {
		t.Errorf("Copied = %d, want 1", report.Counts().Copied)
	}
}

// TestCopyUnknownSelection tests that selecting a path outside the
// result fails that path without aborting the run
func TestCopyUnknownSelection(t *testing.T) {
	fx := newFixture(t, map[string]string{"real.txt": "x"})
	dest := filepath.Join(t.TempDir(), "dest")

	copier := New(Config{})
	report, err := copier.Copy(context.Background(), fx.result, dest,
		[]string{"real.txt", "phantom.txt"})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	counts := report.Counts()
	if counts.Copied != 1 || counts.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if report.Status != models.StatusPartial {
		t.Errorf("Status = %q, want partial", report.Status)
	}

	outcomes := outcomesByPath(report)
	if outcomes["phantom.txt"].Reason != "not present in the after tree" {
		t.Errorf("failure reason = %q", outcomes["phantom.txt"].Reason)
	}
}

// TestCopySourceFailure tests per-file failure isolation
func TestCopySourceFailure(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"ok.txt":   "fine",
		"gone.txt": "will vanish",
	})
	// Remove a source file between classification and copy.
	if err := os.Remove(filepath.Join(fx.afterRoot, "gone.txt")); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	dest := filepath.Join(t.TempDir(), "dest")

	copier := New(Config{})
	report, err := copier.Copy(context.Background(), fx.result, dest,
		[]string{"ok.txt", "gone.txt"})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	counts := report.Counts()
	if counts.Copied != 1 || counts.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if report.Status != models.StatusPartial {
		t.Errorf("Status = %q, want partial", report.Status)
	}
}

// TestCopyCancelled tests that cancellation skips remaining files
func TestCopyCancelled(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.txt": "x",
		"b.txt": "y",
	})
	dest := filepath.Join(t.TempDir(), "dest")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	copier := New(Config{})
	report, err := copier.Copy(ctx, fx.result, dest, []string{"a.txt", "b.txt"})
	if err == nil {
		t.Fatal("Copy() should return the context error when cancelled")
	}
	if report.Status != models.StatusCancelled {
		t.Errorf("Status = %q, want cancelled", report.Status)
	}

	counts := report.Counts()
	if counts.Copied != 0 || counts.Skipped != 2 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

// TestCopyNothingSelected tests a run where everything is skipped
func TestCopyNothingSelected(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.txt": "x"})
	dest := filepath.Join(t.TempDir(), "dest")

	copier := New(Config{})
	report, err := copier.Copy(context.Background(), fx.result, dest, nil)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	counts := report.Counts()
	if counts.Copied != 0 || counts.Skipped != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if report.Status != models.StatusSuccess {
		t.Errorf("Status = %q, want success", report.Status)
	}
}
