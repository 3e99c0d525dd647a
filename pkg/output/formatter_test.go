package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mtakahara/docdiff/pkg/models"
)

func sampleResult() *models.ComparisonResult {
	entry := func(path string) *models.FileEntry {
		return &models.FileEntry{RelativePath: path, Size: 10, ModTime: time.Unix(1700000000, 0), Kind: models.KindOther}
	}

	result := &models.ComparisonResult{
		RunID:      "run-1",
		BeforeRoot: "/before",
		AfterRoot:  "/after",
		Status:     models.StatusSuccess,
		Duration:   1500 * time.Millisecond,
	}
	result.Add(models.MatchRecord{Category: models.CategoryUnchanged, Before: entry("same.txt"), After: entry("same.txt"), Reason: "identical bytes"})
	result.Add(models.MatchRecord{Category: models.CategoryModified, Before: entry("edit.txt"), After: entry("edit.txt"), Reason: "byte content differs"})
	result.Add(models.MatchRecord{Category: models.CategoryRenamed, Before: entry("old.bin"), After: entry("new.bin")})
	result.Add(models.MatchRecord{Category: models.CategoryAdded, After: entry("fresh.txt")})
	result.Add(models.MatchRecord{Category: models.CategoryDeleted, Before: entry("gone.txt")})
	return result
}

func sampleOperation() *models.CompareOperation {
	return &models.CompareOperation{
		ID:         "op-1",
		BeforePath: "/before",
		AfterPath:  "/after",
		MaxWorkers: 4,
		BufferSize: 65536,
	}
}

// TestNewFormatter tests formatter selection by name
func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"human", "json", "progress", ""} {
		if _, err := NewFormatter(name); err != nil {
			t.Errorf("NewFormatter(%q) error = %v", name, err)
		}
	}
	if _, err := NewFormatter("yaml"); err == nil {
		t.Error("NewFormatter(yaml) should fail")
	}
}

// TestHumanFormatter tests the terminal rendering
func TestHumanFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()

	if err := f.Start(&buf, sampleOperation()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.Complete(sampleResult()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Comparing /before",
		"old.bin -> new.bin",
		"fresh.txt",
		"gone.txt",
		"Unchanged: 1",
		"Modified:  1",
		"Status: success",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	t.Run("Quiet", func(t *testing.T) {
		var quietBuf bytes.Buffer
		f := NewHumanFormatter()
		f.SetQuiet(true)
		f.Start(&quietBuf, sampleOperation())
		f.Complete(sampleResult())

		out := quietBuf.String()
		if strings.Contains(out, "old.bin -> new.bin") {
			t.Error("quiet output should omit bucket listings")
		}
		if !strings.Contains(out, "Unchanged: 1") {
			t.Error("quiet output should keep the summary")
		}
	})
}

// TestJSONFormatter tests the machine-readable document
func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()

	if err := f.Start(&buf, sampleOperation()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.Complete(sampleResult()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var doc JSONResultData
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.RunID != "run-1" {
		t.Errorf("run_id = %q", doc.RunID)
	}
	if doc.Counts.Total() == 0 {
		t.Error("counts missing")
	}
	if len(doc.Records) != 5 {
		t.Errorf("records = %d, want 5", len(doc.Records))
	}

	var rename *JSONRecordData
	for i := range doc.Records {
		if doc.Records[i].Category == "renamed" {
			rename = &doc.Records[i]
		}
	}
	if rename == nil || rename.Before == nil || rename.After == nil {
		t.Fatal("renamed record should carry both sides")
	}
	if rename.Before.Path != "old.bin" || rename.After.Path != "new.bin" {
		t.Errorf("rename = %s -> %s", rename.Before.Path, rename.After.Path)
	}
}

// Total is a convenience for the JSON counts in tests.
func (c JSONCountsData) Total() int {
	return c.Unchanged + c.Modified + c.Renamed + c.Added + c.Deleted
}

// TestCopySummaryRendering tests copy report output in both formats
func TestCopySummaryRendering(t *testing.T) {
	report := &models.CopyReport{
		RunID:    "run-1",
		DestRoot: "/dest",
		Status:   models.StatusPartial,
		Outcomes: []models.CopyOutcome{
			{RelativePath: "a.txt", Status: models.CopyStatusCopied, BytesCopied: 100},
			{RelativePath: "b.txt", Status: models.CopyStatusFailed, Reason: "permission denied"},
		},
	}

	t.Run("Human", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewHumanFormatter()
		f.Start(&buf, sampleOperation())
		if err := f.CopySummary(report); err != nil {
			t.Fatalf("CopySummary() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "b.txt: permission denied") {
			t.Errorf("output missing failure detail:\n%s", out)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		f := NewJSONFormatter()
		f.Start(&buf, sampleOperation())
		if err := f.CopySummary(report); err != nil {
			t.Fatalf("CopySummary() error = %v", err)
		}
		var doc JSONCopyReportData
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if doc.Copied != 1 || doc.Failed != 1 {
			t.Errorf("counts = %+v", doc)
		}
	})
}

// TestWriteBucketReport tests the report file writer
func TestWriteBucketReport(t *testing.T) {
	result := sampleResult()

	t.Run("Human", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.txt")
		if err := WriteBucketReport(result, path, "human"); err != nil {
			t.Fatalf("WriteBucketReport() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		out := string(data)
		if !strings.Contains(out, "Unchanged (1):") {
			t.Errorf("report missing unchanged section:\n%s", out)
		}
		if !strings.Contains(out, "old.bin -> new.bin") {
			t.Errorf("report missing rename:\n%s", out)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		if err := WriteBucketReport(result, path, "json"); err != nil {
			t.Fatalf("WriteBucketReport() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var doc JSONResultData
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("report is not valid JSON: %v", err)
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.xml")
		if err := WriteBucketReport(result, path, "xml"); err == nil {
			t.Error("WriteBucketReport() should reject unknown formats")
		}
	})
}

// TestFormatBytes tests size rendering
func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
