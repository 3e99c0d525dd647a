package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mtakahara/docdiff/pkg/models"
)

func buildTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}
	return dir
}

func relPaths(entries []models.FileEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = filepath.ToSlash(e.RelativePath)
	}
	return paths
}

// TestScan tests basic enumeration behavior
func TestScan(t *testing.T) {
	dir := buildTree(t, map[string]string{
		"b.txt":          "beta",
		"a.docx":         "not really a docx",
		"sub/c.pdf":      "not really a pdf",
		"sub/deep/d.txt": "delta",
	})

	scanner := New(nil)
	entries, err := scanner.Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got := relPaths(entries)
	want := []string{"a.docx", "b.txt", "sub/c.pdf", "sub/deep/d.txt"}
	if len(got) != len(want) {
		t.Fatalf("Scan() found %v, want %v", got, want)
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("entries are not sorted: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	byPath := make(map[string]models.FileEntry)
	for _, e := range entries {
		byPath[filepath.ToSlash(e.RelativePath)] = e
	}
	if byPath["a.docx"].Kind != models.KindWordDocument {
		t.Errorf("a.docx kind = %q, want %q", byPath["a.docx"].Kind, models.KindWordDocument)
	}
	if byPath["sub/c.pdf"].Kind != models.KindPDF {
		t.Errorf("sub/c.pdf kind = %q, want %q", byPath["sub/c.pdf"].Kind, models.KindPDF)
	}
	if byPath["b.txt"].Kind != models.KindOther {
		t.Errorf("b.txt kind = %q, want %q", byPath["b.txt"].Kind, models.KindOther)
	}
	if byPath["b.txt"].Size != int64(len("beta")) {
		t.Errorf("b.txt size = %d, want %d", byPath["b.txt"].Size, len("beta"))
	}
	if !filepath.IsAbs(byPath["b.txt"].AbsolutePath) {
		t.Errorf("AbsolutePath = %q, want absolute", byPath["b.txt"].AbsolutePath)
	}
}

// TestScanExcludes tests glob-based exclusion
func TestScanExcludes(t *testing.T) {
	dir := buildTree(t, map[string]string{
		"keep.txt":        "x",
		"drop.tmp":        "x",
		".git/config":     "x",
		"sub/also.tmp":    "x",
		"sub/keep.docx":   "x",
		"~$recovery.docx": "x",
	})

	scanner := New([]string{"*.tmp", ".git", "~$*"})
	entries, err := scanner.Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	got := relPaths(entries)
	want := []string{"keep.txt", "sub/keep.docx"}
	if len(got) != len(want) {
		t.Fatalf("Scan() found %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestScanMissingRoot tests that a missing root is fatal
func TestScanMissingRoot(t *testing.T) {
	scanner := New(nil)
	_, err := scanner.Scan(context.Background(), "/nonexistent/root/for/scan")
	if err == nil {
		t.Fatal("Scan() should fail for a missing root")
	}

	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Errorf("error = %T, want *FatalError", err)
	}
}

// TestScanEmptyTree tests scanning an empty directory
func TestScanEmptyTree(t *testing.T) {
	scanner := New(nil)
	entries, err := scanner.Scan(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Scan() found %d entries in an empty tree", len(entries))
	}
}
