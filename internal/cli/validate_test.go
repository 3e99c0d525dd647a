package cli

import (
	"os"
	"path/filepath"
	"testing"
)

// TestParseBandwidth tests bandwidth spec parsing
func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"1024", 1024, false},
		{"500K", 500 * 1024, false},
		{"10M", 10 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"2g", 2 * 1024 * 1024 * 1024, false},
		{"abc", 0, true},
		{"-5M", 0, true},
		{"M", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBandwidth(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseBandwidth(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBandwidth(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseBandwidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestValidateCompareFlags tests path validation
func TestValidateCompareFlags(t *testing.T) {
	before := t.TempDir()
	after := t.TempDir()

	t.Run("Valid", func(t *testing.T) {
		flags := &CompareFlags{Before: before, After: after}
		if err := validateCompareFlags(flags); err != nil {
			t.Errorf("validateCompareFlags() error = %v", err)
		}
	})

	t.Run("MissingBefore", func(t *testing.T) {
		flags := &CompareFlags{Before: filepath.Join(before, "absent"), After: after}
		if err := validateCompareFlags(flags); err == nil {
			t.Error("validateCompareFlags() should fail for a missing before path")
		}
	})

	t.Run("BeforeIsFile", func(t *testing.T) {
		file := filepath.Join(before, "plain.txt")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		flags := &CompareFlags{Before: file, After: after}
		if err := validateCompareFlags(flags); err == nil {
			t.Error("validateCompareFlags() should fail for a file path")
		}
	})

	t.Run("SameDirectory", func(t *testing.T) {
		flags := &CompareFlags{Before: before, After: before}
		if err := validateCompareFlags(flags); err == nil {
			t.Error("validateCompareFlags() should fail for identical paths")
		}
	})

	t.Run("Nested", func(t *testing.T) {
		nested := filepath.Join(before, "inner")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		flags := &CompareFlags{Before: before, After: nested}
		if err := validateCompareFlags(flags); err == nil {
			t.Error("validateCompareFlags() should fail for nested paths")
		}
	})
}

// TestParseBuckets tests copy bucket selection
func TestParseBuckets(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		buckets, err := parseBuckets([]string{"added", "modified", "renamed"})
		if err != nil {
			t.Fatalf("parseBuckets() error = %v", err)
		}
		if len(buckets) != 3 {
			t.Errorf("got %d buckets, want 3", len(buckets))
		}
	})

	t.Run("Deleted", func(t *testing.T) {
		if _, err := parseBuckets([]string{"deleted"}); err == nil {
			t.Error("parseBuckets() should reject the deleted bucket")
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if _, err := parseBuckets([]string{"bogus"}); err == nil {
			t.Error("parseBuckets() should reject unknown buckets")
		}
	})
}
