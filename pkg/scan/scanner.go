// Package scan enumerates a directory tree into the flat, ordered set of
// file entries the classifier consumes.
package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mtakahara/docdiff/pkg/models"
	"github.com/mtakahara/docdiff/pkg/storage"
)

// FatalError indicates the scan root itself is missing or inaccessible.
// Unlike per-file failures, it aborts the whole comparison.
type FatalError struct {
	Root string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Scanner enumerates directory trees into FileEntry sets.
type Scanner struct {
	excludes []string
}

// New creates a scanner. Exclude patterns use doublestar glob syntax and
// are matched against the slash-separated relative path and against each
// of its segments.
func New(excludes []string) *Scanner {
	return &Scanner{excludes: excludes}
}

// Scan recursively enumerates root and returns its files sorted by
// relative path. The sort order is what makes downstream classification
// deterministic, including the ordinal rename pairing.
func (s *Scanner) Scan(ctx context.Context, root string) ([]models.FileEntry, error) {
	backend, err := storage.NewLocal(root)
	if err != nil {
		return nil, &FatalError{Root: root, Err: err}
	}
	defer backend.Close()

	infos, err := backend.List(ctx, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FatalError{Root: root, Err: err}
	}

	entries := make([]models.FileEntry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir {
			continue
		}
		if s.excluded(info.RelativePath) {
			continue
		}
		entries = append(entries, models.FileEntry{
			RelativePath: info.RelativePath,
			AbsolutePath: info.Path,
			Size:         info.Size,
			ModTime:      info.ModTime,
			Kind:         models.KindFromPath(info.RelativePath),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelativePath < entries[j].RelativePath
	})

	return entries, nil
}

// excluded reports whether the relative path matches any exclude pattern.
func (s *Scanner) excluded(relPath string) bool {
	if len(s.excludes) == 0 {
		return false
	}

	slashPath := filepath.ToSlash(relPath)
	segments := strings.Split(slashPath, "/")

	for _, pattern := range s.excludes {
		if pattern == "" {
			continue
		}
		if ok, err := doublestar.Match(pattern, slashPath); err == nil && ok {
			return true
		}
		// A pattern matching any path segment excludes the whole
		// subtree, so ".git" drops everything under a .git directory.
		for _, segment := range segments {
			if ok, err := doublestar.Match(pattern, segment); err == nil && ok {
				return true
			}
		}
	}
	return false
}
