package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Permissions  uint32
	RelativePath string
}

// Backend defines the interface for filesystem access.
// The comparison engine only ever reads through it; the copier also writes.
// Local directories and mounted network shares use the same implementation.
type Backend interface {
	// List returns all files under the specified directory recursively.
	// Entries below the root that cannot be read are skipped; an
	// unreadable root is an error.
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites a file with the given content,
	// creating parent directories as needed.
	// If metadata is provided, the modification time is preserved.
	Write(ctx context.Context, path string, reader io.Reader, size int64, metadata *FileInfo) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents.
	// It is idempotent and safe under concurrent creation of the same path.
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
