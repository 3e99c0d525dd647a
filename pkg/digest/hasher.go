// Package digest computes the raw and content digests the classifier
// compares. SHA-256 is used for both: equality testing needs collision
// resistance at directory-tree scale, not an adversarial threat model.
package digest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"
)

// ReaderWrapper wraps a reader, e.g. for bandwidth limiting.
type ReaderWrapper func(io.Reader) io.Reader

// Hasher computes streaming SHA-256 digests with pooled buffers.
// It is safe for concurrent use.
type Hasher struct {
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewHasher creates a hasher with the given read buffer size.
func NewHasher(bufferSize int) *Hasher {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &Hasher{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting).
func (h *Hasher) SetReaderWrapper(wrapper ReaderWrapper) {
	h.readerWrapper = wrapper
}

// File computes the digest of a file's raw bytes.
func (h *Hasher) File(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return h.Reader(ctx, f)
}

// Reader computes the digest of everything the reader yields.
func (h *Hasher) Reader(ctx context.Context, r io.Reader) (string, error) {
	if h.readerWrapper != nil {
		r = h.readerWrapper(r)
	}

	hasher := sha256.New()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := r.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Sum returns the digest of a string. Content hashes are produced by
// applying Sum to extractor-normalized text.
func Sum(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}
