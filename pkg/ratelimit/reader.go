// Package ratelimit provides token-bucket bandwidth limiting for readers.
// A single Limiter can be shared across readers so that hashing and
// copying together stay under one global budget.
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// Limiter is a token bucket measured in bytes. A nil Limiter means no
// limiting; constructors and wrappers all accept nil.
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastRefill time.Time
}

// NewLimiter creates a limiter for the given rate. Non-positive rates
// return nil, which disables limiting.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// One second of burst, with a 64KB floor so small limits still
	// allow full buffer reads.
	bucketSize := bytesPerSecond
	if bucketSize < 65536 {
		bucketSize = 65536
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastRefill:     time.Now(),
	}
}

// wait blocks until the bucket holds at least needed tokens.
func (l *Limiter) wait(needed int64) {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= needed {
			l.mu.Unlock()
			return
		}
		deficit := needed - l.tokens
		l.mu.Unlock()

		sleep := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if sleep < time.Millisecond {
			sleep = time.Millisecond
		}
		time.Sleep(sleep)
	}
}

// refill credits tokens for elapsed time. Caller holds the lock.
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill)
	credit := int64(float64(elapsed) / float64(time.Second) * float64(l.bytesPerSecond))
	if credit > 0 {
		l.tokens += credit
		if l.tokens > l.bucketSize {
			l.tokens = l.bucketSize
		}
		l.lastRefill = now
	}
}

// consume debits tokens after a read.
func (l *Limiter) consume(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens -= n
	if l.tokens < 0 {
		l.tokens = 0
	}
}

// Reader applies a Limiter to an io.Reader.
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps the reader with the limiter. A nil limiter returns
// the reader unchanged.
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{reader: reader, limiter: limiter, ctx: ctx}
}

// Read blocks until the bucket covers the read, then reads at most one
// bucket's worth of bytes.
func (r *Reader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	toRead := len(p)
	if toRead > int(r.limiter.bucketSize) {
		toRead = int(r.limiter.bucketSize)
	}
	r.limiter.wait(int64(toRead))

	n, err := r.reader.Read(p[:toRead])
	if n > 0 {
		r.limiter.consume(int64(n))
	}
	return n, err
}

// ReadCloser applies a Limiter to an io.ReadCloser.
type ReadCloser struct {
	Reader
	closer io.Closer
}

// NewReadCloser wraps the ReadCloser with the limiter. A nil limiter
// returns it unchanged.
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{
		Reader: Reader{reader: rc, limiter: limiter, ctx: ctx},
		closer: rc,
	}
}

// Close closes the wrapped reader.
func (rc *ReadCloser) Close() error {
	return rc.closer.Close()
}
