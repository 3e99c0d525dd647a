package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

// TestNewLimiter tests the limiter constructor
func TestNewLimiter(t *testing.T) {
	t.Run("ValidRate", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for a valid rate")
		}
		if limiter.bytesPerSecond != 1024*1024 {
			t.Errorf("bytesPerSecond = %d, want %d", limiter.bytesPerSecond, 1024*1024)
		}
	})

	t.Run("ZeroRate", func(t *testing.T) {
		if NewLimiter(0) != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
	})

	t.Run("NegativeRate", func(t *testing.T) {
		if NewLimiter(-100) != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallRateBucketFloor", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if limiter.bucketSize != 65536 {
			t.Errorf("bucketSize = %d, want the 64KB floor", limiter.bucketSize)
		}
	})
}

// TestReaderPassthrough tests that a nil limiter leaves the reader alone
func TestReaderPassthrough(t *testing.T) {
	original := strings.NewReader("data")
	wrapped := NewReader(context.Background(), original, nil)
	if wrapped != io.Reader(original) {
		t.Error("NewReader() with a nil limiter should return the reader unchanged")
	}
}

// TestReaderDeliversAllData tests that limiting never corrupts the stream
func TestReaderDeliversAllData(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 1024) // 8KB

	// A generous limit so the test stays fast.
	limiter := NewLimiter(10 * 1024 * 1024)
	reader := NewReader(context.Background(), bytes.NewReader(payload), limiter)

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("read %d bytes, want %d identical bytes", len(got), len(payload))
	}
}

// TestReaderThrottles tests that reads beyond the burst take time
func TestReaderThrottles(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-sensitive")
	}

	// 64KB bucket floor starts full; reading 96KB at 64KB/s needs
	// roughly half a second for the second 32KB.
	payload := make([]byte, 96*1024)
	limiter := NewLimiter(64 * 1024)
	reader := NewReader(context.Background(), bytes.NewReader(payload), limiter)

	start := time.Now()
	if _, err := io.ReadAll(reader); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 200*time.Millisecond {
		t.Errorf("96KB at 64KB/s finished in %v, expected throttling", elapsed)
	}
}

// TestReaderCancellation tests that a cancelled context stops reads
func TestReaderCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	limiter := NewLimiter(1024)
	reader := NewReader(ctx, strings.NewReader("data"), limiter)

	buf := make([]byte, 4)
	if _, err := reader.Read(buf); err == nil {
		t.Error("Read() should fail with a cancelled context")
	}
}

// TestReadCloser tests the closing wrapper
func TestReadCloser(t *testing.T) {
	t.Run("NilLimiterPassthrough", func(t *testing.T) {
		rc := io.NopCloser(strings.NewReader("data"))
		if NewReadCloser(context.Background(), rc, nil) != rc {
			t.Error("NewReadCloser() with a nil limiter should return the ReadCloser unchanged")
		}
	})

	t.Run("CloseDelegates", func(t *testing.T) {
		closed := false
		rc := &trackingCloser{Reader: strings.NewReader("data"), onClose: func() { closed = true }}

		limited := NewReadCloser(context.Background(), rc, NewLimiter(1024*1024))
		if _, err := io.ReadAll(limited); err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if err := limited.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !closed {
			t.Error("Close() did not reach the wrapped ReadCloser")
		}
	})
}

type trackingCloser struct {
	io.Reader
	onClose func()
}

func (c *trackingCloser) Close() error {
	c.onClose()
	return nil
}
