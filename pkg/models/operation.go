package models

import (
	"time"
)

// CompareOperation represents one comparison run configuration.
type CompareOperation struct {
	ID              string
	BeforePath      string
	AfterPath       string
	ExcludePatterns []string
	MaxWorkers      int
	BufferSize      int
	BandwidthLimit  int64 // bytes per second, 0 = unlimited
	ContentCompare  bool  // enable extracted-content comparison for document kinds
	CreatedAt       time.Time
}

// Validate checks if the operation configuration is valid.
func (op *CompareOperation) Validate() error {
	if op.BeforePath == "" {
		return &ValidationError{Field: "BeforePath", Message: "before path is required"}
	}
	if op.AfterPath == "" {
		return &ValidationError{Field: "AfterPath", Message: "after path is required"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
