package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mtakahara/docdiff/internal/platform"
	"github.com/mtakahara/docdiff/pkg/config"
	"github.com/mtakahara/docdiff/pkg/models"
)

// prepareRun validates the flags, loads configuration, applies flag
// overrides and builds the comparison operation.
func prepareRun(flags *CompareFlags) (*config.Config, *models.CompareOperation, error) {
	if err := validateCompareFlags(flags); err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlagsToConfig(cfg, flags); err != nil {
		return nil, nil, err
	}

	op, err := createCompareOperation(cfg, flags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create compare operation: %w", err)
	}

	return cfg, op, nil
}

// validateCompareFlags checks the before/after paths.
func validateCompareFlags(flags *CompareFlags) error {
	for _, side := range []struct {
		label string
		path  string
	}{
		{"before", flags.Before},
		{"after", flags.After},
	} {
		if err := platform.ValidatePath(side.path); err != nil {
			return fmt.Errorf("invalid %s path: %w", side.label, err)
		}
		info, err := os.Stat(platform.NormalizePath(side.path))
		if os.IsNotExist(err) {
			return fmt.Errorf("%s path does not exist: %s", side.label, side.path)
		}
		if err != nil {
			return fmt.Errorf("failed to access %s path: %w", side.label, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s path is not a directory: %s", side.label, side.path)
		}
	}

	beforeAbs, err := filepath.Abs(flags.Before)
	if err != nil {
		return fmt.Errorf("failed to resolve before path: %w", err)
	}
	afterAbs, err := filepath.Abs(flags.After)
	if err != nil {
		return fmt.Errorf("failed to resolve after path: %w", err)
	}

	if beforeAbs == afterAbs {
		return fmt.Errorf("before and after cannot be the same directory: %s", beforeAbs)
	}
	if strings.HasPrefix(afterAbs, beforeAbs+string(filepath.Separator)) {
		return fmt.Errorf("after directory cannot be inside the before directory")
	}
	if strings.HasPrefix(beforeAbs, afterAbs+string(filepath.Separator)) {
		return fmt.Errorf("before directory cannot be inside the after directory")
	}

	return nil
}

// loadConfig loads configuration from the file flag or the default
// location.
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags.
func applyFlagsToConfig(cfg *config.Config, flags *CompareFlags) error {
	if flags.Parallel > 0 {
		cfg.Performance.MaxWorkers = flags.Parallel
	}

	if flags.Bandwidth != "" {
		limit, err := parseBandwidth(flags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Performance.BandwidthLimit = limit
	}

	if flags.NoContent {
		cfg.Compare.ContentCompare = false
	}

	if len(flags.Exclude) > 0 {
		cfg.Exclude = flags.Exclude
	}

	if flags.Output != "" {
		cfg.Output.Format = flags.Output
	}

	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}

	return cfg.Validate()
}

// createCompareOperation builds the operation from the merged config.
func createCompareOperation(cfg *config.Config, flags *CompareFlags) (*models.CompareOperation, error) {
	op := &models.CompareOperation{
		ID:              uuid.New().String(),
		BeforePath:      flags.Before,
		AfterPath:       flags.After,
		ExcludePatterns: cfg.Exclude,
		MaxWorkers:      cfg.Performance.MaxWorkers,
		BufferSize:      cfg.Performance.BufferSize,
		BandwidthLimit:  cfg.Performance.BandwidthLimit,
		ContentCompare:  cfg.Compare.ContentCompare,
		CreatedAt:       time.Now(),
	}

	if err := op.Validate(); err != nil {
		return nil, err
	}

	return op, nil
}

// parseBandwidth parses a human bandwidth spec like "10M" or "1G" into
// bytes per second. A bare number is taken as bytes.
func parseBandwidth(s string) (int64, error) {
	spec := strings.TrimSpace(s)
	if spec == "" {
		return 0, nil
	}

	multiplier := int64(1)
	switch strings.ToUpper(spec[len(spec)-1:]) {
	case "K":
		multiplier = 1024
		spec = spec[:len(spec)-1]
	case "M":
		multiplier = 1024 * 1024
		spec = spec[:len(spec)-1]
	case "G":
		multiplier = 1024 * 1024 * 1024
		spec = spec[:len(spec)-1]
	}

	value, err := strconv.ParseInt(spec, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit %q (use e.g. \"500K\", \"10M\", \"1G\")", s)
	}

	return value * multiplier, nil
}
