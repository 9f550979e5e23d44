package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"github.com/banshee-data/roomscan/internal/fsutil"
	"github.com/banshee-data/roomscan/internal/xr"
)

// DefaultConfigPath is the path to the canonical scan defaults file.
const DefaultConfigPath = "config/scan.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Defaults for fields left unset.
const (
	DefaultMaxResultCount     = 100
	DefaultQueryTimeout       = time.Duration(0)
	DefaultStorageLocation    = xr.StorageLocationLocal
	DefaultPendingMaxAttempts = 1
	DefaultPendingBackoff     = 250 * time.Millisecond
)

// ScanConfig holds the tunables of a query cycle and of the scanner that
// schedules it. Every field is optional; the Get* methods supply defaults.
type ScanConfig struct {
	// Query params
	MaxResultCount  *int    `json:"max_result_count,omitempty"`
	QueryTimeout    *string `json:"query_timeout,omitempty"`    // duration string like "0s"
	StorageLocation *string `json:"storage_location,omitempty"` // "local" or "cloud"

	// Retrieval params
	RetryOnGrowth *bool `json:"retry_on_growth,omitempty"`

	// Scanner params
	PendingMaxAttempts *int    `json:"pending_max_attempts,omitempty"`
	PendingBackoff     *string `json:"pending_backoff,omitempty"` // duration string like "250ms"
}

func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyScanConfig returns a ScanConfig with all fields set to nil.
func EmptyScanConfig() *ScanConfig {
	return &ScanConfig{}
}

// DefaultScanConfig returns a ScanConfig with every field set to its default.
func DefaultScanConfig() *ScanConfig {
	return &ScanConfig{
		MaxResultCount:     ptrInt(DefaultMaxResultCount),
		QueryTimeout:       ptrString(DefaultQueryTimeout.String()),
		StorageLocation:    ptrString(DefaultStorageLocation.String()),
		RetryOnGrowth:      ptrBool(false),
		PendingMaxAttempts: ptrInt(DefaultPendingMaxAttempts),
		PendingBackoff:     ptrString(DefaultPendingBackoff.String()),
	}
}

// LoadScanConfig loads a ScanConfig from a JSON file. Comments and trailing
// commas are accepted. Fields omitted from the file keep their defaults, so
// partial configs are safe.
func LoadScanConfig(path string) (*ScanConfig, error) {
	return LoadScanConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadScanConfigFS is LoadScanConfig reading through fsys.
func LoadScanConfigFS(fsys fsutil.FileSystem, path string) (*ScanConfig, error) {
	if ext := filepath.Ext(path); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	data, err := fsutil.ReadFileLimit(fsys, path, maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return ParseScanConfig(data)
}

// ParseScanConfig parses and validates a ScanConfig from JSON or HuJSON.
func ParseScanConfig(data []byte) (*ScanConfig, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	cfg := EmptyScanConfig()
	if err := json.Unmarshal(std, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. It panics if the file
// cannot be loaded and is intended for test setup.
func MustLoadDefaultConfig() *ScanConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadScanConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ScanConfig) Validate() error {
	if c.MaxResultCount != nil {
		if *c.MaxResultCount < 1 || int64(*c.MaxResultCount) > int64(^uint32(0)) {
			return fmt.Errorf("max_result_count must be a positive 32-bit count, got %d", *c.MaxResultCount)
		}
	}

	if c.QueryTimeout != nil && *c.QueryTimeout != "" {
		d, err := time.ParseDuration(*c.QueryTimeout)
		if err != nil {
			return fmt.Errorf("invalid query_timeout '%s': %w", *c.QueryTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("query_timeout must be non-negative, got %s", d)
		}
	}

	if c.StorageLocation != nil && *c.StorageLocation != "" {
		if _, err := xr.ParseStorageLocation(*c.StorageLocation); err != nil {
			return fmt.Errorf("invalid storage_location: %w", err)
		}
	}

	if c.PendingMaxAttempts != nil && *c.PendingMaxAttempts < 1 {
		return fmt.Errorf("pending_max_attempts must be at least 1, got %d", *c.PendingMaxAttempts)
	}

	if c.PendingBackoff != nil && *c.PendingBackoff != "" {
		d, err := time.ParseDuration(*c.PendingBackoff)
		if err != nil {
			return fmt.Errorf("invalid pending_backoff '%s': %w", *c.PendingBackoff, err)
		}
		if d < 0 {
			return fmt.Errorf("pending_backoff must be non-negative, got %s", d)
		}
	}

	return nil
}

// GetMaxResultCount returns the max_result_count value or the default.
func (c *ScanConfig) GetMaxResultCount() uint32 {
	if c.MaxResultCount == nil || *c.MaxResultCount < 1 {
		return DefaultMaxResultCount
	}
	return uint32(*c.MaxResultCount)
}

// GetQueryTimeout parses and returns the QueryTimeout as a time.Duration.
func (c *ScanConfig) GetQueryTimeout() time.Duration {
	return durationOr(c.QueryTimeout, DefaultQueryTimeout)
}

// GetStorageLocation returns the storage_location value or the default.
func (c *ScanConfig) GetStorageLocation() xr.StorageLocation {
	if c.StorageLocation == nil || *c.StorageLocation == "" {
		return DefaultStorageLocation
	}
	loc, err := xr.ParseStorageLocation(*c.StorageLocation)
	if err != nil {
		return DefaultStorageLocation
	}
	return loc
}

// GetRetryOnGrowth returns the retry_on_growth value or the default.
func (c *ScanConfig) GetRetryOnGrowth() bool {
	if c.RetryOnGrowth == nil {
		return false // default: surface the race to the caller
	}
	return *c.RetryOnGrowth
}

// GetPendingMaxAttempts returns the pending_max_attempts value or the default.
func (c *ScanConfig) GetPendingMaxAttempts() int {
	if c.PendingMaxAttempts == nil || *c.PendingMaxAttempts < 1 {
		return DefaultPendingMaxAttempts
	}
	return *c.PendingMaxAttempts
}

// GetPendingBackoff parses and returns the PendingBackoff as a time.Duration.
func (c *ScanConfig) GetPendingBackoff() time.Duration {
	return durationOr(c.PendingBackoff, DefaultPendingBackoff)
}

func durationOr(s *string, def time.Duration) time.Duration {
	if s == nil || *s == "" {
		return def
	}
	d, err := time.ParseDuration(*s)
	if err != nil || d < 0 {
		return def // default on parse error
	}
	return d
}
