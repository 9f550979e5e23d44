package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/roomscan/internal/fsutil"
	"github.com/banshee-data/roomscan/internal/xr"
)

func TestDefaultScanConfig(t *testing.T) {
	cfg := DefaultScanConfig()

	if cfg.MaxResultCount == nil || *cfg.MaxResultCount != 100 {
		t.Errorf("Expected MaxResultCount 100, got %v", cfg.MaxResultCount)
	}
	if cfg.QueryTimeout == nil || *cfg.QueryTimeout != "0s" {
		t.Errorf("Expected QueryTimeout '0s', got %v", cfg.QueryTimeout)
	}
	if cfg.StorageLocation == nil || *cfg.StorageLocation != "local" {
		t.Errorf("Expected StorageLocation 'local', got %v", cfg.StorageLocation)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	if cfg.GetMaxResultCount() != 100 {
		t.Errorf("GetMaxResultCount() = %d, want 100", cfg.GetMaxResultCount())
	}
	if cfg.GetPendingBackoff() != 250*time.Millisecond {
		t.Errorf("GetPendingBackoff() = %v, want 250ms", cfg.GetPendingBackoff())
	}
}

func TestEmptyScanConfigUsesDefaults(t *testing.T) {
	cfg := EmptyScanConfig()

	if got := cfg.GetMaxResultCount(); got != DefaultMaxResultCount {
		t.Errorf("GetMaxResultCount() = %d, want %d", got, DefaultMaxResultCount)
	}
	if got := cfg.GetQueryTimeout(); got != 0 {
		t.Errorf("GetQueryTimeout() = %v, want 0", got)
	}
	if got := cfg.GetStorageLocation(); got != xr.StorageLocationLocal {
		t.Errorf("GetStorageLocation() = %v, want local", got)
	}
	if cfg.GetRetryOnGrowth() {
		t.Error("GetRetryOnGrowth() = true, want false")
	}
	if got := cfg.GetPendingMaxAttempts(); got != 1 {
		t.Errorf("GetPendingMaxAttempts() = %d, want 1", got)
	}
	if got := cfg.GetPendingBackoff(); got != DefaultPendingBackoff {
		t.Errorf("GetPendingBackoff() = %v, want %v", got, DefaultPendingBackoff)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	want := DefaultScanConfig()

	if cfg.GetMaxResultCount() != want.GetMaxResultCount() {
		t.Errorf("max_result_count = %d, want %d", cfg.GetMaxResultCount(), want.GetMaxResultCount())
	}
	if cfg.GetStorageLocation() != want.GetStorageLocation() {
		t.Errorf("storage_location = %v, want %v", cfg.GetStorageLocation(), want.GetStorageLocation())
	}
	if cfg.GetPendingBackoff() != want.GetPendingBackoff() {
		t.Errorf("pending_backoff = %v, want %v", cfg.GetPendingBackoff(), want.GetPendingBackoff())
	}
}

func TestLoadScanConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "scan.json")

	testJSON := `{
  // cloud anchors only
  "storage_location": "cloud",
  "max_result_count": 25,
  "query_timeout": "2s",
  "retry_on_growth": true,
  "pending_max_attempts": 4,
  "pending_backoff": "1s", // trailing comma is fine
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadScanConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetStorageLocation(); got != xr.StorageLocationCloud {
		t.Errorf("GetStorageLocation() = %v, want cloud", got)
	}
	if got := cfg.GetMaxResultCount(); got != 25 {
		t.Errorf("GetMaxResultCount() = %d, want 25", got)
	}
	if got := cfg.GetQueryTimeout(); got != 2*time.Second {
		t.Errorf("GetQueryTimeout() = %v, want 2s", got)
	}
	if !cfg.GetRetryOnGrowth() {
		t.Error("GetRetryOnGrowth() = false, want true")
	}
	if got := cfg.GetPendingMaxAttempts(); got != 4 {
		t.Errorf("GetPendingMaxAttempts() = %d, want 4", got)
	}
	if got := cfg.GetPendingBackoff(); got != time.Second {
		t.Errorf("GetPendingBackoff() = %v, want 1s", got)
	}
}

func TestLoadScanConfigPartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(configPath, []byte(`{"retry_on_growth": true}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadScanConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.MaxResultCount != nil {
		t.Errorf("Expected MaxResultCount unset, got %v", *cfg.MaxResultCount)
	}
	if got := cfg.GetMaxResultCount(); got != 100 {
		t.Errorf("GetMaxResultCount() = %d, want 100", got)
	}
}

func TestLoadScanConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", "/nonexistent/path/to/config.json", "failed to stat"},
		{"wrong extension", write("scan.yaml", "{}"), ".json extension"},
		{"invalid json", write("broken.json", `{"max_result_count": `), "failed to parse"},
		{"wrong type", write("type.json", `{"max_result_count": "many"}`), "failed to parse"},
		{"invalid value", write("value.json", `{"storage_location": "attic"}`), "invalid configuration"},
		{"too large", write("large.json", `{"x":"`+strings.Repeat("a", maxFileSize)+`"}`), "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScanConfig(tt.path)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *ScanConfig
		wantErr bool
	}{
		{"valid config", DefaultScanConfig(), false},
		{"empty config is valid", &ScanConfig{}, false},
		{"zero max result count", &ScanConfig{MaxResultCount: ptrInt(0)}, true},
		{"negative max result count", &ScanConfig{MaxResultCount: ptrInt(-5)}, true},
		{"invalid query timeout", &ScanConfig{QueryTimeout: ptrString("soon")}, true},
		{"negative query timeout", &ScanConfig{QueryTimeout: ptrString("-1s")}, true},
		{"unknown storage location", &ScanConfig{StorageLocation: ptrString("attic")}, true},
		{"storage location is case insensitive", &ScanConfig{StorageLocation: ptrString("Cloud")}, false},
		{"zero pending attempts", &ScanConfig{PendingMaxAttempts: ptrInt(0)}, true},
		{"invalid pending backoff", &ScanConfig{PendingBackoff: ptrString("later")}, true},
		{"retry on growth", &ScanConfig{RetryOnGrowth: ptrBool(true)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetPendingBackoff(t *testing.T) {
	tests := []struct {
		name string
		cfg  *ScanConfig
		want time.Duration
	}{
		{"explicit", &ScanConfig{PendingBackoff: ptrString("2s")}, 2 * time.Second},
		{"empty string", &ScanConfig{PendingBackoff: ptrString("")}, DefaultPendingBackoff},
		{"unparseable", &ScanConfig{PendingBackoff: ptrString("bad")}, DefaultPendingBackoff},
		{"nil", &ScanConfig{}, DefaultPendingBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.GetPendingBackoff(); got != tt.want {
				t.Errorf("GetPendingBackoff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadScanConfigFS(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.WriteFile("/etc/roomscan/scan.json", []byte(`{"pending_max_attempts": 3}`))

	cfg, err := LoadScanConfigFS(fsys, "/etc/roomscan/scan.json")
	if err != nil {
		t.Fatalf("LoadScanConfigFS() error = %v", err)
	}
	if got := cfg.GetPendingMaxAttempts(); got != 3 {
		t.Errorf("GetPendingMaxAttempts() = %d, want 3", got)
	}

	if _, err := LoadScanConfigFS(fsys, "/etc/roomscan/other.json"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}
