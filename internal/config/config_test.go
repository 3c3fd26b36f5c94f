package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad_Defaults tests the zero-config path
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DataDir == "" {
		t.Error("DataDir not defaulted")
	}
	if !cfg.Sync.Auto {
		t.Error("sync.auto should default to true")
	}
	if cfg.Sync.Interval != time.Minute {
		t.Errorf("sync.interval = %v, want 1m", cfg.Sync.Interval)
	}
	if cfg.Sync.CascadeDepth != 1 {
		t.Errorf("sync.cascade_depth = %d, want 1", cfg.Sync.CascadeDepth)
	}
	if cfg.Dashboard.Port != 8799 {
		t.Errorf("dashboard.port = %d, want 8799", cfg.Dashboard.Port)
	}
	if cfg.Remote.DSN != "" {
		t.Errorf("remote.dsn = %q, want empty (local-only)", cfg.Remote.DSN)
	}
}

// TestLoad_FromFile tests explicit config file loading
func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inklet.yaml")
	content := `
data_dir: /tmp/inklet-test
remote:
  dsn: postgres://localhost/inklet
  table_prefix: app_
sync:
  auto: false
  interval: 5m
  cascade_depth: 3
dashboard:
  port: 9100
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DataDir != "/tmp/inklet-test" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
	if cfg.Remote.DSN != "postgres://localhost/inklet" {
		t.Errorf("remote.dsn = %q", cfg.Remote.DSN)
	}
	if cfg.Remote.TablePrefix != "app_" {
		t.Errorf("remote.table_prefix = %q", cfg.Remote.TablePrefix)
	}
	if cfg.Sync.Auto {
		t.Error("sync.auto = true, want false")
	}
	if cfg.Sync.Interval != 5*time.Minute {
		t.Errorf("sync.interval = %v, want 5m", cfg.Sync.Interval)
	}
	if cfg.Sync.CascadeDepth != 3 {
		t.Errorf("sync.cascade_depth = %d, want 3", cfg.Sync.CascadeDepth)
	}
	if cfg.Dashboard.Port != 9100 {
		t.Errorf("dashboard.port = %d, want 9100", cfg.Dashboard.Port)
	}
}

// TestLoad_MissingExplicitFile tests that a named but absent file errors
func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() succeeded for a missing explicit config file")
	}
}

// TestLoad_Floors tests that nonsense values are clamped
func TestLoad_Floors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inklet.yaml")
	content := `
sync:
  interval: -10s
  cascade_depth: 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Sync.Interval != time.Minute {
		t.Errorf("sync.interval = %v, want floored to 1m", cfg.Sync.Interval)
	}
	if cfg.Sync.CascadeDepth != 1 {
		t.Errorf("sync.cascade_depth = %d, want floored to 1", cfg.Sync.CascadeDepth)
	}
}

// TestLoad_EnvOverride tests INKLET_* environment precedence
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("INKLET_REMOTE_DSN", "postgres://env-host/inklet")
	t.Setenv("INKLET_DASHBOARD_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Remote.DSN != "postgres://env-host/inklet" {
		t.Errorf("remote.dsn = %q, want env value", cfg.Remote.DSN)
	}
	if cfg.Dashboard.Port != 9999 {
		t.Errorf("dashboard.port = %d, want 9999", cfg.Dashboard.Port)
	}
}

// TestPaths tests derived file locations
func TestPaths(t *testing.T) {
	cfg := &Config{DataDir: "/data/inklet"}

	if got := cfg.StorePath(); got != filepath.Join("/data/inklet", "inklet.db") {
		t.Errorf("StorePath() = %q", got)
	}
	if got := cfg.DaemonLogPath(); got != filepath.Join("/data/inklet", "daemon.log") {
		t.Errorf("DaemonLogPath() = %q", got)
	}
}
