// Package config loads inklet's configuration from a config file,
// environment variables (INKLET_*), and defaults, in that precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved configuration for a session.
type Config struct {
	// DataDir holds the local store database and daemon logs.
	DataDir string `mapstructure:"data_dir"`

	Remote    RemoteConfig    `mapstructure:"remote"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// RemoteConfig describes the remote store. An empty DSN means
// local-only operation.
type RemoteConfig struct {
	DSN         string `mapstructure:"dsn"`
	TablePrefix string `mapstructure:"table_prefix"`
}

// SyncConfig controls the daemon's automatic trigger.
type SyncConfig struct {
	Auto          bool          `mapstructure:"auto"`
	Interval      time.Duration `mapstructure:"interval"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	// Guest marks a local-only session; automatic syncs are suppressed.
	Guest bool `mapstructure:"guest"`
	// CascadeDepth for folder soft-deletes (1 = direct documents only).
	CascadeDepth int `mapstructure:"cascade_depth"`
}

// DashboardConfig controls the status dashboard server.
type DashboardConfig struct {
	Port int `mapstructure:"port"`
}

// DefaultDataDir returns ~/.inklet, falling back to .inklet in the
// working directory when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inklet"
	}
	return filepath.Join(home, ".inklet")
}

// Load resolves the configuration. An empty path searches the data dir
// and working directory for inklet.yaml; a missing config file is fine
// and yields defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("remote.dsn", "")
	v.SetDefault("remote.table_prefix", "")
	v.SetDefault("sync.auto", true)
	v.SetDefault("sync.interval", time.Minute)
	v.SetDefault("sync.probe_interval", 15*time.Second)
	v.SetDefault("sync.guest", false)
	v.SetDefault("sync.cascade_depth", 1)
	v.SetDefault("dashboard.port", 8799)

	v.SetEnvPrefix("INKLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("inklet")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDataDir())
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = time.Minute
	}
	if cfg.Sync.CascadeDepth < 1 {
		cfg.Sync.CascadeDepth = 1
	}

	return &cfg, nil
}

// StorePath returns the local store database path under the data dir.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "inklet.db")
}

// DaemonLogPath returns the daemon's rotating log file path.
func (c *Config) DaemonLogPath() string {
	return filepath.Join(c.DataDir, "daemon.log")
}
