package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Lookup    LookupConfig    `mapstructure:"lookup"`
	Theme     ThemeConfig     `mapstructure:"theme"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contains web server configuration
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableSecurity bool   `mapstructure:"enable_security"`
}

// LookupConfig contains lookup service configuration
type LookupConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ThemeConfig contains display theme configuration
type ThemeConfig struct {
	DataDir string `mapstructure:"data_dir"`
	// SystemDark is the system dark-mode preference used when nothing is persisted
	// and no terminal background can be detected.
	SystemDark bool `mapstructure:"system_dark"`
}

// TelemetryConfig contains telemetry configuration
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ThemeStorePath returns the path of the theme database.
func (c *Config) ThemeStorePath() string {
	return filepath.Join(c.Theme.DataDir, "theme.db")
}

// Address returns the listen address of the web server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads the configuration from viper
func Load() (*Config, error) {
	cfg := &Config{}

	// Set defaults
	setDefaults()

	// Unmarshal configuration
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Post-process configuration
	if err := postProcess(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.enable_metrics", true)
	viper.SetDefault("server.enable_security", true)

	// Lookup defaults
	viper.SetDefault("lookup.endpoint", "http://jk.xn--9kq32sd94a.top/123pan/api/")
	viper.SetDefault("lookup.timeout", 0) // Transport default
	viper.SetDefault("lookup.user_agent", "share-viewer")

	// Theme defaults
	viper.SetDefault("theme.system_dark", false)

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)

	// Environment variable mappings
	_ = viper.BindEnv("lookup.endpoint", "SHARE_VIEWER_LOOKUP_ENDPOINT")
	_ = viper.BindEnv("theme.data_dir", "SHARE_VIEWER_DATA_DIR")
	_ = viper.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func postProcess(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", cfg.Server.Port)
	}

	cfg.Lookup.Endpoint = strings.TrimSpace(cfg.Lookup.Endpoint)
	if cfg.Lookup.Endpoint == "" {
		return fmt.Errorf("lookup endpoint must not be empty")
	}

	if cfg.Lookup.Timeout < 0 {
		return fmt.Errorf("lookup timeout must not be negative, got %s", cfg.Lookup.Timeout)
	}

	// Default the data directory to the user config directory
	if cfg.Theme.DataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = os.TempDir()
		}
		cfg.Theme.DataDir = filepath.Join(dir, "share-viewer")
	}

	if !filepath.IsAbs(cfg.Theme.DataDir) {
		abs, err := filepath.Abs(cfg.Theme.DataDir)
		if err != nil {
			return err
		}
		cfg.Theme.DataDir = abs
	}

	if err := os.MkdirAll(cfg.Theme.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", cfg.Theme.DataDir, err)
	}

	return nil
}
