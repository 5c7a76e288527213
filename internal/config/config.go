// Package config provides configuration loading for projectdeck.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then PROJECTDECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the complete projectdeck configuration.
type Config struct {
	Settings SettingsConfig `koanf:"settings"`
	Scan     ScanConfig     `koanf:"scan"`
	Watch    WatchConfig    `koanf:"watch"`
	Open     OpenConfig     `koanf:"open"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// SettingsConfig locates the settings document and the keys inside it.
type SettingsConfig struct {
	Path        string `koanf:"path"`
	ProjectsKey string `koanf:"projects_key"`
	FaviconsKey string `koanf:"favicons_key"`
}

// ScanConfig bounds folder discovery.
type ScanConfig struct {
	MaxDepth int `koanf:"max_depth"`
}

// WatchConfig controls how external settings edits are coalesced.
type WatchConfig struct {
	MinInterval Duration `koanf:"min_interval"`
	Burst       int      `koanf:"burst"`
}

// OpenConfig holds the command used to open a project folder.
type OpenConfig struct {
	Command string `koanf:"command"`
}

// LoggingConfig is the user-facing subset of logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

const (
	defaultProjectsKey = "projectDeck.projects"
	defaultFaviconsKey = "projectDeck.fetchFavicons"
	defaultMaxDepth    = 4
	maxScanDepth       = 16
	defaultInterval    = 100 * time.Millisecond
	defaultOpenCommand = "code"
)

// Defaults returns the configuration used when no file or env override is
// present.
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	if p, err := ExpandHome(cfg.Settings.Path); err == nil {
		cfg.Settings.Path = p
	}
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Settings.ProjectsKey == "" || c.Settings.FaviconsKey == "" {
		return errors.New("settings keys cannot be empty")
	}
	if c.Settings.ProjectsKey == c.Settings.FaviconsKey {
		return fmt.Errorf("settings keys must differ, both are %q", c.Settings.ProjectsKey)
	}
	if c.Scan.MaxDepth < 0 || c.Scan.MaxDepth > maxScanDepth {
		return fmt.Errorf("scan max_depth must be between 0 and %d, got %d", maxScanDepth, c.Scan.MaxDepth)
	}
	if c.Watch.Burst < 1 {
		return fmt.Errorf("watch burst must be >= 1, got %d", c.Watch.Burst)
	}
	if strings.TrimSpace(c.Open.Command) == "" {
		return errors.New("open command cannot be empty")
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
