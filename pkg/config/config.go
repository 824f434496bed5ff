// Package config handles loading and saving casedesk configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/casedesk/config.yaml
//   - Data:    ~/.local/share/casedesk/ (local SQLite database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "casedesk"

// Screens that can open first.
var Screens = []string{"cases", "watchlist", "keywords"}

// BackendConfig locates the case service.
type BackendConfig struct {
	URL     string `yaml:"url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"` // Go duration, e.g. 10s
}

// SQLiteConfig locates the local database used when source is sqlite.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultScreen  string `yaml:"default_screen,omitempty"`  // cases, watchlist, keywords
	SearchDebounce string `yaml:"search_debounce,omitempty"` // Go duration, e.g. 300ms
	PageSize       int    `yaml:"page_size,omitempty"`       // Rows per page, 0 fits the terminal
}

// Config is the top-level configuration for casedesk.
type Config struct {
	Source  string        `yaml:"source,omitempty"` // http or sqlite
	Backend BackendConfig `yaml:"backend,omitempty"`
	SQLite  SQLiteConfig  `yaml:"sqlite,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Source: "http",
		Backend: BackendConfig{
			URL:     "http://localhost:8000",
			Timeout: "10s",
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(DataDir(), "casedesk.db"),
		},
		UI: UIConfig{
			DefaultScreen:  "cases",
			SearchDebounce: "300ms",
		},
	}
}

// ConfigDir returns the XDG config directory for casedesk.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG data directory for casedesk.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. Keys missing from the
// file keep their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.SQLite.Path = expandHome(cfg.SQLite.Path)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks the source kind, the screen name and the durations.
func (c Config) Validate() error {
	switch strings.ToLower(c.Source) {
	case "", "http", "sqlite":
	default:
		return fmt.Errorf("source %q: want http or sqlite", c.Source)
	}
	if c.UI.DefaultScreen != "" && !isScreen(c.UI.DefaultScreen) {
		return fmt.Errorf("ui.default_screen %q: want one of %s", c.UI.DefaultScreen, strings.Join(Screens, ", "))
	}
	if c.UI.PageSize < 0 {
		return fmt.Errorf("ui.page_size %d: must not be negative", c.UI.PageSize)
	}
	if _, err := c.BackendTimeout(); err != nil {
		return err
	}
	if _, err := c.SearchDebounce(); err != nil {
		return err
	}
	return nil
}

// BackendTimeout returns the per-request timeout. Empty means no limit.
func (c Config) BackendTimeout() (time.Duration, error) {
	return parseDuration("backend.timeout", c.Backend.Timeout)
}

// SearchDebounce returns the search quiescence window. Empty means the
// table default.
func (c Config) SearchDebounce() (time.Duration, error) {
	return parseDuration("ui.search_debounce", c.UI.SearchDebounce)
}

func parseDuration(key, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s %s: must not be negative", key, s)
	}
	return d, nil
}

func isScreen(name string) bool {
	for _, s := range Screens {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// ResolvedSQLitePath returns the database path with ~ expanded.
func (c Config) ResolvedSQLitePath() string {
	return expandHome(c.SQLite.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
