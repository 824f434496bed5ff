package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source != "http" {
		t.Errorf("expected default source 'http', got %q", cfg.Source)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("expected default backend url, got %q", cfg.Backend.URL)
	}
	if cfg.UI.DefaultScreen != "cases" {
		t.Errorf("expected default screen 'cases', got %q", cfg.UI.DefaultScreen)
	}
	if d, err := cfg.SearchDebounce(); err != nil || d != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %v (%v)", d, err)
	}
	if d, err := cfg.BackendTimeout(); err != nil || d != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v (%v)", d, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.DefaultScreen != "cases" {
		t.Errorf("expected default config, got screen %q", cfg.UI.DefaultScreen)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
source: sqlite
backend:
  url: https://fraud.example.com
  timeout: 5s
sqlite:
  path: ~/review/cases.db
ui:
  default_screen: watchlist
  search_debounce: 150ms
  page_size: 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source != "sqlite" {
		t.Errorf("expected source 'sqlite', got %q", cfg.Source)
	}
	if cfg.Backend.URL != "https://fraud.example.com" {
		t.Errorf("expected backend url, got %q", cfg.Backend.URL)
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "review/cases.db"); cfg.SQLite.Path != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.SQLite.Path)
	}
	if cfg.UI.DefaultScreen != "watchlist" {
		t.Errorf("expected default_screen 'watchlist', got %q", cfg.UI.DefaultScreen)
	}
	if d, _ := cfg.SearchDebounce(); d != 150*time.Millisecond {
		t.Errorf("expected 150ms debounce, got %v", d)
	}
	if cfg.UI.PageSize != 25 {
		t.Errorf("expected page_size 25, got %d", cfg.UI.PageSize)
	}
}

func TestLoadFrom_PartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  page_size: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.URL != "http://localhost:8000" || cfg.UI.DefaultScreen != "cases" {
		t.Errorf("missing keys lost their defaults: %+v", cfg)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad source", func(c *Config) { c.Source = "mongo" }, "source"},
		{"bad screen", func(c *Config) { c.UI.DefaultScreen = "dashboard" }, "default_screen"},
		{"bad debounce", func(c *Config) { c.UI.SearchDebounce = "soon" }, "search_debounce"},
		{"negative timeout", func(c *Config) { c.Backend.Timeout = "-1s" }, "backend.timeout"},
		{"negative page size", func(c *Config) { c.UI.PageSize = -1 }, "page_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestEmptyDurationsMeanDefault(t *testing.T) {
	cfg := Config{}
	if d, err := cfg.SearchDebounce(); err != nil || d != 0 {
		t.Errorf("empty debounce = %v, %v", d, err)
	}
	if d, err := cfg.BackendTimeout(); err != nil || d != 0 {
		t.Errorf("empty timeout = %v, %v", d, err)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Source = "sqlite"
	cfg.SQLite.Path = "/data/cases.db"
	cfg.UI.DefaultScreen = "keywords"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigDir()
	expected := filepath.Join(dir, "casedesk")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if ConfigPath() != filepath.Join(expected, "config.yaml") {
		t.Errorf("unexpected config path %q", ConfigPath())
	}
}

func TestDataDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got := DataDir()
	expected := filepath.Join(dir, "casedesk")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if DefaultConfig().SQLite.Path != filepath.Join(expected, "casedesk.db") {
		t.Errorf("default sqlite path %q not under data dir", DefaultConfig().SQLite.Path)
	}
}
