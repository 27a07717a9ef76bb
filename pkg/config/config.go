// Package config handles loading and saving conceptnav configuration.
//
// A project file (./conceptnav.yaml) takes precedence over the user file,
// which follows the XDG Base Directory specification:
//   - Config: ~/.config/conceptnav/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/conceptnav/pkg/concepts"
	"github.com/vanderheijden86/conceptnav/pkg/hooks"
	"github.com/vanderheijden86/conceptnav/pkg/loader"
	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// ProjectFileName is looked up in the working directory before the XDG file.
const ProjectFileName = "conceptnav.yaml"

// ErrInvalidConcepts wraps validation failures of a configured concept table.
var ErrInvalidConcepts = errors.New("invalid concepts")

// ExportConfig controls which artifacts the bundle includes.
type ExportConfig struct {
	SQLite bool `yaml:"sqlite"`
	JSON   bool `yaml:"json"`
}

// WatchConfig controls content watching.
type WatchConfig struct {
	DebounceMs     int  `yaml:"debounce_ms,omitempty"`
	PollIntervalMs int  `yaml:"poll_interval_ms,omitempty"`
	ForcePoll      bool `yaml:"force_poll,omitempty"`
}

// PreviewConfig controls the preview server.
type PreviewConfig struct {
	Port int `yaml:"port,omitempty"` // 0 picks a free port
}

// Config is the top-level configuration.
type Config struct {
	ContentDir     string          `yaml:"content_dir,omitempty"`
	OutputDir      string          `yaml:"output_dir,omitempty"`
	DisplayClass   string          `yaml:"display_class,omitempty"`
	IgnorePatterns []string        `yaml:"ignore_patterns,omitempty"`
	IncludeDrafts  bool            `yaml:"include_drafts,omitempty"`
	Concepts       []model.Concept `yaml:"concepts,omitempty"` // overrides the built-in table
	Export         ExportConfig    `yaml:"export"`
	Watch          WatchConfig     `yaml:"watch"`
	Preview        PreviewConfig   `yaml:"preview"`
	Hooks          hooks.ByPhase   `yaml:"hooks,omitempty"`

	warnings []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ContentDir:     "content",
		OutputDir:      filepath.Join("public", "static"),
		IgnorePatterns: loader.DefaultIgnorePatterns(),
		Export: ExportConfig{
			SQLite: true,
			JSON:   true,
		},
		Watch: WatchConfig{
			DebounceMs:     250,
			PollIntervalMs: 2000,
		},
	}
}

// ConfigDir returns the XDG config directory for conceptnav.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "conceptnav")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "conceptnav")
}

// ConfigPath returns the full path to the user config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the user config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// Resolve picks the configuration for a run: the explicit path if given,
// else ./conceptnav.yaml if present, else the user config. It returns the
// path that was read ("" when only defaults apply).
func Resolve(explicit string) (Config, string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return DefaultConfig(), "", fmt.Errorf("reading config: %w", err)
		}
		cfg, err := LoadFrom(explicit)
		return cfg, explicit, err
	}
	if _, err := os.Stat(ProjectFileName); err == nil {
		cfg, err := LoadFrom(ProjectFileName)
		return cfg, ProjectFileName, err
	}
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), "", nil
	}
	cfg, err := LoadFrom(path)
	return cfg, path, err
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
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

	cfg.ContentDir = expandHome(cfg.ContentDir)
	cfg.OutputDir = expandHome(cfg.OutputDir)
	cfg.Hooks, cfg.warnings = hooks.Normalize(cfg.Hooks)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
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

// Validate checks values that would otherwise fail later at run time.
func (c Config) Validate() error {
	if len(c.Concepts) > 0 {
		if err := concepts.Validate(c.Concepts); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConcepts, err)
		}
	}
	if c.Watch.DebounceMs < 0 || c.Watch.PollIntervalMs < 0 {
		return fmt.Errorf("watch intervals cannot be negative")
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview port %d out of range", c.Preview.Port)
	}
	return c.Hooks.Validate()
}

// Warnings returns problems found while loading that did not fail the load.
func (c Config) Warnings() []string {
	return c.warnings
}

// ConceptTable returns the configured concepts, or the built-in table.
func (c Config) ConceptTable() []model.Concept {
	if len(c.Concepts) == 0 {
		return concepts.Default()
	}
	out := make([]model.Concept, len(c.Concepts))
	copy(out, c.Concepts)
	return out
}

// LoaderOptions maps the config onto loader options.
func (c Config) LoaderOptions() loader.Options {
	return loader.Options{
		IgnorePatterns: c.IgnorePatterns,
		IncludeDrafts:  c.IncludeDrafts,
	}
}

// DebounceDuration returns the watch debounce window.
func (c Config) DebounceDuration() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// PollInterval returns the watch polling interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Watch.PollIntervalMs) * time.Millisecond
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
