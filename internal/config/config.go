// Package config provides configuration types and defaults for typetree.
package config

import (
	"fmt"
	"time"
)

// Source kinds.
const (
	// SourcePackages type-checks packages with the go command.
	SourcePackages = "packages"
	// SourceReflect walks the runtime types compiled into typetree.
	SourceReflect = "reflect"
)

// Config holds all configuration for typetree.
type Config struct {
	Source      SourceConfig      `yaml:"source" mapstructure:"source"`
	Explorer    ExplorerConfig    `yaml:"explorer" mapstructure:"explorer"`
	Tree        TreeConfig        `yaml:"tree" mapstructure:"tree"`
	Watch       WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// SourceConfig selects and configures where types come from.
type SourceConfig struct {
	Kind        string        `yaml:"kind" mapstructure:"kind"`                 // "packages" or "reflect"
	Dir         string        `yaml:"dir" mapstructure:"dir"`                   // Directory packages are resolved from (default: cwd)
	BuildFlags  []string      `yaml:"build_flags" mapstructure:"build_flags"`   // Extra go command flags, e.g. -tags=integration
	LoadTimeout time.Duration `yaml:"load_timeout" mapstructure:"load_timeout"` // Per package load (0 = unbounded)
}

// ExplorerConfig controls which methods are shown.
type ExplorerConfig struct {
	ExportedOnly bool `yaml:"exported_only" mapstructure:"exported_only"`
	SkipError    bool `yaml:"skip_error" mapstructure:"skip_error"` // Do not follow results of type error
}

// TreeConfig holds tree rendering settings.
type TreeConfig struct {
	IndentWidth int  `yaml:"indent_width" mapstructure:"indent_width"` // Columns per depth level
	Guides      bool `yaml:"guides" mapstructure:"guides"`             // Draw vertical indentation guides
	Icons       bool `yaml:"icons" mapstructure:"icons"`               // Draw a glyph before each label
}

// WatchConfig holds settings for reloading on source changes.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// PathsConfig holds file paths for persisted state and logs.
type PathsConfig struct {
	State string `yaml:"state" mapstructure:"state"`
	Log   string `yaml:"log" mapstructure:"log"`
}

// LogRotationConfig holds settings for log file rotation.
// Used for the TUI debug log (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:        SourcePackages,
			BuildFlags:  []string{},
			LoadTimeout: 2 * time.Minute,
		},
		Explorer: ExplorerConfig{
			ExportedOnly: true,
			SkipError:    true,
		},
		Tree: TreeConfig{
			IndentWidth: 2,
			Guides:      true,
			Icons:       true,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 250 * time.Millisecond,
		},
		Paths: PathsConfig{
			State: ".typetree/tree-state.json",
			Log:   ".typetree/typetree.log",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourcePackages, SourceReflect:
	default:
		return fmt.Errorf("source.kind %q: must be %q or %q", c.Source.Kind, SourcePackages, SourceReflect)
	}
	if c.Tree.IndentWidth < 1 {
		return fmt.Errorf("tree.indent_width must be positive, got %d", c.Tree.IndentWidth)
	}
	if c.Source.LoadTimeout < 0 {
		return fmt.Errorf("source.load_timeout must not be negative, got %s", c.Source.LoadTimeout)
	}
	if c.Watch.Enabled && c.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive when watching, got %s", c.Watch.Debounce)
	}
	return nil
}
