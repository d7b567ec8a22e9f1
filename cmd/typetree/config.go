package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/npratt/typetree/internal/config"
)

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose   = "verbose"
	FlagConfig    = "config"
	FlagLogFile   = "log-file"
	FlagStateFile = "state-file"
	FlagSource    = "source"
	FlagDir       = "dir"

	// Explore command flags
	FlagWatch = "watch"

	// Dump command flags
	FlagDepth = "depth"

	// Output format flags
	FlagFormat = "format"
	FlagJSON   = "json"
)

// flagKeys maps flags onto nested config keys so viper applies them above
// files and environment.
var flagKeys = map[string]string{
	FlagSource:    "source.kind",
	FlagDir:       "source.dir",
	FlagLogFile:   "paths.log",
	FlagStateFile: "paths.state",
	FlagWatch:     "watch.enabled",
}

// configKey returns the viper key a flag is bound to.
func configKey(flag string) string {
	if key, ok := flagKeys[flag]; ok {
		return key
	}
	return flag
}

// writeConfig prints cfg as YAML in the layout of the config file.
func writeConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return enc.Close()
}
