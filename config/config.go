// Package config loads .chervil.yaml, which supplies defaults for the CLI so
// a project doesn't have to repeat flags on every run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the working directory and its parents.
const ConfigFileName = ".chervil.yaml"

// Config represents the complete Chervil CLI configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing the config file
	Output  OutputConfig  `yaml:"output"`
	History HistoryConfig `yaml:"history"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	Pretty bool `yaml:"pretty"` // Pretty-print HTML output (same as -pp)
	Raw    bool `yaml:"raw"`    // Raw print-string output (same as -r)
}

// HistoryConfig holds REPL history settings
type HistoryConfig struct {
	File string `yaml:"file"` // History file path (default: $TMPDIR/.chervil_history)
	Size int    `yaml:"size"` // Max history entries (0 = liner default)
}

// HistoryFilePath resolves the configured REPL history file. A relative path
// is taken relative to the directory holding the config file, so a project
// config can keep its history alongside the project. Returns "" when no file
// is configured, leaving the REPL's default in effect.
func (c *Config) HistoryFilePath() string {
	if c.History.File == "" {
		return ""
	}
	if filepath.IsAbs(c.History.File) {
		return c.History.File
	}
	return filepath.Join(c.BaseDir, c.History.File)
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{}
}

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Find locates the nearest config file, walking from dir up to the
// filesystem root. Returns Default() when none exists.
func Find(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ConfigFileName)
		cfg, err := Load(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
