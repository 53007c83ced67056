// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Corpus   CorpusConfig   `toml:"corpus"`
	Rules    RulesConfig    `toml:"rules"`
	Output   OutputConfig   `toml:"output"`
}

// AnalysisConfig maps corpus window and sweep settings.
type AnalysisConfig struct {
	IgnoreN    *int `toml:"ignore"`
	ConsiderN  *int `toml:"consider"`
	AssumeOneN *int `toml:"assume-one"`
	TopN       *int `toml:"top-n"`
	Workers    *int `toml:"workers"`
	CacheSize  *int `toml:"cache-size"`
}

// CorpusConfig selects where the frequency list comes from.
type CorpusConfig struct {
	File *string `toml:"file"`
	Name *string `toml:"name"`
	Lang *string `toml:"lang"`
	Size *int    `toml:"size"`
}

// RulesConfig points at a rules file.
type RulesConfig struct {
	Path *string `toml:"path"`
}

// OutputConfig maps output settings.
type OutputConfig struct {
	MetricsFile *string `toml:"metrics-file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
