package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Analysis.IgnoreN != nil || cfg.Corpus.File != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[analysis]
ignore = 100
assume-one = 50
workers = 8

[corpus]
name = "anc"

[rules]
path = "/tmp/rules.yaml"

[output]
metrics-file = "/tmp/orthostat.prom"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Analysis.IgnoreN == nil || *cfg.Analysis.IgnoreN != 100 {
		t.Fatalf("unexpected ignore: %v", cfg.Analysis.IgnoreN)
	}
	if cfg.Analysis.AssumeOneN == nil || *cfg.Analysis.AssumeOneN != 50 {
		t.Fatalf("unexpected assume-one: %v", cfg.Analysis.AssumeOneN)
	}
	if cfg.Analysis.ConsiderN != nil {
		t.Fatalf("expected consider unset, got %v", *cfg.Analysis.ConsiderN)
	}
	if cfg.Corpus.Name == nil || *cfg.Corpus.Name != "anc" {
		t.Fatalf("unexpected corpus name: %v", cfg.Corpus.Name)
	}
	if cfg.Rules.Path == nil || *cfg.Rules.Path != "/tmp/rules.yaml" {
		t.Fatalf("unexpected rules path: %v", cfg.Rules.Path)
	}
	if cfg.Output.MetricsFile == nil || *cfg.Output.MetricsFile != "/tmp/orthostat.prom" {
		t.Fatalf("unexpected metrics file: %v", cfg.Output.MetricsFile)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[analysis]\nignroe = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "analysis.ignroe") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "orthostat", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "orthostat", "orthostat.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultWordfreqCacheDir(); got != filepath.Join("/data", "orthostat", "wordfreq") {
		t.Fatalf("unexpected cache dir %q", got)
	}
}
