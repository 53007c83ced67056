package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/orthostat/internal/analysis"
	"github.com/verte-zerg/orthostat/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# orthostat configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# ignore = %d             # Leading entries skipped by window measures
# consider = %d         # Entries read by window and stroke measures
# assume-one = %d         # Leading entries counted as one chord
# top-n = %d                # Words kept by improvement measures
# workers = %d              # Parallel sweep workers
# cache-size = %d       # Baseline match cache entries (0 disables)

[corpus]
# file = "words.tsv"        # Frequency list (word<TAB>freq per line)
# name = "anc"              # Imported corpus name (orthostat corpus import)
# lang = %q               # wordfreq language code
# size = %d             # wordfreq entries to load

[rules]
# path = %q

[output]
# metrics-file = "orthostat.prom"
`,
		analysis.DefaultIgnoreN,
		analysis.DefaultConsiderN,
		analysis.DefaultAssumeOneN,
		analysis.DefaultTopN,
		defaultWorkers,
		defaultCacheSize,
		defaultLang,
		defaultCorpusSize,
		config.DefaultRulesPath(),
	)
}
