package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/orthostat/internal/config"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

func TestParseEditsSplitsCommas(t *testing.T) {
	edits, err := parseEdits([]string{"+vowels:ey,-first:mo", ">second:S"})
	require.NoError(t, err)
	require.Len(t, edits, 3)
	require.Equal(t, ortho.Edit{Op: ortho.OpAdd, Category: ortho.Vowels, Rule: "EY"}, edits[0])
	require.Equal(t, ortho.OpRemove, edits[1].Op)
	require.Equal(t, ortho.OpMove, edits[2].Op)

	_, err = parseEdits([]string{"vowels"})
	require.Error(t, err)
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Analysis.IgnoreN != nil || cfg.Corpus.Lang != nil {
		t.Fatalf("expected commented template to set nothing, got %+v", cfg)
	}

	// Uncommenting every line must still decode.
	var b strings.Builder
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, "=") {
			line = strings.TrimPrefix(line, "# ")
		}
		b.WriteString(line + "\n")
	}
	var full config.FileConfig
	if _, err := toml.Decode(b.String(), &full); err != nil {
		t.Fatalf("decode uncommented template: %v", err)
	}
	if full.Analysis.ConsiderN == nil || *full.Analysis.ConsiderN != 10000 {
		t.Fatalf("unexpected consider value: %+v", full.Analysis)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	root := newRootCmd()
	cmd, _, err := root.Find([]string{"strokes"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--ignore", "7"}))

	ignore, consider, lang := 300, 400, "de"
	applyFileConfig(cmd, config.FileConfig{
		Analysis: config.AnalysisConfig{IgnoreN: &ignore, ConsiderN: &consider},
		Corpus:   config.CorpusConfig{Lang: &lang},
	})
	require.Equal(t, 7, ignoreN)
	require.Equal(t, 400, considerN)
	require.Equal(t, "de", corpusLang)
}

func TestRulesCommandPrintsEditedRules(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"rules", "--edit", "+vowels:QX"})
	require.NoError(t, root.Execute())

	rules, err := ortho.DecodeRules(out.Bytes(), "toml")
	require.NoError(t, err)
	require.True(t, rules.Contains(ortho.Vowels, "QX"))
}
