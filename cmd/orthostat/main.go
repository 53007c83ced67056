// Package main provides the CLI entrypoint for orthostat.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/orthostat/internal/analysis"
	"github.com/verte-zerg/orthostat/internal/config"
	"github.com/verte-zerg/orthostat/internal/corpus"
	"github.com/verte-zerg/orthostat/internal/logging"
	"github.com/verte-zerg/orthostat/internal/metrics"
	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
	"github.com/verte-zerg/orthostat/internal/store"
)

const (
	defaultLang       = "en"
	defaultCorpusSize = 20000
	defaultWorkers    = 4
	defaultCacheSize  = 50000
)

var (
	verbose     bool
	rulesPath   string
	editSpecs   []string
	corpusFile  string
	corpusName  string
	corpusLang  string
	corpusSize  int
	metricsFile string

	ignoreN    int
	considerN  int
	assumeOneN int
	topN       int
	workers    int
	cacheSize  int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orthostat",
		Short:         "Measure how chord rule changes affect a word corpus",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flags.StringVar(&rulesPath, "rules", "", "rules file (.toml, .yaml); default: built-in English rules")
	flags.StringArrayVar(&editSpecs, "edit", nil, "rule edit [+|-|>]category:RULE (repeatable)")
	flags.StringVar(&corpusFile, "corpus-file", "", "frequency list file (word<TAB>freq per line)")
	flags.StringVar(&corpusName, "corpus", "", "name of an imported corpus")
	flags.StringVar(&corpusLang, "lang", defaultLang, "language code for wordfreq and word filtering")
	flags.IntVar(&corpusSize, "size", defaultCorpusSize, "number of wordfreq entries to load")
	flags.IntVar(&ignoreN, "ignore", analysis.DefaultIgnoreN, "leading entries skipped by window measures")
	flags.IntVar(&considerN, "consider", analysis.DefaultConsiderN, "entries read by window and stroke measures")
	flags.IntVar(&assumeOneN, "assume-one", analysis.DefaultAssumeOneN, "leading entries counted as one chord")
	flags.IntVar(&topN, "top-n", analysis.DefaultTopN, "words kept by improvement measures")
	flags.IntVar(&workers, "workers", defaultWorkers, "parallel sweep workers")
	flags.IntVar(&cacheSize, "cache-size", defaultCacheSize, "baseline match cache entries (0 disables)")
	flags.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(newGroupsCmd())
	rootCmd.AddCommand(newStrokesCmd())
	rootCmd.AddCommand(newChangeCmd())
	rootCmd.AddCommand(newImproveCmd())
	rootCmd.AddCommand(newEndEffectCmd())
	rootCmd.AddCommand(newCommonCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newCorpusCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newExploreCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// env is the shared state of an analysis command: configuration, logger,
// metrics, rules and a lazily loaded corpus.
type env struct {
	analysis model.AnalysisConfig
	logger   *zap.Logger
	metrics  *metrics.Recorder
	base     ortho.Rules
	edited   ortho.Rules
	edits    []ortho.Edit
	provider corpus.Provider
	label    string
	rules    string

	st *store.Store
}

func newEnv(cmd *cobra.Command) (*env, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)
	cfg := model.AnalysisConfig{
		IgnoreN:    ignoreN,
		ConsiderN:  considerN,
		AssumeOneN: assumeOneN,
		TopN:       topN,
		Workers:    workers,
		CacheSize:  cacheSize,
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return nil, err
	}
	e := &env{analysis: cfg, logger: logger, metrics: metrics.NewRecorder()}

	e.base, e.rules, err = loadRules(rulesPath)
	if err != nil {
		return nil, err
	}
	e.edits, err = parseEdits(editSpecs)
	if err != nil {
		return nil, err
	}
	e.edited, err = e.base.Apply(e.edits...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply edits: %w", err)
	}
	if err := e.selectCorpus(); err != nil {
		return nil, err
	}
	logger.Debug("environment ready",
		zap.String("rules", e.rules),
		zap.String("corpus", e.label),
		zap.Int("edits", len(e.edits)),
	)
	return e, nil
}

func (e *env) selectCorpus() error {
	switch {
	case corpusFile != "":
		e.label = corpusFile
		e.provider = corpus.NewLazy(corpus.FileSource(corpusFile, corpusLang))
	case corpusName != "":
		st, err := e.store()
		if err != nil {
			return err
		}
		e.label = corpusName
		e.provider = corpus.NewLazy(corpus.StoreSource(st, corpusName))
	default:
		if corpusSize <= 0 {
			return fmt.Errorf("--size must be > 0")
		}
		e.label = fmt.Sprintf("wordfreq:%s:%d", corpusLang, corpusSize)
		e.provider = corpus.NewLazy(corpus.WordfreqSource(config.DefaultWordfreqCacheDir(), corpusLang, corpusSize))
	}
	return nil
}

// store opens the database on first use.
func (e *env) store() (*store.Store, error) {
	if e.st != nil {
		return e.st, nil
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	e.st = st
	return st, nil
}

func (e *env) corpus(ctx context.Context) (*corpus.Corpus, error) {
	c, err := e.provider.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("corpus loaded", zap.String("corpus", e.label), zap.Int("entries", c.Len()))
	return c, nil
}

// segmenters compiles the base and edited rules, instrumented for metrics.
func (e *env) segmenters() (base, edited ortho.Segmenter) {
	base = e.metrics.Instrument(ortho.NewPatterns(e.base), "base")
	edited = e.metrics.Instrument(ortho.NewPatterns(e.edited), "edited")
	return base, edited
}

func (e *env) requireEdits() error {
	if len(e.edits) == 0 {
		return fmt.Errorf("at least one --edit is required")
	}
	return nil
}

func (e *env) strokeOptions() analysis.StrokeOptions {
	return analysis.StrokeOptions{AssumeOneN: e.analysis.AssumeOneN, ConsiderN: e.analysis.ConsiderN}
}

func (e *env) close() {
	if metricsFile != "" {
		if err := e.metrics.WriteTextfile(metricsFile); err != nil {
			e.logger.Warn("failed to write metrics", zap.String("path", metricsFile), zap.Error(err))
		}
	}
	if e.st != nil {
		if err := e.st.Close(); err != nil {
			logErrf("failed to close db: %v\n", err)
		}
	}
	if err := e.logger.Sync(); err != nil {
		// Syncing stderr fails on some terminals.
		_ = err
	}
}

// withEnv builds the environment for cmd and closes it after run.
func withEnv(run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		return run(cmd, args, e)
	}
}

func loadRules(path string) (ortho.Rules, string, error) {
	if path != "" {
		rules, err := ortho.LoadRules(path)
		if err != nil {
			return ortho.Rules{}, "", err
		}
		return rules, path, nil
	}
	if _, err := os.Stat(config.DefaultRulesPath()); err == nil {
		rules, err := ortho.LoadRules(config.DefaultRulesPath())
		if err != nil {
			return ortho.Rules{}, "", err
		}
		return rules, config.DefaultRulesPath(), nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return ortho.Rules{}, "", fmt.Errorf("failed to stat rules: %w", err)
	}
	rules, err := ortho.Default()
	if err != nil {
		return ortho.Rules{}, "", err
	}
	return rules, "built-in", nil
}

func parseEdits(specs []string) ([]ortho.Edit, error) {
	edits := make([]ortho.Edit, 0, len(specs))
	for _, spec := range specs {
		for _, part := range strings.Split(spec, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			edit, err := ortho.ParseEdit(part)
			if err != nil {
				return nil, fmt.Errorf("invalid --edit: %w", err)
			}
			edits = append(edits, edit)
		}
	}
	return edits, nil
}

func applyFileConfig(cmd *cobra.Command, cfg config.FileConfig) {
	applyIntConfig(cmd, "ignore", &ignoreN, cfg.Analysis.IgnoreN)
	applyIntConfig(cmd, "consider", &considerN, cfg.Analysis.ConsiderN)
	applyIntConfig(cmd, "assume-one", &assumeOneN, cfg.Analysis.AssumeOneN)
	applyIntConfig(cmd, "top-n", &topN, cfg.Analysis.TopN)
	applyIntConfig(cmd, "workers", &workers, cfg.Analysis.Workers)
	applyIntConfig(cmd, "cache-size", &cacheSize, cfg.Analysis.CacheSize)
	applyStringConfig(cmd, "corpus-file", &corpusFile, cfg.Corpus.File)
	applyStringConfig(cmd, "corpus", &corpusName, cfg.Corpus.Name)
	applyStringConfig(cmd, "lang", &corpusLang, cfg.Corpus.Lang)
	applyIntConfig(cmd, "size", &corpusSize, cfg.Corpus.Size)
	applyStringConfig(cmd, "rules", &rulesPath, cfg.Rules.Path)
	applyStringConfig(cmd, "metrics-file", &metricsFile, cfg.Output.MetricsFile)
	// An explicit corpus flag wins over any corpus source set in the file.
	if cmd.Flags().Changed("corpus") && !cmd.Flags().Changed("corpus-file") {
		corpusFile = ""
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.AnalysisConfig) error {
	if cfg.IgnoreN < 0 {
		return fmt.Errorf("--ignore must be >= 0")
	}
	if cfg.ConsiderN <= 0 {
		return fmt.Errorf("--consider must be > 0")
	}
	if cfg.AssumeOneN < 0 {
		return fmt.Errorf("--assume-one must be >= 0")
	}
	if cfg.TopN <= 0 {
		return fmt.Errorf("--top-n must be > 0")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("--workers must be > 0")
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("--cache-size must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
