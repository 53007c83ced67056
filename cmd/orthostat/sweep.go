package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/stats"
	"github.com/verte-zerg/orthostat/internal/sweep"
)

var (
	sweepCandidates []string
	sweepLimit      int
	sweepNoSave     bool
	sweepProbe      string
)

func newSweepCmd() *cobra.Command {
	kinds := make([]string, len(sweep.Kinds))
	for i, k := range sweep.Kinds {
		kinds[i] = string(k)
	}
	cmd := &cobra.Command{
		Use:       fmt.Sprintf("sweep <%s>", strings.Join(kinds, "|")),
		Short:     "Score every single-rule modification of one kind",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE:      withEnv(runSweepCmd),
	}
	cmd.Flags().StringSliceVar(&sweepCandidates, "candidates", nil, "comma-separated candidates replacing the default list")
	cmd.Flags().IntVar(&sweepLimit, "limit", 20, "rows to print (0 prints all)")
	cmd.Flags().BoolVar(&sweepNoSave, "no-save", false, "do not store the run in history")
	cmd.Flags().StringVar(&sweepProbe, "probe", "", "log words using this ending that get worse (with --verbose)")
	return cmd
}

func runSweepCmd(cmd *cobra.Command, args []string, e *env) error {
	kind, err := sweep.ParseKind(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	c, err := e.corpus(ctx)
	if err != nil {
		return err
	}
	runner, err := sweep.NewRunner(c, e.edited, sweep.Options{
		IgnoreN:    e.analysis.IgnoreN,
		ConsiderN:  e.analysis.ConsiderN,
		AssumeOneN: e.analysis.AssumeOneN,
		TopN:       e.analysis.TopN,
		Workers:    e.analysis.Workers,
		CacheSize:  e.analysis.CacheSize,
		Candidates: sweepCandidates,
		ProbeEnd:   strings.ToUpper(strings.TrimSpace(sweepProbe)),
		Logger:     e.logger,
		Metrics:    e.metrics,
	})
	if err != nil {
		return err
	}

	startedAt := time.Now()
	res, err := runner.Run(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to run %s sweep: %w", kind, err)
	}
	endedAt := time.Now()

	if err := stats.RenderSweep(cmd.OutOrStdout(), res, sweepLimit); err != nil {
		return err
	}
	if sweepNoSave {
		return nil
	}
	st, err := e.store()
	if err != nil {
		return err
	}
	id, err := st.InsertRun(ctx, model.RunRecord{
		Kind:      string(kind),
		Corpus:    e.label,
		RulesPath: e.rules,
		Baseline:  res.Baseline,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}, res.RunResults())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	e.logger.Info("run saved", zap.String("id", id), zap.String("kind", string(kind)))
	return nil
}
