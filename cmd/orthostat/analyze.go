package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/orthostat/internal/analysis"
	"github.com/verte-zerg/orthostat/internal/stats"
)

var (
	groupsK     int
	groupsLimit int

	strokesProbe string

	improveDirection string

	commonN int
)

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Rank letter groups by the frequency of words containing them",
		Args:  cobra.NoArgs,
		RunE:  withEnv(runGroupsCmd),
	}
	cmd.Flags().IntVarP(&groupsK, "k", "k", 2, "group length")
	cmd.Flags().IntVar(&groupsLimit, "limit", 20, "groups to show (negative shows all)")
	return cmd
}

func runGroupsCmd(cmd *cobra.Command, _ []string, e *env) error {
	c, err := e.corpus(cmd.Context())
	if err != nil {
		return err
	}
	groups := analysis.GroupOrder(c.Entries(), groupsK, groupsLimit)
	return stats.RenderGroups(cmd.OutOrStdout(), groups, c.TotalFreq())
}

func newStrokesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strokes",
		Short: "Average chords per word and failure rate, before and after edits",
		Args:  cobra.NoArgs,
		RunE:  withEnv(runStrokesCmd),
	}
	cmd.Flags().StringVar(&strokesProbe, "probe", "", "list words using this ending that get worse under the edits")
	return cmd
}

func runStrokesCmd(cmd *cobra.Command, _ []string, e *env) error {
	c, err := e.corpus(cmd.Context())
	if err != nil {
		return err
	}
	base, edited := e.segmenters()
	baseStats, err := analysis.AverageStrokes(c.Entries(), base, e.strokeOptions())
	if err != nil {
		return err
	}
	if len(e.edits) == 0 && strokesProbe == "" {
		return stats.RenderStrokes(cmd.OutOrStdout(), baseStats, nil)
	}
	opts := e.strokeOptions()
	if strokesProbe != "" {
		end := strings.ToUpper(strings.TrimSpace(strokesProbe))
		opts.Probe = &analysis.EndProbe{End: end, Baseline: base}
	}
	editedStats, err := analysis.AverageStrokes(c.Entries(), edited, opts)
	if err != nil {
		return err
	}
	return stats.RenderStrokes(cmd.OutOrStdout(), baseStats, &editedStats)
}

func newChangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change",
		Short: "Distribution of chord-count changes caused by the edits",
		Args:  cobra.NoArgs,
		RunE:  withEnv(runChangeCmd),
	}
}

func runChangeCmd(cmd *cobra.Command, _ []string, e *env) error {
	if err := e.requireEdits(); err != nil {
		return err
	}
	c, err := e.corpus(cmd.Context())
	if err != nil {
		return err
	}
	base, edited := e.segmenters()
	d, err := analysis.ChangeDistribution(c.Window(e.analysis.IgnoreN, e.analysis.ConsiderN), edited, base)
	if err != nil {
		return err
	}
	return stats.RenderDistribution(cmd.OutOrStdout(), editTitle(e), d)
}

func newImproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Words most affected by the edits and the average without them",
		Args:  cobra.NoArgs,
		RunE:  withEnv(runImproveCmd),
	}
	cmd.Flags().StringVar(&improveDirection, "direction", analysis.Removed.String(), "added or removed")
	return cmd
}

func runImproveCmd(cmd *cobra.Command, _ []string, e *env) error {
	if err := e.requireEdits(); err != nil {
		return err
	}
	dir, err := analysis.ParseDirection(improveDirection)
	if err != nil {
		return err
	}
	c, err := e.corpus(cmd.Context())
	if err != nil {
		return err
	}
	base, edited := e.segmenters()
	window := c.Window(e.analysis.IgnoreN, e.analysis.ConsiderN)
	imp, err := analysis.DistributionOfImprovement(window, edited, base, e.analysis.TopN, dir)
	if err != nil {
		return err
	}
	return stats.RenderImprovement(cmd.OutOrStdout(), imp, dir)
}

func newEndEffectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end-effect END",
		Short: "Compare an ending as first ending and as second ending",
		Args:  cobra.ExactArgs(1),
		RunE:  withEnv(runEndEffectCmd),
	}
}

func runEndEffectCmd(cmd *cobra.Command, args []string, e *env) error {
	c, err := e.corpus(cmd.Context())
	if err != nil {
		return err
	}
	res, err := analysis.EndEffect(c.Window(e.analysis.IgnoreN, e.analysis.ConsiderN), e.edited, args[0])
	if err != nil {
		return err
	}
	return stats.RenderEndEffect(cmd.OutOrStdout(), res)
}

func newCommonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "common",
		Short: "Frequent words that are not written as a single chord",
		Args:  cobra.NoArgs,
		RunE:  withEnv(runCommonCmd),
	}
	cmd.Flags().IntVarP(&commonN, "n", "n", 0, "leading entries to check (default: --assume-one)")
	return cmd
}

func runCommonCmd(cmd *cobra.Command, _ []string, e *env) error {
	c, err := e.corpus(cmd.Context())
	if err != nil {
		return err
	}
	n := commonN
	if n <= 0 {
		n = e.analysis.AssumeOneN
	}
	_, edited := e.segmenters()
	return stats.RenderCommonWords(cmd.OutOrStdout(), analysis.CommonWords(c.Entries(), edited, n))
}

func editTitle(e *env) string {
	parts := make([]string, len(e.edits))
	for i, edit := range e.edits {
		parts[i] = edit.String()
	}
	return fmt.Sprintf("Changes for %s", strings.Join(parts, " "))
}
