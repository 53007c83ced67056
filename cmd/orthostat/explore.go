package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/orthostat/internal/explorer"
	"github.com/verte-zerg/orthostat/internal/generator"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

const defaultSample = 30

var (
	exploreSample int
	explorePrint  bool
)

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Compare base and edited segmentations on sampled corpus words",
		Args:  cobra.NoArgs,
		RunE:  withEnv(runExploreCmd),
	}
	cmd.Flags().IntVar(&exploreSample, "sample", defaultSample, "words per sample")
	cmd.Flags().BoolVar(&explorePrint, "print", false, "print one sample instead of starting the TUI")
	return cmd
}

func runExploreCmd(cmd *cobra.Command, _ []string, e *env) error {
	if exploreSample <= 0 {
		return fmt.Errorf("--sample must be > 0")
	}
	c, err := e.corpus(cmd.Context())
	if err != nil {
		return err
	}
	gen := generator.New(c.Head(e.analysis.ConsiderN))
	if gen.Len() == 0 {
		return fmt.Errorf("corpus has no words to sample")
	}
	base, edited := e.segmenters()
	if explorePrint {
		return printSample(cmd, gen.Sample(exploreSample), base, edited)
	}
	program := tea.NewProgram(explorer.NewModel(base, edited, gen, exploreSample), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run explorer: %w", err)
	}
	return nil
}

func printSample(cmd *cobra.Command, words []string, base, edited ortho.Segmenter) error {
	out := cmd.OutOrStdout()
	for _, word := range words {
		if _, err := fmt.Fprintf(out, "%-16s %-24s %s\n", word, outline(base, word), outline(edited, word)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func outline(seg ortho.Segmenter, word string) string {
	chords, ok := seg.Segment(strings.ToUpper(word))
	if !ok {
		return "-"
	}
	return ortho.Outline(chords)
}
