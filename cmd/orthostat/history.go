package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/orthostat/internal/config"
	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/reportui"
	"github.com/verte-zerg/orthostat/internal/stats"
	"github.com/verte-zerg/orthostat/internal/store"
)

var (
	historyKind string
	historyLast int

	reportKind  string
	reportLast  int
	reportLimit int
	reportTUI   bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored sweep runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyKind, "kind", "", "sweep kind filter")
	cmd.Flags().IntVar(&historyLast, "last", 20, "limit to last N runs (0 shows all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	runs, err := st.ListRuns(cmd.Context(), historyKind, historyLast)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return stats.RenderRuns(cmd.OutOrStdout(), runs, time.Now())
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [RUN-ID]",
		Short: "Show a stored run with its ranking and curves",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportKind, "kind", "", "sweep kind filter")
	cmd.Flags().IntVar(&reportLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&reportLimit, "limit", 0, "result rows to show (0 shows all)")
	cmd.Flags().BoolVar(&reportTUI, "tui", false, "browse runs interactively")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg := model.ReportConfig{Kind: reportKind, Last: reportLast, Limit: reportLimit}
	if len(args) == 1 {
		cfg.RunID = args[0]
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if reportTUI {
		program := tea.NewProgram(reportui.NewModel(st, cfg), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run report TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return err
	}
	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	return stats.RenderReport(cmd.OutOrStdout(), report, time.Now(), width, false)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}
