package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/store"
)

// Report contains precomputed data for run history rendering.
type Report struct {
	// Runs are newest first.
	Runs     []model.RunRecord
	Selected *model.RunRecord
	Results  []model.RunResult
}

// BuildReport loads the runs matching cfg and the results of the selected
// run: cfg.RunID when set, otherwise the newest run.
func BuildReport(ctx context.Context, st *store.Store, cfg model.ReportConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg.Kind, cfg.Last)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list runs: %w", err)
	}
	report := Report{Runs: runs}

	var selected model.RunRecord
	switch {
	case cfg.RunID != "":
		selected, err = st.GetRun(ctx, cfg.RunID)
		if err != nil {
			return Report{}, err
		}
	case len(runs) > 0:
		selected = runs[0]
	default:
		return report, nil
	}
	results, err := st.ListResults(ctx, selected.ID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load run results: %w", err)
	}
	if cfg.Limit > 0 && len(results) > cfg.Limit {
		results = results[:cfg.Limit]
	}
	report.Selected = &selected
	report.Results = results
	return report, nil
}

// BaselineSeries returns the baselines of runs of kind in chronological order.
func (r Report) BaselineSeries(kind string) []float64 {
	var values []float64
	for i := len(r.Runs) - 1; i >= 0; i-- {
		if r.Runs[i].Kind == kind {
			values = append(values, r.Runs[i].Baseline)
		}
	}
	return values
}

// ScoreSeries returns the selected run's scores in rank order.
func (r Report) ScoreSeries() []float64 {
	values := make([]float64, len(r.Results))
	for i, res := range r.Results {
		values[i] = res.Score
	}
	return values
}

// RenderReport prints run history, the selected run's ranking and its curves.
func RenderReport(w io.Writer, r Report, now time.Time, totalWidth int, useColor bool) error {
	if err := writeTitle(w, "Runs"); err != nil {
		return err
	}
	if err := RenderRuns(w, r.Runs, now); err != nil {
		return err
	}
	if r.Selected == nil {
		return nil
	}
	if err := blank(w); err != nil {
		return err
	}
	if err := RenderRun(w, *r.Selected, r.Results); err != nil {
		return err
	}
	if err := blank(w); err != nil {
		return err
	}
	return RenderCurves(w, r, totalWidth, useColor)
}

// RenderRun prints one stored run and its ranking.
func RenderRun(w io.Writer, run model.RunRecord, results []model.RunResult) error {
	if _, err := fmt.Fprintf(w, "Run %s: %s on %s (baseline %s)\n", shortID(run.ID), run.Kind, run.Corpus, score(run.Baseline)); err != nil {
		return err
	}
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results stored.")
		return err
	}
	return renderResults(w, results, 0)
}

// RenderCurves plots the selected run's score curve and, when the run's kind
// was swept more than once, its baseline history.
func RenderCurves(w io.Writer, r Report, totalWidth int, useColor bool) error {
	if r.Selected == nil {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotSeriesWithColor(w, "Score by rank", []Series{{Name: "score", Values: r.ScoreSeries()}}, width, 0, useColor); err != nil {
		return err
	}
	baselines := r.BaselineSeries(r.Selected.Kind)
	if len(baselines) < 2 {
		return nil
	}
	return PlotSeriesWithColor(w, "Baseline by run", []Series{{Name: r.Selected.Kind, Values: baselines}}, width, 0, useColor)
}
