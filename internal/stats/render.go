package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/orthostat/internal/analysis"
	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/sweep"
)

const maxListedWords = 5

func freq(f float64) string {
	return humanize.CommafWithDigits(f, 1)
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

func score(f float64) string {
	return fmt.Sprintf("%.5f", f)
}

func listWords(words []string) string {
	if len(words) > maxListedWords {
		return strings.Join(words[len(words)-maxListedWords:], " ") + " …"
	}
	return strings.Join(words, " ")
}

// RenderGroups prints ranked letter groups with their share of total.
func RenderGroups(w io.Writer, groups []analysis.GroupCount, total float64) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No groups found.")
		return err
	}
	t := table{headers: []string{"#", "Group", "Freq", "Share"}, right: map[int]bool{0: true, 2: true, 3: true}}
	for i, g := range groups {
		share := "-"
		if total > 0 {
			share = percent(g.Freq / total)
		}
		t.add(count(i+1), g.Group, freq(g.Freq), share)
	}
	return t.write(w)
}

// RenderStrokes prints stroke statistics for the base rules and, when edited
// is non-nil, the edited rules next to them.
func RenderStrokes(w io.Writer, base analysis.StrokeStats, edited *analysis.StrokeStats) error {
	headers := []string{"Metric", "Base"}
	if edited != nil {
		headers = append(headers, "Edited", "Delta")
	}
	t := table{headers: headers, right: map[int]bool{1: true, 2: true, 3: true}}
	row := func(name string, get func(analysis.StrokeStats) float64, format func(float64) string) {
		cells := []string{name, format(get(base))}
		if edited != nil {
			delta := get(*edited) - get(base)
			cells = append(cells, format(get(*edited)), fmt.Sprintf("%+.5f", delta))
		}
		t.add(cells...)
	}
	row("Average strokes", func(s analysis.StrokeStats) float64 { return s.Average }, score)
	row("Failure rate", func(s analysis.StrokeStats) float64 { return s.FailureRate }, percent)
	row("Matched", func(s analysis.StrokeStats) float64 { return float64(s.Matched) }, func(f float64) string { return count(int(f)) })
	row("Failed", func(s analysis.StrokeStats) float64 { return float64(s.Failed) }, func(f float64) string { return count(int(f)) })
	row("Assumed one chord", func(s analysis.StrokeStats) float64 { return float64(s.Forced) }, func(f float64) string { return count(int(f)) })
	if err := t.write(w); err != nil {
		return err
	}
	if edited == nil || len(edited.ProbeHits) == 0 {
		return nil
	}
	if err := blank(w); err != nil {
		return err
	}
	return renderProbeHits(w, edited.ProbeHits)
}

func renderProbeHits(w io.Writer, hits []analysis.ProbeHit) error {
	if err := writeTitle(w, "Probe hits"); err != nil {
		return err
	}
	t := table{headers: []string{"Word", "Freq", "Base", "Edited"}, right: map[int]bool{1: true, 2: true, 3: true}}
	for _, h := range hits {
		edited := "fail"
		if h.Candidate > 0 {
			edited = count(h.Candidate)
		}
		t.add(h.Word, freq(h.Freq), count(h.Baseline), edited)
	}
	return t.write(w)
}

// RenderDistribution prints the weight and word count of each change.
func RenderDistribution(w io.Writer, title string, d analysis.Distribution) error {
	if title != "" {
		if err := writeTitle(w, title); err != nil {
			return err
		}
	}
	t := table{headers: []string{"Change", "Weight", "Words"}, right: map[int]bool{1: true, 2: true}}
	for _, c := range d.Keys() {
		t.add(c.String(), percent(d.Weights[c]), count(d.Counts[c]))
	}
	return t.write(w)
}

// RenderImprovement prints the kept words in ascending order of effect with
// the average before each is excluded.
func RenderImprovement(w io.Writer, imp analysis.Improvement, dir analysis.Direction) error {
	if len(imp.Words) == 0 {
		_, err := fmt.Fprintln(w, "No words kept.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Top %d words (%s)\n", len(imp.Words), dir); err != nil {
		return err
	}
	t := table{headers: []string{"Word", "Effect", "Freq", "Average"}, right: map[int]bool{1: true, 2: true, 3: true}}
	for i, e := range imp.Effects {
		t.add(e.Word, freq(e.Size), freq(e.Freq), score(imp.Averages[i]))
	}
	return t.write(w)
}

// RenderEndEffect prints both change distributions of an ending.
func RenderEndEffect(w io.Writer, res analysis.EndEffectResult) error {
	if err := RenderDistribution(w, fmt.Sprintf("%s as first ending (vs neither)", res.End), res.FirstWith); err != nil {
		return err
	}
	if err := blank(w); err != nil {
		return err
	}
	return RenderDistribution(w, fmt.Sprintf("%s as second ending (vs neither)", res.End), res.SecondWith)
}

// RenderCommonWords prints frequent words that are not single chords.
func RenderCommonWords(w io.Writer, words []analysis.CommonWord) error {
	t := table{headers: []string{"Word", "Freq", "Chords"}, right: map[int]bool{1: true, 2: true}}
	for _, cw := range words {
		chords := "fail"
		if cw.Chords > 0 {
			chords = count(cw.Chords)
		}
		t.add(cw.Word, freq(cw.Freq), chords)
	}
	if len(words) > 0 {
		if err := t.write(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d words need more than one chord\n", len(words))
	return err
}

// RenderSweep prints a ranked sweep. A limit <= 0 prints every row.
func RenderSweep(w io.Writer, res sweep.Result, limit int) error {
	if _, err := fmt.Fprintf(w, "Sweep %s (baseline %s strokes, %d candidates)\n", res.Kind, score(res.Baseline), len(res.Rows)); err != nil {
		return err
	}
	return renderResults(w, res.RunResults(), limit)
}

func renderResults(w io.Writer, results []model.RunResult, limit int) error {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	t := table{headers: []string{"#", "Candidate", "Score", "Fail", "Words"}, right: map[int]bool{0: true, 2: true, 3: true}}
	for _, r := range results {
		t.add(count(r.Rank), r.Candidate, score(r.Score), percent(r.FailureRate), listWords(r.Words))
	}
	return t.write(w)
}

// RenderCorpora prints imported corpora.
func RenderCorpora(w io.Writer, infos []model.CorpusInfo, now time.Time) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No corpora imported.")
		return err
	}
	t := table{headers: []string{"Name", "Entries", "Total freq", "Source", "Imported"}, right: map[int]bool{1: true, 2: true}}
	for _, info := range infos {
		t.add(info.Name, count(info.Entries), freq(info.TotalFreq), info.Source, humanize.RelTime(info.ImportedAt, now, "ago", "from now"))
	}
	return t.write(w)
}

// RenderRuns prints stored sweep runs.
func RenderRuns(w io.Writer, runs []model.RunRecord, now time.Time) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	t := table{headers: []string{"ID", "Kind", "Corpus", "Baseline", "Candidates", "Took", "Finished"}, right: map[int]bool{3: true, 4: true, 5: true}}
	for _, run := range runs {
		t.add(
			shortID(run.ID),
			run.Kind,
			run.Corpus,
			score(run.Baseline),
			count(run.Candidates),
			run.EndedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			humanize.RelTime(run.EndedAt, now, "ago", "from now"),
		)
	}
	return t.write(w)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
