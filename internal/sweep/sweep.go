// Package sweep ranks single-rule modifications by their effect on chord
// counts.
package sweep

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/orthostat/internal/analysis"
	"github.com/verte-zerg/orthostat/internal/corpus"
	"github.com/verte-zerg/orthostat/internal/logging"
	"github.com/verte-zerg/orthostat/internal/metrics"
	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// Kind names a sweep driver.
type Kind string

// Sweep kinds.
const (
	Vowels        Kind = "vowels"
	Starts        Kind = "starts"
	Ends          Kind = "ends"
	SecondToFirst Kind = "second-to-first"
	AddEnds       Kind = "add-ends"
	AddStarts     Kind = "add-starts"
	Finals        Kind = "finals"
)

// Kinds lists every sweep kind.
var Kinds = []Kind{Vowels, Starts, Ends, SecondToFirst, AddEnds, AddStarts, Finals}

// ParseKind parses a sweep kind name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sweep %q", s)
}

// Row is one scored candidate.
type Row struct {
	Candidate   string
	Score       float64
	FailureRate float64
	Averages    []float64
	Words       []string
}

// Result is a ranked sweep. Rows are sorted by score descending, then by
// candidate.
type Result struct {
	Kind     Kind
	Baseline float64
	Rows     []Row
}

// RunResults converts rows to their stored form, ranked from 1.
func (res Result) RunResults() []model.RunResult {
	out := make([]model.RunResult, len(res.Rows))
	for i, row := range res.Rows {
		out[i] = model.RunResult{
			Rank:        i + 1,
			Candidate:   row.Candidate,
			Score:       row.Score,
			FailureRate: row.FailureRate,
			Words:       row.Words,
		}
	}
	return out
}

// Options configure a Runner.
type Options struct {
	IgnoreN    int
	ConsiderN  int
	AssumeOneN int
	TopN       int
	Workers    int
	CacheSize  int
	// Candidates replaces the driver's default candidate list when non-empty.
	Candidates []string
	// ProbeEnd, when set, reports words whose baseline uses this ending but
	// that get worse under a stroke-scored candidate.
	ProbeEnd string
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
}

// DefaultOptions returns the usual windows with four workers.
func DefaultOptions() Options {
	return Options{
		IgnoreN:    analysis.DefaultIgnoreN,
		ConsiderN:  analysis.DefaultConsiderN,
		AssumeOneN: analysis.DefaultAssumeOneN,
		TopN:       analysis.DefaultTopN,
		Workers:    4,
		CacheSize:  50000,
	}
}

// Runner scores candidates against a fixed corpus and baseline rules. It is
// safe to run several sweeps concurrently.
type Runner struct {
	corpus *corpus.Corpus
	rules  ortho.Rules
	opts   Options
	base   ortho.Segmenter
	logger *zap.Logger
}

// NewRunner compiles the baseline rules and wraps them in the shared match
// cache.
func NewRunner(c *corpus.Corpus, rules ortho.Rules, opts Options) (*Runner, error) {
	if c == nil {
		return nil, fmt.Errorf("corpus is required")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	base, err := ortho.WithCache(opts.Metrics.Instrument(ortho.NewPatterns(rules), "base"), opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Runner{
		corpus: c,
		rules:  rules,
		opts:   opts,
		base:   base,
		logger: logging.OrNop(opts.Logger),
	}, nil
}

// Baseline returns the stroke statistics of the unmodified rules.
func (r *Runner) Baseline() (analysis.StrokeStats, error) {
	return analysis.AverageStrokes(r.corpus.Entries(), r.base, r.strokeOptions())
}

type driver struct {
	candidates func(r *Runner) []string
	modify     func(rules ortho.Rules, candidate string) ortho.Rules
	score      func(r *Runner, seg ortho.Segmenter, baseline float64) (Row, error)
}

var drivers = map[Kind]driver{
	Vowels: {
		candidates: func(r *Runner) []string { return longerThanOne(r.rules.List(ortho.Vowels)) },
		modify:     func(rules ortho.Rules, c string) ortho.Rules { return rules.Without(ortho.Vowels, c) },
		score:      strokesWorse,
	},
	Starts: {
		candidates: func(r *Runner) []string { return r.rules.List(ortho.Starts) },
		modify:     func(rules ortho.Rules, c string) ortho.Rules { return rules.Without(ortho.Starts, c) },
		score:      improvement(analysis.Removed, analysis.Improvement.Last),
	},
	Ends: {
		candidates: func(r *Runner) []string {
			return dedupe(r.rules.List(ortho.FirstEnds), r.rules.List(ortho.SecondEnds))
		},
		modify: func(rules ortho.Rules, c string) ortho.Rules { return rules.WithoutEnd(c) },
		// Index 1 leaves out the single most affected word.
		score: improvement(analysis.Removed, func(imp analysis.Improvement) float64 { return imp.At(1) }),
	},
	SecondToFirst: {
		candidates: func(r *Runner) []string { return r.rules.List(ortho.SecondEnds) },
		modify:     func(rules ortho.Rules, c string) ortho.Rules { return rules.MoveToFirst(c) },
		score:      improvement(analysis.Added, analysis.Improvement.Last),
	},
	AddEnds: {
		candidates: func(r *Runner) []string { return AddEndCandidates(r.corpus.Entries()) },
		modify:     func(rules ortho.Rules, c string) ortho.Rules { return rules.With(ortho.FirstEnds, c) },
		score:      strokesBetter,
	},
	AddStarts: {
		candidates: func(r *Runner) []string { return AddStartCandidates(r.corpus.Entries()) },
		modify:     func(rules ortho.Rules, c string) ortho.Rules { return rules.With(ortho.Starts, c) },
		score:      strokesBetter,
	},
	Finals: {
		candidates: func(*Runner) []string { return longerThanOne(FinalCandidates()) },
		modify:     func(rules ortho.Rules, c string) ortho.Rules { return rules.Replace(ortho.SecondEnds, []string{c}) },
		score:      strokesBetter,
	},
}

// Run scores every candidate of kind in parallel.
func (r *Runner) Run(ctx context.Context, kind Kind) (Result, error) {
	d, ok := drivers[kind]
	if !ok {
		return Result{}, fmt.Errorf("unknown sweep %q", kind)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	baseline, err := r.Baseline()
	if err != nil {
		return Result{}, fmt.Errorf("failed to score baseline: %w", err)
	}
	candidates, err := r.candidates(kind, d)
	if err != nil {
		return Result{}, err
	}
	r.logger.Info("sweep started",
		zap.String("kind", string(kind)),
		zap.Int("candidates", len(candidates)),
		zap.Float64("baseline", baseline.Average),
		zap.Int("workers", r.opts.Workers),
	)

	rows := make([]Row, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, candidate := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			seg := r.opts.Metrics.Instrument(ortho.NewPatterns(d.modify(r.rules, candidate)), "candidate")
			row, err := d.score(r, seg, baseline.Average)
			if err != nil {
				return fmt.Errorf("failed to score %s candidate %q: %w", kind, candidate, err)
			}
			row.Candidate = candidate
			rows[i] = row
			r.opts.Metrics.ObserveCandidate(string(kind), time.Since(started))
			r.logger.Debug("candidate scored",
				zap.String("kind", string(kind)),
				zap.String("candidate", candidate),
				zap.Float64("score", row.Score),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Candidate < rows[j].Candidate
	})
	res := Result{Kind: kind, Baseline: baseline.Average, Rows: rows}
	if len(rows) > 0 {
		r.logger.Info("sweep finished",
			zap.String("kind", string(kind)),
			zap.String("best", rows[0].Candidate),
			zap.Float64("score", rows[0].Score),
		)
	}
	return res, nil
}

func (r *Runner) candidates(kind Kind, d driver) ([]string, error) {
	list := r.opts.Candidates
	if len(list) == 0 {
		list = d.candidates(r)
	} else if kind == Vowels || kind == Finals {
		list = longerThanOne(list)
	}
	out := make([]string, 0, len(list))
	for _, c := range list {
		rule, err := ortho.NormalizeRule(c)
		if err != nil {
			return nil, fmt.Errorf("%s candidate: %w", kind, err)
		}
		out = append(out, rule)
	}
	return dedupe(out), nil
}

func (r *Runner) strokeOptions() analysis.StrokeOptions {
	return analysis.StrokeOptions{AssumeOneN: r.opts.AssumeOneN, ConsiderN: r.opts.ConsiderN}
}

func (r *Runner) window() []model.Entry {
	return r.corpus.Window(r.opts.IgnoreN, r.opts.ConsiderN)
}

func (r *Runner) strokes(seg ortho.Segmenter) (analysis.StrokeStats, error) {
	opts := r.strokeOptions()
	if r.opts.ProbeEnd != "" {
		opts.Probe = &analysis.EndProbe{End: r.opts.ProbeEnd, Baseline: r.base}
	}
	stats, err := analysis.AverageStrokes(r.corpus.Entries(), seg, opts)
	if err != nil {
		return stats, err
	}
	for _, hit := range stats.ProbeHits {
		r.logger.Debug("probe hit",
			zap.String("end", r.opts.ProbeEnd),
			zap.String("word", hit.Word),
			zap.Float64("freq", hit.Freq),
			zap.Int("baseline", hit.Baseline),
			zap.Int("candidate", hit.Candidate),
		)
	}
	return stats, nil
}

// strokesWorse scores how much a removal raises the average.
func strokesWorse(r *Runner, seg ortho.Segmenter, baseline float64) (Row, error) {
	stats, err := r.strokes(seg)
	if err != nil {
		return Row{}, err
	}
	return Row{Score: stats.Average - baseline, FailureRate: stats.FailureRate}, nil
}

// strokesBetter scores how much an addition lowers the average.
func strokesBetter(r *Runner, seg ortho.Segmenter, baseline float64) (Row, error) {
	stats, err := r.strokes(seg)
	if err != nil {
		return Row{}, err
	}
	return Row{Score: baseline - stats.Average, FailureRate: stats.FailureRate}, nil
}

func improvement(dir analysis.Direction, pick func(analysis.Improvement) float64) func(*Runner, ortho.Segmenter, float64) (Row, error) {
	return func(r *Runner, seg ortho.Segmenter, _ float64) (Row, error) {
		imp, err := analysis.DistributionOfImprovement(r.window(), seg, r.base, r.opts.TopN, dir)
		if err != nil {
			return Row{}, err
		}
		return Row{Score: pick(imp), Averages: imp.Averages, Words: imp.Words}, nil
	}
}

func longerThanOne(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if len(v) > 1 {
			out = append(out, v)
		}
	}
	return out
}
