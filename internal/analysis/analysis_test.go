package analysis

import (
	"errors"
	"math"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// fakeSegmenter maps words to chord counts; missing words fail.
type fakeSegmenter map[string]int

func (f fakeSegmenter) Segment(word string) ([]ortho.Chord, bool) {
	n, ok := f[word]
	if !ok {
		return nil, false
	}
	chords := make([]ortho.Chord, n)
	for i := range chords {
		chords[i] = ortho.Chord{Vowel: "A"}
	}
	return chords, true
}

func testRules() ortho.Rules {
	return ortho.MustRules(
		[]string{"D", "M", "TH", "S", "H"},
		[]string{"E", "O", "A", "EY"},
		[]string{"MO", "N", "S"},
		[]string{"S", "Y"},
	)
}

func TestGroupOrderReference(t *testing.T) {
	entries := []model.Entry{{Freq: 100, Word: "THE"}, {Freq: 50, Word: "THEY"}, {Freq: 10, Word: "SHE"}}
	got := GroupOrder(entries, 2, 3)
	want := []GroupCount{{160, "HE"}, {150, "TH"}, {50, "EY"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("group order mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupOrderProperties(t *testing.T) {
	entries := []model.Entry{{Freq: 5, Word: "ABAB"}, {Freq: 5, Word: "CD"}, {Freq: 1, Word: "A"}}

	all := GroupOrder(entries, 2, -1)
	want := []GroupCount{{10, "AB"}, {5, "CD"}, {5, "BA"}}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Fatalf("group order mismatch (-want +got):\n%s", diff)
	}

	seen := map[string]bool{}
	for i, g := range all {
		if seen[g.Group] {
			t.Fatalf("duplicate group %q", g.Group)
		}
		seen[g.Group] = true
		if i > 0 && all[i-1].Freq < g.Freq {
			t.Fatalf("groups not sorted descending at %d: %+v", i, all)
		}
	}

	if got := GroupOrder(entries, 2, 1); len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	if got := GroupOrder(entries, 2, 0); len(got) != 0 {
		t.Fatalf("expected no groups for limit 0, got %+v", got)
	}
	if got := GroupOrder(entries, 0, -1); len(got) != 0 {
		t.Fatalf("expected no groups for k=0, got %+v", got)
	}
	if diff := cmp.Diff([]string{"AB", "CD", "BA"}, Groups(all)); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupOrderCountsLetters(t *testing.T) {
	entries := []model.Entry{{Freq: 1000, Word: "ÉTÉ"}, {Freq: 500, Word: "DEMO"}}
	got := GroupOrder(entries, 2, -1)
	want := []GroupCount{{1000, "ÉT"}, {1000, "TÉ"}, {500, "MO"}, {500, "EM"}, {500, "DE"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("group order mismatch (-want +got):\n%s", diff)
	}
	for _, g := range got {
		if !utf8.ValidString(g.Group) || utf8.RuneCountInString(g.Group) != 2 {
			t.Fatalf("group %q is not two letters", g.Group)
		}
	}
}

func TestMeasureChange(t *testing.T) {
	base := fakeSegmenter{"A": 2, "B": 1, "LOST": 1}
	mod := fakeSegmenter{"A": 1, "B": 3, "GAINED": 1}
	cases := []struct {
		word string
		want Change
	}{
		{"a", Change{Status: Scored, Delta: -1}},
		{"B", Change{Status: Scored, Delta: 2}},
		{"none", Change{Status: BothFailed}},
		{"gained", Change{Status: Gained}},
		{"lost", Change{Status: Lost}},
	}
	for _, tc := range cases {
		if got := MeasureChange(tc.word, mod, base); got != tc.want {
			t.Fatalf("MeasureChange(%q) = %+v, want %+v", tc.word, got, tc.want)
		}
	}
	if s := (Change{Status: Scored, Delta: -1}).String(); s != "-1" {
		t.Fatalf("unexpected change string %q", s)
	}
	if s := (Change{Status: Lost}).String(); s != "lost" {
		t.Fatalf("unexpected change string %q", s)
	}
}

func TestChangeDistributionSumsToOne(t *testing.T) {
	base := fakeSegmenter{"A": 2, "B": 1, "C": 1, "LOST": 1}
	mod := fakeSegmenter{"A": 1, "B": 1, "C": 2}
	window := []model.Entry{{30, "A"}, {20, "B"}, {10, "C"}, {7, "LOST"}, {3, "NONE"}}

	d, err := ChangeDistribution(window, mod, base)
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	var sum float64
	for _, w := range d.Weights {
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("weights sum to %v", sum)
	}
	if d.TotalFreq != 70 {
		t.Fatalf("expected total 70, got %v", d.TotalFreq)
	}
	wantCounts := map[Change]int{
		{Status: Scored, Delta: -1}: 1,
		{Status: Scored, Delta: 0}:  1,
		{Status: Scored, Delta: 1}:  1,
		{Status: Lost}:              1,
		{Status: BothFailed}:        1,
	}
	if diff := cmp.Diff(wantCounts, d.Counts); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
	if w := d.Weights[Change{Status: Scored, Delta: -1}]; math.Abs(w-30.0/70) > 1e-12 {
		t.Fatalf("unexpected weight %v", w)
	}
	wantKeys := []Change{
		{Status: Scored, Delta: -1},
		{Status: Scored, Delta: 0},
		{Status: Scored, Delta: 1},
		{Status: BothFailed},
		{Status: Lost},
	}
	if diff := cmp.Diff(wantKeys, d.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeDistributionEmptyWindow(t *testing.T) {
	seg := fakeSegmenter{}
	if _, err := ChangeDistribution(nil, seg, seg); !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("expected ErrEmptyWindow, got %v", err)
	}
	if _, err := ChangeDistribution([]model.Entry{{0, "A"}}, seg, seg); !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("expected ErrEmptyWindow for zero weight, got %v", err)
	}
}

func improvementFixture() ([]model.Entry, ortho.Segmenter, ortho.Segmenter) {
	window := []model.Entry{{10, "A"}, {5, "B"}, {20, "C"}, {1, "D"}, {50, "E"}}
	base := fakeSegmenter{"A": 3, "B": 2, "C": 1, "D": 2, "E": 1}
	mod := fakeSegmenter{"A": 1, "B": 1, "C": 2, "D": 1}
	return window, mod, base
}

func TestDistributionOfImprovementAdded(t *testing.T) {
	window, mod, base := improvementFixture()
	imp, err := DistributionOfImprovement(window, mod, base, 2, Added)
	if err != nil {
		t.Fatalf("improvement: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "A"}, imp.Words); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
	want := []float64{26.0 / 36, 21.0 / 31}
	if diff := cmp.Diff(want, imp.Averages, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("averages mismatch (-want +got):\n%s", diff)
	}
	if imp.Last() != imp.Averages[1] || imp.At(7) != imp.Last() || imp.At(0) != imp.Averages[0] {
		t.Fatalf("unexpected accessors: %+v", imp)
	}
}

func TestDistributionOfImprovementBoundedAndMonotonic(t *testing.T) {
	window, mod, base := improvementFixture()
	imp, err := DistributionOfImprovement(window, mod, base, 5, Added)
	if err != nil {
		t.Fatalf("improvement: %v", err)
	}
	// E fails under the modified rules and never contributes.
	if diff := cmp.Diff([]string{"C", "D", "B", "A"}, imp.Words); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
	if len(imp.Averages) != len(imp.Words) || len(imp.Words) > 5 {
		t.Fatalf("expected matching lengths <= 5, got %d averages, %d words", len(imp.Averages), len(imp.Words))
	}
	for i := 1; i < len(imp.Effects); i++ {
		if imp.Effects[i].less(imp.Effects[i-1]) {
			t.Fatalf("effects not ascending: %+v", imp.Effects)
		}
	}
	// Each replay step drops a word whose effect per frequency is below the
	// remaining average, so the averages only rise here.
	want := []float64{26.0 / 36, 26.0 / 16, 25.0 / 15, 20.0 / 10}
	if diff := cmp.Diff(want, imp.Averages, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("averages mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(imp.Averages); i++ {
		if imp.Averages[i] < imp.Averages[i-1] {
			t.Fatalf("averages not monotonic under removal: %v", imp.Averages)
		}
	}
}

func TestDistributionOfImprovementRemoved(t *testing.T) {
	window, mod, base := improvementFixture()
	imp, err := DistributionOfImprovement(window, mod, base, 1, Removed)
	if err != nil {
		t.Fatalf("improvement: %v", err)
	}
	if diff := cmp.Diff([]string{"C"}, imp.Words); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(imp.Averages[0]-20.0/36) > 1e-12 {
		t.Fatalf("unexpected average %v", imp.Averages[0])
	}
}

func TestDistributionOfImprovementEmpty(t *testing.T) {
	seg := fakeSegmenter{}
	_, err := DistributionOfImprovement([]model.Entry{{5, "A"}}, seg, seg, 5, Added)
	if !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("expected ErrEmptyWindow, got %v", err)
	}
}

func TestDistributionOfImprovementNoGain(t *testing.T) {
	seg := fakeSegmenter{"A": 1}
	imp, err := DistributionOfImprovement([]model.Entry{{5, "A"}}, fakeSegmenter{"A": 1}, seg, 3, Added)
	if err != nil {
		t.Fatalf("improvement: %v", err)
	}
	if diff := cmp.Diff([]float64{0}, imp.Averages); diff != "" {
		t.Fatalf("averages mismatch (-want +got):\n%s", diff)
	}
}

func TestAverageStrokes(t *testing.T) {
	entries := []model.Entry{{100, "X"}, {10, "A"}, {10, "E"}, {1000, "BEYOND"}}
	seg := fakeSegmenter{"A": 3}
	stats, err := AverageStrokes(entries, seg, StrokeOptions{AssumeOneN: 1, ConsiderN: 3})
	if err != nil {
		t.Fatalf("strokes: %v", err)
	}
	if math.Abs(stats.Average-130.0/110) > 1e-12 {
		t.Fatalf("unexpected average %v", stats.Average)
	}
	if math.Abs(stats.FailureRate-10.0/120) > 1e-12 {
		t.Fatalf("unexpected failure rate %v", stats.FailureRate)
	}
	if stats.Matched != 1 || stats.Failed != 1 || stats.Forced != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.Average < 1 || stats.FailureRate < 0 || stats.FailureRate > 1 {
		t.Fatalf("stats out of range: %+v", stats)
	}
}

func TestAverageStrokesAllFailed(t *testing.T) {
	_, err := AverageStrokes([]model.Entry{{1, "A"}}, fakeSegmenter{}, StrokeOptions{})
	if !errors.Is(err, ErrEmptyWindow) {
		t.Fatalf("expected ErrEmptyWindow, got %v", err)
	}
}

func TestRemovingEndingNeverLowersFailures(t *testing.T) {
	entries := []model.Entry{{1000, "DEMO"}, {400, "THEY"}, {300, "DEMOS"}, {200, "MOMO"}, {5, "QQ"}}
	rules := testRules()
	withMO := ortho.NewPatterns(rules)
	withoutMO := ortho.NewPatterns(rules.Without(ortho.FirstEnds, "MO"))

	opts := StrokeOptions{Probe: &EndProbe{End: "MO", Baseline: withMO}}
	before, err := AverageStrokes(entries, withMO, StrokeOptions{})
	if err != nil {
		t.Fatalf("strokes with MO: %v", err)
	}
	after, err := AverageStrokes(entries, withoutMO, opts)
	if err != nil {
		t.Fatalf("strokes without MO: %v", err)
	}
	if after.FailureRate < before.FailureRate {
		t.Fatalf("failure rate dropped from %v to %v", before.FailureRate, after.FailureRate)
	}
	if after.Average < before.Average {
		t.Fatalf("average dropped from %v to %v", before.Average, after.Average)
	}
	if len(after.ProbeHits) == 0 || after.ProbeHits[0] != (ProbeHit{Word: "DEMO", Freq: 1000, Baseline: 1, Candidate: 2}) {
		t.Fatalf("unexpected probe hits: %+v", after.ProbeHits)
	}
}

func TestEndEffect(t *testing.T) {
	window := []model.Entry{{1000, "DEMO"}, {10, "THEY"}}
	res, err := EndEffect(window, testRules(), "mo")
	if err != nil {
		t.Fatalf("end effect: %v", err)
	}
	if res.End != "MO" {
		t.Fatalf("unexpected end %q", res.End)
	}
	improved := Change{Status: Scored, Delta: -1}
	for name, d := range map[string]Distribution{"first": res.FirstWith, "second": res.SecondWith} {
		if math.Abs(d.Weights[improved]-1000.0/1010) > 1e-12 {
			t.Fatalf("%s: unexpected weights %+v", name, d.Weights)
		}
		if d.Counts[Change{Status: Scored}] != 1 {
			t.Fatalf("%s: unexpected counts %+v", name, d.Counts)
		}
	}
}

func TestCommonWords(t *testing.T) {
	entries := []model.Entry{{100, "THE"}, {90, "DEMOS"}, {80, "QQ"}, {1, "LATE"}}
	seg := fakeSegmenter{"THE": 1, "DEMOS": 2, "LATE": 3}
	got := CommonWords(entries, seg, 3)
	want := []CommonWord{{Word: "DEMOS", Freq: 90, Chords: 2}, {Word: "QQ", Freq: 80}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("common words mismatch (-want +got):\n%s", diff)
	}
}

func TestEstimatorsAreIdempotent(t *testing.T) {
	window, mod, base := improvementFixture()
	first, err := DistributionOfImprovement(window, mod, base, 3, Added)
	if err != nil {
		t.Fatalf("improvement: %v", err)
	}
	second, err := DistributionOfImprovement(window, mod, base, 3, Added)
	if err != nil {
		t.Fatalf("improvement: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeat run differs (-first +second):\n%s", diff)
	}
	d1, err := ChangeDistribution(window, mod, base)
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	d2, err := ChangeDistribution(window, mod, base)
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if diff := cmp.Diff(d1, d2); diff != "" {
		t.Fatalf("repeat distribution differs (-first +second):\n%s", diff)
	}
}
