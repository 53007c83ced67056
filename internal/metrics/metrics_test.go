package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/orthostat/internal/ortho"
)

func TestInstrumentCountsOutcomes(t *testing.T) {
	rec := NewRecorder()
	rules := ortho.MustRules([]string{"D"}, []string{"E"}, nil, nil)
	seg := rec.Instrument(ortho.NewPatterns(rules), "base")

	for _, word := range []string{"DE", "DEDE", "XYZ"} {
		seg.Segment(word)
	}
	if got := counterValue(t, rec, "orthostat_segments_total", "matched"); got != 2 {
		t.Fatalf("expected 2 matched, got %v", got)
	}
	if got := counterValue(t, rec, "orthostat_segments_total", "failed"); got != 1 {
		t.Fatalf("expected 1 failed, got %v", got)
	}
}

func counterValue(t *testing.T, rec *Recorder, name, outcome string) float64 {
	t.Helper()
	families, err := rec.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveCandidate("vowels", 3*time.Millisecond)
	rec.ObserveCandidate("vowels", 5*time.Millisecond)

	path := filepath.Join(t.TempDir(), "orthostat.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `orthostat_sweep_candidates_total{kind="vowels"} 2`) {
		t.Fatalf("missing candidate counter in:\n%s", data)
	}
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	seg := ortho.NewPatterns(ortho.MustRules(nil, []string{"A"}, nil, nil))
	if rec.Instrument(seg, "base") != ortho.Segmenter(seg) {
		t.Fatalf("expected nil recorder to return the segmenter unchanged")
	}
	rec.ObserveCandidate("vowels", time.Second)
	if err := rec.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil recorder write: %v", err)
	}
}
