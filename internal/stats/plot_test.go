package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Improvement", []Series{
		{Name: "MO", Values: []float64{0.2, 0.4, 0.5, 0.45}},
		{Name: "S", Values: []float64{0.1}},
		{Name: "empty"},
	}, 12, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// title + 4 rows + legend
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Improvement" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if !strings.Contains(lines[1], "0.5") || !strings.Contains(lines[4], "0.1") {
		t.Fatalf("expected max and min ticks, got:\n%s", buf.String())
	}
	for _, line := range lines[1:5] {
		if got := utf8.RuneCountInString(line); got != labelWidth+utf8.RuneCountInString(plotAxis)+12 {
			t.Fatalf("unexpected row width %d: %q", got, line)
		}
	}
	if !strings.Contains(lines[5], "MO") || strings.Contains(lines[5], "empty") {
		t.Fatalf("unexpected legend %q", lines[5])
	}
	if strings.Contains(buf.String(), ansiReset) {
		t.Fatalf("expected no colour for a buffer")
	}
}

func TestPlotSeriesNothingToDraw(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "x", []Series{{Name: "a"}}, 10, 3); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{0, 10}, 3)
	if got[0] != 0 || got[1] != 5 || got[2] != 10 {
		t.Fatalf("unexpected resample %v", got)
	}
	if got := resample([]float64{4}, 2); got[0] != 4 || got[1] != 4 {
		t.Fatalf("unexpected constant resample %v", got)
	}
}
