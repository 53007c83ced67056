package analysis

import (
	"strings"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// StrokeOptions controls AverageStrokes.
type StrokeOptions struct {
	// AssumeOneN is the number of leading entries counted as one chord each
	// without being segmented.
	AssumeOneN int
	// ConsiderN bounds how many leading entries are read; <= 0 reads all.
	ConsiderN int
	// Probe, when set, records words whose baseline segmentation uses Probe.End
	// but that need more chords under the measured rules.
	Probe *EndProbe
}

// DefaultStrokeOptions returns the usual window.
func DefaultStrokeOptions() StrokeOptions {
	return StrokeOptions{AssumeOneN: DefaultAssumeOneN, ConsiderN: DefaultConsiderN}
}

// EndProbe names an ending to watch and the segmenter it is watched under.
type EndProbe struct {
	End      string
	Baseline ortho.Segmenter
}

// ProbeHit is a word that got worse while its baseline used the probed end.
// Candidate is 0 when the measured rules fail on the word.
type ProbeHit struct {
	Word      string
	Freq      float64
	Baseline  int
	Candidate int
}

// StrokeStats summarizes chord counts over the considered entries.
type StrokeStats struct {
	Average     float64
	FailureRate float64
	Matched     int
	Failed      int
	Forced      int
	ProbeHits   []ProbeHit
}

// AverageStrokes returns the frequency-weighted average chord count of the
// leading entries and the weight share of words seg cannot segment.
func AverageStrokes(entries []model.Entry, seg ortho.Segmenter, opts StrokeOptions) (StrokeStats, error) {
	if opts.ConsiderN > 0 && opts.ConsiderN < len(entries) {
		entries = entries[:opts.ConsiderN]
	}
	var stats StrokeStats
	var totalFreq, countedFreq, chordFreq, failedFreq float64
	for i, e := range entries {
		totalFreq += e.Freq
		if i < opts.AssumeOneN {
			stats.Forced++
			countedFreq += e.Freq
			chordFreq += e.Freq
			continue
		}
		word := strings.ToUpper(e.Word)
		chords, ok := seg.Segment(word)
		if opts.Probe != nil {
			if hit, found := probe(opts.Probe, word, e.Freq, chords, ok); found {
				stats.ProbeHits = append(stats.ProbeHits, hit)
			}
		}
		if !ok {
			stats.Failed++
			failedFreq += e.Freq
			continue
		}
		stats.Matched++
		countedFreq += e.Freq
		chordFreq += e.Freq * float64(len(chords))
	}
	if countedFreq <= 0 || totalFreq <= 0 {
		return StrokeStats{}, ErrEmptyWindow
	}
	stats.Average = chordFreq / countedFreq
	stats.FailureRate = failedFreq / totalFreq
	return stats, nil
}

func probe(p *EndProbe, word string, freq float64, chords []ortho.Chord, ok bool) (ProbeHit, bool) {
	base, baseOK := p.Baseline.Segment(word)
	if !baseOK || !usesEnd(base, p.End) {
		return ProbeHit{}, false
	}
	if ok && len(chords) <= len(base) {
		return ProbeHit{}, false
	}
	hit := ProbeHit{Word: word, Freq: freq, Baseline: len(base)}
	if ok {
		hit.Candidate = len(chords)
	}
	return hit, true
}

func usesEnd(chords []ortho.Chord, end string) bool {
	for _, c := range chords {
		if c.End == end {
			return true
		}
	}
	return false
}
