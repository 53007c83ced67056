package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// Status classifies how a word fares under a base and a modified rule set.
type Status int

// Change statuses. Only Scored carries a delta.
const (
	Scored Status = iota
	BothFailed
	Gained
	Lost
)

func (s Status) String() string {
	switch s {
	case Scored:
		return "scored"
	case BothFailed:
		return "both-failed"
	case Gained:
		return "gained"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Change is the effect of a rule modification on one word.
type Change struct {
	Status Status
	Delta  int
}

func (c Change) String() string {
	if c.Status != Scored {
		return c.Status.String()
	}
	return formatDelta(c.Delta)
}

func formatDelta(d int) string {
	if d == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", d)
}

// MeasureChange segments word under both rule sets and reports the chord
// delta (modified minus base) when both succeed.
func MeasureChange(word string, modified, base ortho.Segmenter) Change {
	word = strings.ToUpper(word)
	baseChords, baseOK := base.Segment(word)
	modChords, modOK := modified.Segment(word)
	switch {
	case baseOK && modOK:
		return Change{Status: Scored, Delta: len(modChords) - len(baseChords)}
	case !baseOK && !modOK:
		return Change{Status: BothFailed}
	case modOK:
		return Change{Status: Gained}
	default:
		return Change{Status: Lost}
	}
}

// Distribution is the frequency-weighted spread of changes over a window.
// Weights sum to one.
type Distribution struct {
	Weights   map[Change]float64
	Counts    map[Change]int
	TotalFreq float64
}

// ChangeDistribution measures every word of window and groups the results
// by change.
func ChangeDistribution(window []model.Entry, modified, base ortho.Segmenter) (Distribution, error) {
	d := Distribution{
		Weights: make(map[Change]float64),
		Counts:  make(map[Change]int),
	}
	for _, e := range window {
		c := MeasureChange(e.Word, modified, base)
		d.TotalFreq += e.Freq
		d.Weights[c] += e.Freq
		d.Counts[c]++
	}
	if d.TotalFreq <= 0 {
		return Distribution{}, ErrEmptyWindow
	}
	for c := range d.Weights {
		d.Weights[c] /= d.TotalFreq
	}
	return d, nil
}

// Keys returns the changes present in d: scored deltas ascending, then the
// unscored statuses.
func (d Distribution) Keys() []Change {
	keys := make([]Change, 0, len(d.Counts))
	for c := range d.Counts {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Status != keys[j].Status {
			return keys[i].Status < keys[j].Status
		}
		return keys[i].Delta < keys[j].Delta
	})
	return keys
}
