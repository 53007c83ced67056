// Package analysis computes frequency-weighted statistics of chord segmentation
// over a corpus window.
package analysis

import (
	"errors"
	"sort"

	"github.com/verte-zerg/orthostat/internal/model"
)

// ErrEmptyWindow is returned when a window carries no frequency weight.
var ErrEmptyWindow = errors.New("window has no frequency weight")

// Defaults for corpus windows and top lists.
const (
	DefaultIgnoreN    = 200
	DefaultConsiderN  = 10000
	DefaultAssumeOneN = 200
	DefaultTopN       = 5
)

// GroupCount is the aggregate frequency of a letter group.
type GroupCount struct {
	Freq  float64
	Group string
}

// GroupOrder ranks every substring of k letters of the entries by the summed
// frequency of the words containing it, counted once per position. Ties are
// ordered by group descending. A negative limit returns every group.
func GroupOrder(entries []model.Entry, k, limit int) []GroupCount {
	if k < 1 || limit == 0 {
		return []GroupCount{}
	}
	totals := make(map[string]float64)
	for _, e := range entries {
		letters := []rune(e.Word)
		for i := 0; i+k <= len(letters); i++ {
			totals[string(letters[i:i+k])] += e.Freq
		}
	}
	out := make([]GroupCount, 0, len(totals))
	for group, freq := range totals {
		out = append(out, GroupCount{Freq: freq, Group: group})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Freq != out[j].Freq {
			return out[i].Freq > out[j].Freq
		}
		return out[i].Group > out[j].Group
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Groups returns just the group strings of counts, in order.
func Groups(counts []GroupCount) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Group
	}
	return out
}
