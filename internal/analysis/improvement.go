package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// Direction selects which sign of chord delta counts as an improvement.
type Direction int

const (
	// Added counts words that need fewer chords under the modified rules.
	Added Direction = iota
	// Removed counts words that need more chords under the modified rules,
	// i.e. what the base rules save over the modified ones.
	Removed
)

func (d Direction) String() string {
	if d == Removed {
		return "removed"
	}
	return "added"
}

// ParseDirection parses "added" or "removed".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "added", "add", "":
		return Added, nil
	case "removed", "remove":
		return Removed, nil
	default:
		return Added, fmt.Errorf("unknown direction %q", s)
	}
}

// Effect is a word's frequency-weighted chord saving.
type Effect struct {
	Size float64
	Freq float64
	Word string
}

func (e Effect) less(o Effect) bool {
	if e.Size != o.Size {
		return e.Size < o.Size
	}
	if e.Freq != o.Freq {
		return e.Freq < o.Freq
	}
	return e.Word < o.Word
}

// Improvement holds the top effects of a modification in ascending order and
// the average effect per unit of frequency before each of them is excluded.
type Improvement struct {
	Averages []float64
	Words    []string
	Effects  []Effect
}

// Last returns the average left after all but the largest effect has been
// excluded, or 0 when nothing was kept.
func (imp Improvement) Last() float64 {
	if len(imp.Averages) == 0 {
		return 0
	}
	return imp.Averages[len(imp.Averages)-1]
}

// At returns Averages[i], falling back to the last average when i is out of
// range.
func (imp Improvement) At(i int) float64 {
	if i >= 0 && i < len(imp.Averages) {
		return imp.Averages[i]
	}
	return imp.Last()
}

// DistributionOfImprovement keeps the n words with the largest effects over
// window and replays them in ascending order, emitting the window's average
// effect and then removing that word's contribution. Words that fail under
// either rule set are skipped.
func DistributionOfImprovement(window []model.Entry, modified, base ortho.Segmenter, n int, dir Direction) (Improvement, error) {
	top := make([]Effect, 0, max(n, 0))
	var totalEffect, totalFreq float64
	for _, e := range window {
		word := strings.ToUpper(e.Word)
		baseChords, ok := base.Segment(word)
		if !ok {
			continue
		}
		modChords, ok := modified.Segment(word)
		if !ok {
			continue
		}
		delta := len(baseChords) - len(modChords)
		if dir == Removed {
			delta = -delta
		}
		size := float64(delta) * e.Freq
		if size < 0 {
			size = 0
		}
		eff := Effect{Size: size, Freq: e.Freq, Word: word}
		switch {
		case n <= 0:
		case len(top) < n:
			top = insertSorted(top, eff)
		case size > top[0].Size:
			copy(top, top[1:])
			top = insertSorted(top[:len(top)-1], eff)
		}
		totalEffect += size
		totalFreq += e.Freq
	}
	if totalFreq <= 0 {
		return Improvement{}, ErrEmptyWindow
	}

	imp := Improvement{
		Averages: make([]float64, 0, len(top)),
		Words:    make([]string, 0, len(top)),
		Effects:  top,
	}
	for _, eff := range top {
		avg := 0.0
		if totalFreq > 0 {
			avg = totalEffect / totalFreq
		}
		imp.Averages = append(imp.Averages, avg)
		imp.Words = append(imp.Words, eff.Word)
		totalEffect -= eff.Size
		totalFreq -= eff.Freq
	}
	return imp, nil
}

// insertSorted adds eff to the ascending slice top, reusing its backing array.
func insertSorted(top []Effect, eff Effect) []Effect {
	i := sort.Search(len(top), func(i int) bool { return eff.less(top[i]) })
	top = append(top, Effect{})
	copy(top[i+1:], top[i:])
	top[i] = eff
	return top
}
