package analysis

import (
	"strings"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// CommonWord is a frequent word that is not written as a single chord.
// Chords is 0 when the word cannot be segmented.
type CommonWord struct {
	Word   string
	Freq   float64
	Chords int
}

// CommonWords lists the words among the first n entries that fail or need
// more than one chord, in corpus order.
func CommonWords(entries []model.Entry, seg ortho.Segmenter, n int) []CommonWord {
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	out := []CommonWord{}
	for _, e := range entries {
		word := strings.ToUpper(e.Word)
		chords, ok := seg.Segment(word)
		if ok && len(chords) == 1 {
			continue
		}
		out = append(out, CommonWord{Word: word, Freq: e.Freq, Chords: len(chords)})
	}
	return out
}
