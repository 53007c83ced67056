// Package corpus holds the frequency-ranked word list that every estimator
// reads from.
package corpus

import (
	"context"
	"sort"
	"strings"

	"github.com/verte-zerg/orthostat/internal/model"
)

// Corpus is an immutable list of entries sorted by descending frequency.
// Slices returned by its methods must be treated as read-only.
type Corpus struct {
	entries []model.Entry
	total   float64
}

// New normalizes words to upper case, drops empty words and negative
// frequencies, and sorts by descending frequency. Equal frequencies keep their
// input order.
func New(entries []model.Entry) *Corpus {
	kept := make([]model.Entry, 0, len(entries))
	var total float64
	for _, e := range entries {
		word := strings.ToUpper(strings.TrimSpace(e.Word))
		if word == "" || e.Freq < 0 {
			continue
		}
		kept = append(kept, model.Entry{Word: word, Freq: e.Freq})
		total += e.Freq
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Freq > kept[j].Freq
	})
	return &Corpus{entries: kept, total: total}
}

// Corpus lets a loaded corpus act as its own Provider.
func (c *Corpus) Corpus(context.Context) (*Corpus, error) {
	return c, nil
}

// Len returns the number of entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// TotalFreq returns the summed frequency of all entries.
func (c *Corpus) TotalFreq() float64 {
	return c.total
}

// Entries returns every entry, most frequent first.
func (c *Corpus) Entries() []model.Entry {
	return c.entries[:len(c.entries):len(c.entries)]
}

// Head returns the n most frequent entries.
func (c *Corpus) Head(n int) []model.Entry {
	return c.Window(0, n)
}

// Window returns entries [skip, skip+take), clamped to the corpus.
func (c *Corpus) Window(skip, take int) []model.Entry {
	if skip < 0 {
		skip = 0
	}
	if take < 0 {
		take = 0
	}
	lo := min(skip, len(c.entries))
	hi := min(lo+take, len(c.entries))
	return c.entries[lo:hi:hi]
}

// Words returns the words of entries, in order.
func Words(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Word
	}
	return out
}
