// Package generator samples corpus words in proportion to their frequency.
package generator

import (
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/orthostat/internal/model"
)

// Generator draws words from a fixed set of weighted entries.
type Generator struct {
	rnd   *rand.Rand
	words []string
	// cumulative weights, strictly increasing
	cumulative []float64
}

// New returns a Generator over entries seeded with the current time.
func New(entries []model.Entry) *Generator {
	return NewWithSeed(entries, time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed. Entries with no weight
// are never drawn.
func NewWithSeed(entries []model.Entry, seed int64) *Generator {
	g := &Generator{rnd: rand.New(rand.NewSource(seed))}
	total := 0.0
	for _, e := range entries {
		if e.Freq <= 0 || e.Word == "" {
			continue
		}
		total += e.Freq
		g.words = append(g.words, e.Word)
		g.cumulative = append(g.cumulative, total)
	}
	return g
}

// Len returns the number of drawable words.
func (g *Generator) Len() int {
	return len(g.words)
}

// Sample draws count words with replacement. It returns nil when no word can
// be drawn.
func (g *Generator) Sample(count int) []string {
	if len(g.words) == 0 || count <= 0 {
		return nil
	}
	total := g.cumulative[len(g.cumulative)-1]
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		r := g.rnd.Float64() * total
		idx := sort.SearchFloat64s(g.cumulative, r)
		if idx < len(g.cumulative) && g.cumulative[idx] == r {
			idx++
		}
		result = append(result, g.words[min(idx, len(g.words)-1)])
	}
	return result
}
