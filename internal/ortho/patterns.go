package ortho

import (
	"slices"
	"strings"
)

// Chord is one encoded unit covering a contiguous part of a word.
type Chord struct {
	Start  string
	Vowel  string
	End    string
	Second string
}

// Len returns the number of letters the chord covers.
func (c Chord) Len() int {
	return len(c.Start) + len(c.Vowel) + len(c.End) + len(c.Second)
}

// Text returns the letters the chord covers.
func (c Chord) Text() string {
	return c.Start + c.Vowel + c.End + c.Second
}

func (c Chord) String() string {
	return slot(c.Start) + "|" + slot(c.Vowel) + "|" + slot(c.End) + "|" + slot(c.Second)
}

func slot(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Outline joins the chord texts with slashes, e.g. "DE/MO".
func Outline(chords []Chord) string {
	parts := make([]string, len(chords))
	for i, c := range chords {
		parts[i] = c.Text()
	}
	return strings.Join(parts, "/")
}

// Segmenter turns a word into chords. The bool is false when no segmentation
// exists; that is an expected outcome, not an error.
type Segmenter interface {
	Segment(word string) ([]Chord, bool)
}

// Patterns is the compiled, immutable form of a Rules value.
type Patterns struct {
	rules Rules
	sets  [4]ruleSet
}

type ruleSet struct {
	members map[string]struct{}
	// distinct rule lengths, longest first
	lengths []int
}

// NewPatterns compiles rules for matching.
func NewPatterns(r Rules) *Patterns {
	p := &Patterns{rules: r.clone()}
	for _, c := range Categories {
		p.sets[c] = newRuleSet(r.lists[c])
	}
	return p
}

func newRuleSet(rules []string) ruleSet {
	rs := ruleSet{members: make(map[string]struct{}, len(rules))}
	for _, rule := range rules {
		if _, ok := rs.members[rule]; ok {
			continue
		}
		rs.members[rule] = struct{}{}
		if !slices.Contains(rs.lengths, len(rule)) {
			rs.lengths = append(rs.lengths, len(rule))
		}
	}
	slices.SortFunc(rs.lengths, func(a, b int) int { return b - a })
	return rs
}

// prefixes returns the rules matching word at i, longest first, followed by
// the empty rule.
func (rs ruleSet) prefixes(word string, i int) []string {
	out := make([]string, 0, len(rs.lengths)+1)
	for _, n := range rs.lengths {
		if i+n > len(word) {
			continue
		}
		if _, ok := rs.members[word[i:i+n]]; ok {
			out = append(out, word[i:i+n])
		}
	}
	return append(out, "")
}

// Rules returns the rules the patterns were compiled from.
func (p *Patterns) Rules() Rules {
	return p.rules.clone()
}

// Segment splits word into the fewest chords. Ties go to the segmentation
// whose earliest chords cover the most letters; chords of equal length keep
// the longest start, then vowel, then endings.
func (p *Patterns) Segment(word string) ([]Chord, bool) {
	word = strings.ToUpper(word)
	n := len(word)
	if n == 0 {
		return nil, false
	}
	const unreachable = -1
	best := make([]int, n+1)
	next := make([]Chord, n+1)
	for i := range best {
		best[i] = unreachable
	}
	best[n] = 0
	for i := n - 1; i >= 0; i-- {
		p.eachChord(word, i, func(c Chord, j int) {
			if best[j] == unreachable {
				return
			}
			cost := best[j] + 1
			if best[i] == unreachable || cost < best[i] || (cost == best[i] && c.Len() > next[i].Len()) {
				best[i] = cost
				next[i] = c
			}
		})
	}
	if best[0] == unreachable {
		return nil, false
	}
	chords := make([]Chord, 0, best[0])
	for i := 0; i < n; {
		c := next[i]
		chords = append(chords, c)
		i += c.Len()
	}
	return chords, true
}

func (p *Patterns) eachChord(word string, i int, fn func(Chord, int)) {
	for _, start := range p.sets[Starts].prefixes(word, i) {
		vi := i + len(start)
		for _, vowel := range p.sets[Vowels].prefixes(word, vi) {
			ei := vi + len(vowel)
			for _, end := range p.sets[FirstEnds].prefixes(word, ei) {
				si := ei + len(end)
				for _, second := range p.sets[SecondEnds].prefixes(word, si) {
					j := si + len(second)
					if j == i {
						continue
					}
					fn(Chord{Start: start, Vowel: vowel, End: end, Second: second}, j)
				}
			}
		}
	}
}
