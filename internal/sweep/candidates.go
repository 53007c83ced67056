package sweep

import (
	"github.com/verte-zerg/orthostat/internal/analysis"
	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

// Alphabet returns the single letters A to Z.
func Alphabet() []string {
	out := make([]string, 0, 26)
	for c := 'A'; c <= 'Z'; c++ {
		out = append(out, string(c))
	}
	return out
}

// AlphabetPairs returns every two-letter combination AA to ZZ.
func AlphabetPairs() []string {
	letters := Alphabet()
	out := make([]string, 0, len(letters)*len(letters))
	for _, a := range letters {
		for _, b := range letters {
			out = append(out, a+b)
		}
	}
	return out
}

// GroupCandidates returns the n most frequent letter groups of length k that
// are valid rules. Groups with letters outside A-Z are skipped.
func GroupCandidates(entries []model.Entry, k, n int) []string {
	out := make([]string, 0, max(n, 0))
	for _, g := range analysis.Groups(analysis.GroupOrder(entries, k, -1)) {
		if len(out) == n {
			break
		}
		if _, err := ortho.NormalizeRule(g); err != nil {
			continue
		}
		out = append(out, g)
	}
	return out
}

// AddEndCandidates is the default candidate list of the add-ends sweep.
func AddEndCandidates(entries []model.Entry) []string {
	return dedupe(Alphabet(), AlphabetPairs(), GroupCandidates(entries, 3, 500), GroupCandidates(entries, 4, 400))
}

// AddStartCandidates is the default candidate list of the add-starts sweep.
func AddStartCandidates(entries []model.Entry) []string {
	return dedupe(Alphabet(), AlphabetPairs(), GroupCandidates(entries, 3, 500))
}

// FinalCandidates is the default candidate list of the finals sweep.
func FinalCandidates() []string {
	return []string{"ING", "ED", "LY", "Y"}
}

// dedupe concatenates lists keeping the first occurrence of each value.
func dedupe(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
