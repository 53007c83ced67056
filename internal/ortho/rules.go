package ortho

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidRule is returned for rules that are empty or contain non-letters.
var ErrInvalidRule = errors.New("invalid rule")

// Rules is the four-list bundle that defines how words are segmented.
//
// A Rules value is never modified after construction: every edit returns a
// new value with its own backing arrays, so two edits of the same base never
// share state.
type Rules struct {
	lists [4][]string
}

// NewRules builds a Rules value from copies of the given lists.
func NewRules(starts, vowels, firstEnds, secondEnds []string) (Rules, error) {
	var r Rules
	for i, list := range [][]string{starts, vowels, firstEnds, secondEnds} {
		normalized := make([]string, 0, len(list))
		for _, rule := range list {
			n, err := NormalizeRule(rule)
			if err != nil {
				return Rules{}, fmt.Errorf("%s list: %w", Category(i), err)
			}
			normalized = append(normalized, n)
		}
		r.lists[i] = normalized
	}
	return r, nil
}

// MustRules is NewRules for fixed literals; it panics on invalid input.
func MustRules(starts, vowels, firstEnds, secondEnds []string) Rules {
	r, err := NewRules(starts, vowels, firstEnds, secondEnds)
	if err != nil {
		panic(err)
	}
	return r
}

// NormalizeRule upper-cases a rule and checks it only contains A-Z.
func NormalizeRule(rule string) (string, error) {
	rule = strings.ToUpper(strings.TrimSpace(rule))
	if rule == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidRule)
	}
	for i := 0; i < len(rule); i++ {
		if rule[i] < 'A' || rule[i] > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidRule, rule)
		}
	}
	return rule, nil
}

// List returns a copy of the rules in category c.
func (r Rules) List(c Category) []string {
	return slices.Clone(r.lists[c])
}

// Len returns the number of rules in category c.
func (r Rules) Len(c Category) int {
	return len(r.lists[c])
}

// Contains reports whether category c holds rule.
func (r Rules) Contains(c Category, rule string) bool {
	return slices.Contains(r.lists[c], rule)
}

// With returns a copy of r with rule appended to category c.
func (r Rules) With(c Category, rule string) Rules {
	out := r.clone()
	out.lists[c] = append(out.lists[c], rule)
	return out
}

// Without returns a copy of r with the first occurrence of rule removed from
// category c. Missing rules leave the copy unchanged.
func (r Rules) Without(c Category, rule string) Rules {
	out := r.clone()
	if idx := slices.Index(out.lists[c], rule); idx >= 0 {
		out.lists[c] = slices.Delete(out.lists[c], idx, idx+1)
	}
	return out
}

// Replace returns a copy of r with category c set to a copy of list.
func (r Rules) Replace(c Category, list []string) Rules {
	out := r.clone()
	out.lists[c] = slices.Clone(list)
	return out
}

// WithoutEnd removes rule from both ending lists.
func (r Rules) WithoutEnd(rule string) Rules {
	return r.Without(FirstEnds, rule).Without(SecondEnds, rule)
}

// MoveToFirst removes rule from the second endings and appends it to the
// first endings unless it is already there.
func (r Rules) MoveToFirst(rule string) Rules {
	out := r.Without(SecondEnds, rule)
	if !out.Contains(FirstEnds, rule) {
		out = out.With(FirstEnds, rule)
	}
	return out
}

func (r Rules) clone() Rules {
	var out Rules
	for i, list := range r.lists {
		out.lists[i] = slices.Clone(list)
	}
	return out
}

// Op is a rule edit operation.
type Op byte

// Edit operations.
const (
	OpAdd    Op = '+'
	OpRemove Op = '-'
	OpMove   Op = '>'
)

// Edit is a single modification of a rule list.
type Edit struct {
	Op       Op
	Category Category
	Rule     string
}

func (e Edit) String() string {
	return fmt.Sprintf("%c%s:%s", e.Op, e.Category, e.Rule)
}

// ParseEdit parses "[+|-|>]category:RULE". A missing operator means add.
func ParseEdit(s string) (Edit, error) {
	s = strings.TrimSpace(s)
	op := OpAdd
	if s != "" {
		switch Op(s[0]) {
		case OpAdd, OpRemove, OpMove:
			op = Op(s[0])
			s = s[1:]
		}
	}
	catName, rule, ok := strings.Cut(s, ":")
	if !ok {
		return Edit{}, fmt.Errorf("edit %q: expected category:RULE", s)
	}
	cat, err := ParseCategory(catName)
	if err != nil {
		return Edit{}, err
	}
	rule, err = NormalizeRule(rule)
	if err != nil {
		return Edit{}, err
	}
	if op == OpMove && cat != SecondEnds {
		return Edit{}, fmt.Errorf("edit %q: only second-end rules can be moved", s)
	}
	return Edit{Op: op, Category: cat, Rule: rule}, nil
}

// Apply applies edits in order and returns the resulting rules.
func (r Rules) Apply(edits ...Edit) (Rules, error) {
	out := r
	for _, e := range edits {
		switch e.Op {
		case OpAdd:
			out = out.With(e.Category, e.Rule)
		case OpRemove:
			if !out.Contains(e.Category, e.Rule) {
				return Rules{}, fmt.Errorf("%s rule %q not present", e.Category, e.Rule)
			}
			out = out.Without(e.Category, e.Rule)
		case OpMove:
			out = out.MoveToFirst(e.Rule)
		default:
			return Rules{}, fmt.Errorf("unknown edit operation %q", e.Op)
		}
	}
	return out, nil
}
