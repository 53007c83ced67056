// Package ortho models orthographic chord rules and segments words into chords.
package ortho

import (
	"errors"
	"fmt"
	"strings"
)

// Category selects one of the four rule lists.
type Category int

// Rule list categories, in chord order.
const (
	Starts Category = iota
	Vowels
	FirstEnds
	SecondEnds
)

// Categories lists every category in chord order.
var Categories = []Category{Starts, Vowels, FirstEnds, SecondEnds}

// ErrUnknownCategory is returned when a category name cannot be parsed.
var ErrUnknownCategory = errors.New("unknown rule category")

var categoryNames = [...]string{"start", "vowel", "first-end", "second-end"}

func (c Category) String() string {
	if c < Starts || c > SecondEnds {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory accepts singular, plural and short names ("first", "second").
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "start", "starts", "s":
		return Starts, nil
	case "vowel", "vowels", "v":
		return Vowels, nil
	case "first-end", "first-ends", "first", "end", "ends", "e":
		return FirstEnds, nil
	case "second-end", "second-ends", "second", "final", "finals":
		return SecondEnds, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}
