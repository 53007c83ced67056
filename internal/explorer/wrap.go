package explorer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/orthostat/internal/analysis"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// styleFor picks the color of a word from how the edit changed it.
func styleFor(c analysis.Change) lipgloss.Style {
	switch c.Status {
	case analysis.Gained:
		return gainedStyle
	case analysis.Lost:
		return lostStyle
	case analysis.BothFailed:
		return failedStyle
	}
	switch {
	case c.Delta < 0:
		return betterStyle
	case c.Delta > 0:
		return worseStyle
	default:
		return sameStyle
	}
}

// buildStyledWords lays out words separated by single spaces. The selected
// word is underlined.
func buildStyledWords(words []string, changes []analysis.Change, selected int) []styledRune {
	out := make([]styledRune, 0, len(words)*6)
	for i, word := range words {
		if i > 0 {
			out = append(out, styledRune{s: " ", width: 1, isSpace: true})
		}
		style := sameStyle
		if i < len(changes) {
			style = styleFor(changes[i])
		}
		if i == selected {
			style = style.Underline(true)
		}
		for _, r := range word {
			out = append(out, styledRune{
				s:     style.Render(string(r)),
				width: runewidth.RuneWidth(r),
			})
		}
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits width, or mid-word
// when a word is wider than the line.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width <= width || len(line) == 0 {
			line = append(line, item)
			lineWidth += item.width
			if item.isSpace {
				lastSpaceIdx = len(line) - 1
			}
			i++
			continue
		}
		if item.isSpace {
			out.WriteString(renderStyledRunes(line))
			out.WriteRune('\n')
			line, lineWidth, lastSpaceIdx = line[:0], 0, -1
			i++
			continue
		}
		if lastSpaceIdx < 0 {
			out.WriteString(renderStyledRunes(line))
			out.WriteRune('\n')
			line, lineWidth = line[:0], 0
			continue
		}
		out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
		out.WriteRune('\n')
		line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
		lineWidth, lastSpaceIdx = 0, -1
		for j, r := range line {
			lineWidth += r.width
			if r.isSpace {
				lastSpaceIdx = j
			}
		}
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}
