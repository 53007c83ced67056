// Package explorer provides the Bubble Tea interface for comparing how two
// rule sets segment sampled corpus words.
package explorer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/orthostat/internal/analysis"
	"github.com/verte-zerg/orthostat/internal/generator"
	"github.com/verte-zerg/orthostat/internal/ortho"
)

var (
	sameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	betterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	worseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	gainedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A8AC8"))
	lostStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Width(8)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea explorer.
type Model struct {
	base       ortho.Segmenter
	edited     ortho.Segmenter
	gen        *generator.Generator
	sampleSize int

	width  int
	height int

	words    []string
	changes  []analysis.Change
	selected int

	lookupMode  bool
	lookupInput textinput.Model
}

// NewModel constructs an explorer comparing edited against base on words
// drawn from gen.
func NewModel(base, edited ortho.Segmenter, gen *generator.Generator, sampleSize int) *Model {
	if sampleSize <= 0 {
		sampleSize = 30
	}
	m := &Model{
		base:       base,
		edited:     edited,
		gen:        gen,
		sampleSize: sampleSize,
	}
	m.lookupInput = textinput.New()
	m.lookupInput.Prompt = "Word: "
	m.lookupInput.CharLimit = 64
	m.resample()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.lookupMode {
			return m.updateLookup(msg)
		}
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "left", "h":
			m.move(-1)
		case "right", "l", "tab":
			m.move(1)
		case "home":
			m.selected = 0
		case "end":
			m.selected = max(len(m.words)-1, 0)
		case "r", " ":
			m.resample()
		case "/":
			m.lookupMode = true
			m.lookupInput.SetValue("")
			return m, m.lookupInput.Focus()
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.words) == 0 {
		return "No words to sample.\n"
	}
	contentWidth := int(float64(m.width) * 0.70)
	if m.width == 0 {
		contentWidth = 0
	} else if contentWidth < 1 {
		contentWidth = 1
	}
	text := wrapStyledRunes(buildStyledWords(m.words, m.changes, m.selected), contentWidth)
	parts := []string{text, "", m.renderDetail()}
	if m.lookupMode {
		parts = append(parts, "", m.lookupInput.View())
	}
	content := strings.Join(parts, "\n")
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	if contentWidth > 0 {
		content = lipgloss.NewStyle().Width(contentWidth).Render(content)
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + footer
}

func (m *Model) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.lookupMode = false
		m.lookupInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.lookupMode = false
		m.lookupInput.Blur()
		m.lookup(m.lookupInput.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.lookupInput, cmd = m.lookupInput.Update(msg)
	return m, cmd
}

// lookup selects word in the current sample, appending it when absent.
func (m *Model) lookup(word string) {
	word = strings.ToUpper(strings.TrimSpace(word))
	if word == "" {
		return
	}
	for i, w := range m.words {
		if w == word {
			m.selected = i
			return
		}
	}
	m.words = append(m.words, word)
	m.changes = append(m.changes, analysis.MeasureChange(word, m.edited, m.base))
	m.selected = len(m.words) - 1
}

func (m *Model) move(delta int) {
	if len(m.words) == 0 {
		return
	}
	m.selected = (m.selected + delta + len(m.words)) % len(m.words)
}

func (m *Model) resample() {
	m.words = m.words[:0]
	for _, w := range m.gen.Sample(m.sampleSize) {
		m.words = append(m.words, strings.ToUpper(w))
	}
	m.changes = make([]analysis.Change, len(m.words))
	for i, w := range m.words {
		m.changes[i] = analysis.MeasureChange(w, m.edited, m.base)
	}
	m.selected = 0
}

func (m *Model) renderDetail() string {
	if m.selected >= len(m.words) {
		return ""
	}
	word := m.words[m.selected]
	lines := []string{
		sameStyle.Bold(true).Render(word) + "  " + styleFor(m.changes[m.selected]).Render(m.changes[m.selected].String()),
		labelStyle.Render("base") + describe(m.base, word),
		labelStyle.Render("edited") + describe(m.edited, word),
	}
	return strings.Join(lines, "\n")
}

// describe renders the outline and chord slots of word, e.g.
// "TH/EY  (TH|-|-|- -|EY|-|-)".
func describe(seg ortho.Segmenter, word string) string {
	chords, ok := seg.Segment(word)
	if !ok {
		return failedStyle.Render("no segmentation")
	}
	slots := make([]string, len(chords))
	for i, c := range chords {
		slots[i] = c.String()
	}
	return fmt.Sprintf("%s  (%s)", ortho.Outline(chords), strings.Join(slots, " "))
}

type sampleSummary struct {
	better, worse, gained, lost int
}

func (m *Model) summary() sampleSummary {
	var s sampleSummary
	for _, c := range m.changes {
		switch {
		case c.Status == analysis.Gained:
			s.gained++
		case c.Status == analysis.Lost:
			s.lost++
		case c.Status == analysis.Scored && c.Delta < 0:
			s.better++
		case c.Status == analysis.Scored && c.Delta > 0:
			s.worse++
		}
	}
	return s
}

func (m *Model) renderFooter() string {
	s := m.summary()
	segments := []string{
		fmt.Sprintf("Words %d", len(m.words)),
		fmt.Sprintf("Better %d", s.better),
		fmt.Sprintf("Worse %d", s.worse),
		fmt.Sprintf("Gained %d", s.gained),
		fmt.Sprintf("Lost %d", s.lost),
		"←/→ select · r resample · / look up · q quit",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
