// Package reportui provides the Bubble Tea interface for browsing stored
// sweep runs.
package reportui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/orthostat/internal/model"
	"github.com/verte-zerg/orthostat/internal/stats"
	"github.com/verte-zerg/orthostat/internal/store"
)

const (
	tabRuns = iota
	tabResults
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#3A8AC8"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea run browser.
type Model struct {
	store *store.Store
	cfg   model.ReportConfig
	now   func() time.Time

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	runs      table.Model
	results   viewport.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
}

// NewModel constructs the run browser and loads the first report.
func NewModel(st *store.Store, cfg model.ReportConfig) *Model {
	m := &Model{
		store:   st,
		cfg:     cfg,
		now:     time.Now,
		tabs:    []string{"Runs", "Results"},
		runs:    newRunsTable(),
		results: viewport.New(0, 0),
	}
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Kind: "
	m.filterInput.Placeholder = "vowels, starts, ends, ..."
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)
	m.runs.Focus()
	m.refreshReport()
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
		m.updateLayout()
		m.renderResults()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h", "right", "l", "tab":
			m.switchTab()
			return m, tea.ClearScreen
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.cfg.Kind)
			return m, m.filterInput.Focus()
		case "enter":
			if m.activeTab == tabRuns {
				m.selectCurrentRun()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabRuns {
				m.runs.GotoTop()
			} else {
				m.results.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRuns {
				m.runs.GotoBottom()
			} else {
				m.results.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabRuns {
			m.runs, cmd = m.runs.Update(msg)
		} else {
			m.results, cmd = m.results.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) switchTab() {
	m.activeTab = (m.activeTab + 1) % len(m.tabs)
	if m.activeTab == tabRuns {
		m.runs.Focus()
	} else {
		m.runs.Blur()
	}
}

func (m *Model) selectCurrentRun() {
	idx := m.runs.Cursor()
	if idx < 0 || idx >= len(m.report.Runs) {
		return
	}
	m.cfg.RunID = m.report.Runs[idx].ID
	m.refreshReport()
	m.activeTab = tabResults
	m.runs.Blur()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.cfg.Kind = strings.TrimSpace(m.filterInput.Value())
		m.cfg.RunID = ""
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.runs.SetRows(runRows(report.Runs, m.now()))
	m.renderResults()
}

func (m *Model) renderResults() {
	if m.report.Selected == nil {
		m.results.SetContent("No run selected.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if err := stats.RenderRun(&buf, *m.report.Selected, m.report.Results); err != nil {
		m.results.SetContent(fmt.Sprintf("Failed to render run: %v", err))
		return
	}
	buf.WriteString("\n")
	if err := stats.RenderCurves(&buf, m.report, width, true); err != nil {
		m.results.SetContent(fmt.Sprintf("Failed to render curves: %v", err))
		return
	}
	m.results.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(lipgloss.Height(activeNavStyle.Render("X")), 1) + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.results.Width = m.width
	m.results.Height = bodyHeight
	m.runs.SetWidth(m.width)
	m.runs.SetHeight(max(bodyHeight-1, 1))
	m.filterInput.Width = max(m.width-lipgloss.Width(m.filterInput.Prompt)-2, 10)
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	kind := m.cfg.Kind
	if kind == "" {
		kind = "any"
	}
	summary := fmt.Sprintf("Kind: %s  Runs: %d", kind, len(m.report.Runs))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return m.filterInput.View() + "\n" + headerStyle.Render("enter: apply  esc: cancel (empty kind shows all runs)")
	}
	if m.activeTab == tabRuns {
		if len(m.report.Runs) == 0 {
			return "No runs found. Run: orthostat sweep <kind>"
		}
		return mutedStyle.Render(m.runs.View())
	}
	return m.results.View()
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Tabs: left/right  Select run: enter  Scroll: up/down/pgup/pgdn  Filter: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func newRunsTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Kind", Width: 15},
			{Title: "Corpus", Width: 12},
			{Title: "Baseline", Width: 9},
			{Title: "Candidates", Width: 10},
			{Title: "Finished", Width: 16},
		}),
		table.WithHeight(1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#2A4A6A"))
	t.SetStyles(styles)
	return t
}

func runRows(runs []model.RunRecord, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, table.Row{
			id,
			run.Kind,
			run.Corpus,
			fmt.Sprintf("%.4f", run.Baseline),
			humanize.Comma(int64(run.Candidates)),
			humanize.RelTime(run.EndedAt, now, "ago", "from now"),
		})
	}
	return rows
}

func padLine(line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		return line + strings.Repeat(" ", width-w)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
