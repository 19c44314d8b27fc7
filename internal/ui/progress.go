// Package ui renders `buzz -t`'s live test progress: a spinner next to
// each running test block that resolves to a check mark or a cross,
// mirroring the donor's own build-pipeline progress model but driven by
// per-test Events instead of per-file pipeline stages.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Status is one test block's current state.
type Status uint8

const (
	StatusQueued Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
)

// Event reports one test block's status change, emitted by
// internal/driver's RunTests as it works through the `test "..."`
// blocks in declaration order (§4.3, final paragraph).
type Event struct {
	Name    string
	Status  Status
	Message string // populated only for StatusFailed
}

type eventMsg Event
type doneMsg struct{}

type testItem struct {
	name    string
	status  Status
	message string
}

type model struct {
	title  string
	events <-chan Event
	sp     spinner.Model
	items  []testItem
	index  map[string]int
	done   bool
}

// NewModel returns a Bubble Tea model that renders names' test blocks as
// they report progress on events. Names are supplied up front (in
// declaration order) so the queued list renders immediately.
func NewModel(title string, names []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	items := make([]testItem, len(names))
	index := make(map[string]int, len(names))
	for i, n := range names {
		items[i] = testItem{name: n, status: StatusQueued}
		index[n] = i
	}
	return &model{title: title, events: events, sp: sp, items: items, index: index}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, m.listen())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if idx, ok := m.index[msg.Name]; ok {
			m.items[idx].status = msg.Status
			m.items[idx].message = msg.Message
		}
		return m, m.listen()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	passed, failed := 0, 0
	for _, it := range m.items {
		b.WriteString("  ")
		b.WriteString(m.mark(it.status))
		b.WriteString(" ")
		b.WriteString(runewidth.Truncate(it.name, 60, "..."))
		if it.status == StatusFailed && it.message != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(" — " + it.message))
		}
		b.WriteString("\n")
		switch it.status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		}
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d passed, %d failed, %d total\n", passed, failed, len(m.items)))
	return b.String()
}

func (m *model) mark(s Status) string {
	switch s {
	case StatusRunning:
		return m.sp.View()
	case StatusPassed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	case StatusFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("✗")
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("·")
	}
}
