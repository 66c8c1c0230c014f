// Package board renders a filtered message board grouped into
// department columns.
package board

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/api"
	"github.com/mfellner/pinnwand/internal/keys"
	"github.com/mfellner/pinnwand/internal/model"
	msync "github.com/mfellner/pinnwand/internal/sync"
	"github.com/mfellner/pinnwand/internal/theme"
)

// OpenMessageMsg asks the parent to open the detail view for a message.
type OpenMessageMsg struct {
	MessageID int
}

// loadedMsg carries a board fetch result back to Update. The board and
// filter identify the request so responses for an outdated filter are
// discarded.
type loadedMsg struct {
	board    model.BoardType
	filter   api.BoardFilter
	messages []model.Message
	err      error
}

// departmentsMsg carries the department list, fetched once per screen.
type departmentsMsg struct {
	departments []model.Department
	err         error
}

// Titles shown in the header per board.
var boardTitles = map[model.BoardType]string{
	model.BoardAssigned:     "Meine Nachrichten",
	model.BoardCreated:      "Zugewiesene Nachrichten",
	model.BoardAnnouncement: "Pin Wand",
}

// priorityCycle is the order the priority filter steps through.
var priorityCycle = []string{"", "hoch", "mittel", "niedrig"}

// Model is the board screen.
type Model struct {
	client *api.Client
	keyMap *keys.KeyMap

	board       model.BoardType
	filter      api.BoardFilter
	departments []model.Department
	groups      []msync.DepartmentGroup
	loaded      bool

	// cursor position: group index and message index within the group
	col int
	row int

	width  int
	height int
}

// New creates a board screen for the given board.
func New(client *api.Client, keyMap *keys.KeyMap, board model.BoardType, width, height int) Model {
	return Model{
		client: client,
		keyMap: keyMap,
		board:  board,
		width:  width,
		height: height,
	}
}

// Title returns the board's display title including active filters.
func (m Model) Title() string {
	title := boardTitles[m.board]
	if m.filter.Archived {
		title += " · Archiv"
	}
	if m.filter.Priority != "" {
		title += " · " + m.filter.Priority
	}
	return title
}

// Init fetches departments and the initial message list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchDepartments(), m.fetch())
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) fetchDepartments() tea.Cmd {
	return func() tea.Msg {
		deps, err := m.client.ListDepartments(context.Background())
		return departmentsMsg{departments: deps, err: err}
	}
}

func (m Model) fetch() tea.Cmd {
	board, filter := m.board, m.filter
	return func() tea.Msg {
		msgs, err := m.client.Board(context.Background(), board, filter)
		return loadedMsg{board: board, filter: filter, messages: msgs, err: err}
	}
}

// Update handles messages for the board screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case departmentsMsg:
		if msg.err != nil {
			return m, nil
		}
		m.departments = msg.departments
		m.regroup(m.flatten())
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			return m, nil
		}
		// A response for a filter the user has since changed is stale.
		if msg.board != m.board || msg.filter != m.filter {
			return m, nil
		}
		m.loaded = true
		m.regroup(msg.messages)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Left):
			m.moveColumn(-1)
		case key.Matches(msg, m.keyMap.Right):
			m.moveColumn(1)
		case key.Matches(msg, m.keyMap.Up):
			if m.row > 0 {
				m.row--
			}
		case key.Matches(msg, m.keyMap.Down):
			if g := m.currentGroup(); g != nil && m.row < len(g.Messages)-1 {
				m.row++
			}
		case key.Matches(msg, m.keyMap.Select):
			if sel := m.selected(); sel != nil {
				id := sel.ID
				return m, func() tea.Msg { return OpenMessageMsg{MessageID: id} }
			}
		case key.Matches(msg, m.keyMap.Refresh):
			return m, m.fetch()
		case key.Matches(msg, m.keyMap.ToggleArchivedFilter):
			m.filter.Archived = !m.filter.Archived
			m.row = 0
			return m, m.fetch()
		case key.Matches(msg, m.keyMap.CyclePriority):
			m.filter.Priority = nextPriority(m.filter.Priority)
			m.row = 0
			return m, m.fetch()
		}
	}
	return m, nil
}

// flatten rebuilds the plain message list from the current groups, for
// regrouping when the department list arrives after the messages.
func (m Model) flatten() []model.Message {
	var out []model.Message
	for _, g := range m.groups {
		out = append(out, g.Messages...)
	}
	return out
}

func (m *Model) regroup(messages []model.Message) {
	if len(m.departments) == 0 {
		// Departments not loaded yet; show everything in one column.
		m.groups = []msync.DepartmentGroup{{
			Department: model.Department{Name: "Alle"},
			Messages:   messages,
		}}
	} else {
		m.groups = msync.GroupByDepartment(messages, m.departments)
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.col >= len(m.groups) {
		m.col = len(m.groups) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if g := m.currentGroup(); g != nil && m.row >= len(g.Messages) {
		m.row = len(g.Messages) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) moveColumn(delta int) {
	next := m.col + delta
	if next < 0 || next >= len(m.groups) {
		return
	}
	m.col = next
	m.row = 0
	m.clampCursor()
}

func (m Model) currentGroup() *msync.DepartmentGroup {
	if m.col < 0 || m.col >= len(m.groups) {
		return nil
	}
	return &m.groups[m.col]
}

func (m Model) selected() *model.Message {
	g := m.currentGroup()
	if g == nil || m.row < 0 || m.row >= len(g.Messages) {
		return nil
	}
	return &g.Messages[m.row]
}

func nextPriority(current string) string {
	for i, p := range priorityCycle {
		if p == current {
			return priorityCycle[(i+1)%len(priorityCycle)]
		}
	}
	return ""
}

// View renders the department columns side by side.
func (m Model) View() string {
	if !m.loaded {
		return theme.HelpStyle.Render("Wird geladen …")
	}
	if len(m.groups) == 0 {
		return theme.EmptyStyle.Render("Keine Nachrichten")
	}

	colWidth := m.width/len(m.groups) - 2
	if colWidth < 24 {
		colWidth = 24
	}

	cols := make([]string, 0, len(m.groups))
	for i, g := range m.groups {
		cols = append(cols, m.renderColumn(g, colWidth, i == m.col))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderColumn(g msync.DepartmentGroup, width int, focused bool) string {
	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%s (%d)", g.Department.Name, len(g.Messages)))

	body := header + "\n\n"
	if len(g.Messages) == 0 {
		body += theme.EmptyStyle.Render("Keine Nachrichten")
	} else {
		for i, msg := range g.Messages {
			body += m.renderItem(msg, width, focused && i == m.row) + "\n"
		}
	}

	style := theme.CardStyle.Width(width)
	if focused {
		style = style.BorderForeground(theme.ColorBlue)
	}
	return style.Render(body)
}

func (m Model) renderItem(msg model.Message, width int, selected bool) string {
	line := theme.PriorityStyle(msg.Priority).Render("●") + " " + msg.Title
	if msg.Status.Name != "" {
		line += " " + theme.StatusStyle(msg.Status).Render(msg.Status.Name)
	}
	if msg.IsArchived {
		line = theme.ArchivedStyle.Render(line)
	}

	style := lipgloss.NewStyle().Width(width - 4)
	if selected {
		style = theme.SelectedItemStyle.Width(width - 4)
	}
	return style.Render(line)
}
