// Package dashboard renders the landing screen: one summary card per
// board with its latest messages and total count.
package dashboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/api"
	"github.com/mfellner/pinnwand/internal/keys"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/theme"
)

// OpenBoardMsg asks the parent to switch to the given board.
type OpenBoardMsg struct {
	Board model.BoardType
}

// loadedMsg carries the dashboard payload back to Update.
type loadedMsg struct {
	dashboard model.Dashboard
	err       error
}

// card pairs a board with its display title, in screen order.
type card struct {
	board model.BoardType
	title string
}

var cards = []card{
	{model.BoardAssigned, "Meine Nachrichten"},
	{model.BoardCreated, "Zugewiesene Nachrichten"},
	{model.BoardAnnouncement, "Pin Wand"},
}

// Model is the dashboard screen.
type Model struct {
	client  *api.Client
	keyMap  *keys.KeyMap
	data    model.Dashboard
	loaded  bool
	focused int
	width   int
	height  int
}

// New creates the dashboard screen.
func New(client *api.Client, keyMap *keys.KeyMap, width, height int) Model {
	return Model{
		client: client,
		keyMap: keyMap,
		width:  width,
		height: height,
	}
}

// Init triggers the initial fetch.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		d, err := m.client.Dashboard(context.Background())
		return loadedMsg{dashboard: d, err: err}
	}
}

// Update handles messages for the dashboard screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			// The gateway already raised the error banner; keep
			// whatever data is on screen.
			return m, nil
		}
		m.data = msg.dashboard
		m.loaded = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Left), key.Matches(msg, m.keyMap.Up):
			if m.focused > 0 {
				m.focused--
			}
		case key.Matches(msg, m.keyMap.Right), key.Matches(msg, m.keyMap.Down):
			if m.focused < len(cards)-1 {
				m.focused++
			}
		case key.Matches(msg, m.keyMap.Select):
			return m, func() tea.Msg {
				return OpenBoardMsg{Board: cards[m.focused].board}
			}
		case key.Matches(msg, m.keyMap.Refresh):
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m Model) summary(b model.BoardType) model.BoardSummary {
	switch b {
	case model.BoardAssigned:
		return m.data.Assigned
	case model.BoardCreated:
		return m.data.Created
	case model.BoardAnnouncement:
		return m.data.Announcements
	}
	return model.BoardSummary{}
}

// View renders the three summary cards side by side.
func (m Model) View() string {
	if !m.loaded {
		return theme.HelpStyle.Render("Wird geladen …")
	}

	cardWidth := m.width/len(cards) - 2
	if cardWidth < 20 {
		cardWidth = 20
	}

	rendered := make([]string, 0, len(cards))
	for i, c := range cards {
		rendered = append(rendered, m.renderCard(c, m.summary(c.board), cardWidth, i == m.focused))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderCard(c card, s model.BoardSummary, width int, focused bool) string {
	title := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%s (%d)", c.title, s.Total))

	body := title + "\n\n"
	if len(s.Latest) == 0 {
		body += theme.EmptyStyle.Render("Keine Nachrichten")
	} else {
		for _, msg := range s.Latest {
			line := theme.PriorityStyle(msg.Priority).Render("●") + " " + msg.Title
			body += lipgloss.NewStyle().Width(width - 4).Render(line) + "\n"
		}
	}

	style := theme.CardStyle.Width(width)
	if focused {
		style = style.BorderForeground(theme.ColorBlue)
	}
	return style.Render(body)
}
