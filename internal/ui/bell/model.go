// Package bell renders the notification overlay: the persisted
// notification log, newest first, with mark-all-read and removal.
package bell

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/keys"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/store"
	"github.com/mfellner/pinnwand/internal/theme"
)

// OpenMessageMsg asks the parent to open the message a notification
// points at.
type OpenMessageMsg struct {
	MessageID int
}

// RefreshMsg tells the bell to reload from the store, e.g. after a
// realtime event appended a notification.
type RefreshMsg struct{}

// StoreChangedMsg tells the parent that the notification log was
// mutated here, so the unread badge needs a refresh.
type StoreChangedMsg struct{}

// loadedMsg carries the persisted notifications back to Update.
type loadedMsg struct {
	notifications []model.Notification
	err           error
}

// changedMsg reports a store mutation; the list reloads afterwards.
type changedMsg struct {
	err error
}

// Model is the notification overlay.
type Model struct {
	store  store.Store
	keyMap *keys.KeyMap

	items  []model.Notification
	cursor int
	loaded bool

	width  int
	height int
}

// New creates the notification overlay.
func New(st store.Store, keyMap *keys.KeyMap, width, height int) Model {
	return Model{
		store:  st,
		keyMap: keyMap,
		width:  width,
		height: height,
	}
}

// Init loads the notification log.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		items, err := m.store.GetNotifications(context.Background())
		return loadedMsg{notifications: items, err: err}
	}
}

// Update handles messages for the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshMsg:
		return m, m.load()

	case loadedMsg:
		if msg.err != nil {
			return m, nil
		}
		m.items = msg.notifications
		m.loaded = true
		if m.cursor >= len(m.items) {
			m.cursor = len(m.items) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.load(), func() tea.Msg { return StoreChangedMsg{} })

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keyMap.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keyMap.Select):
			if m.cursor < len(m.items) {
				n := m.items[m.cursor]
				return m, tea.Sequence(m.remove(n.ID), func() tea.Msg {
					return OpenMessageMsg{MessageID: n.MessageID}
				})
			}
		case key.Matches(msg, m.keyMap.MarkAllRead):
			return m, m.markAllRead()
		case key.Matches(msg, m.keyMap.Remove):
			if m.cursor < len(m.items) {
				return m, m.remove(m.items[m.cursor].ID)
			}
		}
	}
	return m, nil
}

func (m Model) markAllRead() tea.Cmd {
	return func() tea.Msg {
		return changedMsg{err: m.store.MarkAllRead(context.Background())}
	}
}

func (m Model) remove(id string) tea.Cmd {
	return func() tea.Msg {
		return changedMsg{err: m.store.DeleteNotification(context.Background(), id)}
	}
}

// View renders the notification list.
func (m Model) View() string {
	if !m.loaded {
		return theme.HelpStyle.Render("Wird geladen …")
	}

	title := lipgloss.NewStyle().Bold(true).Render("Mitteilungen")
	body := title + "\n\n"

	if len(m.items) == 0 {
		body += theme.EmptyStyle.Render("Keine Mitteilungen")
	} else {
		for i, n := range m.items {
			body += m.renderItem(n, i == m.cursor) + "\n"
		}
		body += "\n" + theme.HelpStyle.Render("g: alle als gelesen · x: entfernen · enter: öffnen")
	}

	return theme.CardStyle.Width(min(m.width-2, 80)).Render(body)
}

func (m Model) renderItem(n model.Notification, selected bool) string {
	line := n.Text
	if !n.Read {
		line = theme.UnreadStyle.Render("●") + " " + line
	} else {
		line = "  " + line
	}
	line += "  " + theme.HelpStyle.Render(n.CreatedAt.Format("02.01. 15:04"))

	style := lipgloss.NewStyle().Width(min(m.width-6, 76))
	if selected {
		style = theme.SelectedItemStyle.Width(min(m.width-6, 76))
	}
	return style.Render(line)
}
