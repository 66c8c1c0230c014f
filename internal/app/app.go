// Package app is the root Bubble Tea model: it routes between screens,
// owns the realtime subscription's effects on the rest of the UI, and
// renders the shared header and bottom bar around the active screen.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mfellner/pinnwand/internal/api"
	"github.com/mfellner/pinnwand/internal/feedback"
	"github.com/mfellner/pinnwand/internal/keys"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/realtime"
	"github.com/mfellner/pinnwand/internal/session"
	"github.com/mfellner/pinnwand/internal/store"
	msync "github.com/mfellner/pinnwand/internal/sync"
	"github.com/mfellner/pinnwand/internal/ui"
	"github.com/mfellner/pinnwand/internal/ui/bell"
	"github.com/mfellner/pinnwand/internal/ui/board"
	"github.com/mfellner/pinnwand/internal/ui/dashboard"
	"github.com/mfellner/pinnwand/internal/ui/detail"
	"github.com/mfellner/pinnwand/internal/ui/login"
	"github.com/mfellner/pinnwand/internal/ui/msgform"
)

// screen identifies the active view.
type screen int

const (
	screenLogin screen = iota
	screenDashboard
	screenBoard
	screenDetail
	screenForm
	screenBell
)

// NoticeMsg delivers a feedback slot change. main wires the feedback
// center's listener to program.Send with this type.
type NoticeMsg struct {
	Notice feedback.Notice
}

// RealtimeMsg delivers a realtime event. main wires the channel
// subscription to program.Send with this type.
type RealtimeMsg struct {
	Event realtime.Event
}

// AuthFailedMsg is sent when the gateway saw a 401 and cleared the
// session; the app falls back to the login screen.
type AuthFailedMsg struct{}

// unreadMsg carries the unread notification count for the header badge.
type unreadMsg struct {
	count int
}

// notificationStoredMsg reports that a realtime event was appended to
// the notification log.
type notificationStoredMsg struct {
	err error
}

// Model is the root application model.
type Model struct {
	client   *api.Client
	sessions *session.Store
	notices  *feedback.Center
	channel  *realtime.Channel
	store    store.Store
	logger   *zap.Logger
	keyMap   *keys.KeyMap

	active screen
	user   model.User
	notice *feedback.Notice
	unread int

	login     login.Model
	dashboard dashboard.Model
	board     board.Model
	detail    detail.Model
	form      msgform.Model
	bell      bell.Model

	// prior remembers where a transient screen (form, bell) returns to.
	prior screen

	layout ui.Layout
}

// New creates the root model. The screen shown first depends on
// whether a session is already stored.
func New(client *api.Client, sessions *session.Store, notices *feedback.Center,
	channel *realtime.Channel, st store.Store, logger *zap.Logger) Model {

	m := Model{
		client:   client,
		sessions: sessions,
		notices:  notices,
		channel:  channel,
		store:    st,
		logger:   logger,
		keyMap:   keys.DefaultKeyMap(),
		layout:   ui.NewLayout(80, 24),
	}

	m.login = login.New(client, m.contentWidth(), m.contentHeight())
	if user, err := sessions.User(); err == nil && sessions.IsAuthenticated() {
		m.user = user
		m.active = screenDashboard
		m.dashboard = dashboard.New(client, m.keyMap, m.contentWidth(), m.contentHeight())
	} else {
		m.active = screenLogin
	}
	return m
}

// Init starts the first screen and, with a stored session, the
// realtime connection.
func (m Model) Init() tea.Cmd {
	if m.active == screenLogin {
		return m.login.Init()
	}
	return tea.Batch(m.dashboard.Init(), m.connect(), m.refreshUnread())
}

func (m Model) contentWidth() int  { return m.layout.ContentWidth() }
func (m Model) contentHeight() int { return m.layout.ContentHeight() }

// connect establishes the realtime subscription for the current user.
func (m Model) connect() tea.Cmd {
	userID := m.user.ID
	return func() tea.Msg {
		if err := m.channel.Connect(context.Background(), userID); err != nil {
			m.logger.Warn("realtime connect failed", zap.Error(err))
		}
		return nil
	}
}

func (m Model) refreshUnread() tea.Cmd {
	return func() tea.Msg {
		n, err := m.store.UnreadCount(context.Background())
		if err != nil {
			return nil
		}
		return unreadMsg{count: n}
	}
}

// Update routes messages to the active screen and handles the global
// concerns: window size, quit, screen switches, realtime effects.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.resizeScreens()
		return m, nil

	case NoticeMsg:
		if msg.Notice.Text == "" {
			m.notice = nil
		} else {
			n := msg.Notice
			m.notice = &n
		}
		return m, nil

	case AuthFailedMsg:
		if m.active == screenLogin {
			return m, nil
		}
		m.active = screenLogin
		return m, m.login.Reset()

	case RealtimeMsg:
		return m.handleRealtime(msg.Event)

	case unreadMsg:
		m.unread = msg.count
		return m, nil

	case notificationStoredMsg:
		if msg.err != nil {
			m.logger.Warn("storing notification failed", zap.Error(msg.err))
			return m, nil
		}
		cmds := []tea.Cmd{m.refreshUnread()}
		if m.active == screenBell {
			var cmd tea.Cmd
			m.bell, cmd = m.bell.Update(bell.RefreshMsg{})
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case login.LoggedInMsg:
		m.user = msg.User
		m.active = screenDashboard
		m.dashboard = dashboard.New(m.client, m.keyMap, m.contentWidth(), m.contentHeight())
		return m, tea.Batch(m.dashboard.Init(), m.connect(), m.refreshUnread())

	case dashboard.OpenBoardMsg:
		return m.openBoard(msg.Board)

	case board.OpenMessageMsg:
		return m.openDetail(msg.MessageID)

	case bell.OpenMessageMsg:
		m.active = m.prior
		return m.openDetail(msg.MessageID)

	case bell.StoreChangedMsg:
		return m, m.refreshUnread()

	case detail.EditMessageMsg:
		m.prior = m.active
		m.active = screenForm
		m.form = msgform.NewEdit(m.client, msg.Message, m.contentWidth(), m.contentHeight())
		return m, m.form.Init()

	case msgform.SavedMsg:
		return m.openDetail(msg.Message.ID)

	case msgform.CancelledMsg:
		m.active = m.prior
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActive(msg)
}

// handleGlobalKey processes keys that work on every screen except the
// login form and text inputs.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit, true
	}
	if m.active == screenLogin || m.active == screenForm {
		return m, nil, false
	}
	if m.active == screenDetail && m.detail.Capturing() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keyMap.Dashboard):
		m.active = screenDashboard
		m.dashboard = dashboard.New(m.client, m.keyMap, m.contentWidth(), m.contentHeight())
		return m, m.dashboard.Init(), true
	case key.Matches(msg, m.keyMap.Assigned):
		mdl, cmd := m.openBoard(model.BoardAssigned)
		return mdl, cmd, true
	case key.Matches(msg, m.keyMap.Created):
		mdl, cmd := m.openBoard(model.BoardCreated)
		return mdl, cmd, true
	case key.Matches(msg, m.keyMap.Announcements):
		mdl, cmd := m.openBoard(model.BoardAnnouncement)
		return mdl, cmd, true
	case key.Matches(msg, m.keyMap.NewMessage):
		m.prior = m.active
		m.active = screenForm
		m.form = msgform.New(m.client, m.contentWidth(), m.contentHeight())
		return m, m.form.Init(), true
	case key.Matches(msg, m.keyMap.Bell):
		m.prior = m.active
		m.active = screenBell
		m.bell = bell.New(m.store, m.keyMap, m.contentWidth(), m.contentHeight())
		return m, m.bell.Init(), true
	case key.Matches(msg, m.keyMap.Back):
		return m.goBack()
	}
	return m, nil, false
}

func (m Model) goBack() (tea.Model, tea.Cmd, bool) {
	switch m.active {
	case screenBell:
		m.active = m.prior
		return m, m.refreshUnread(), true
	case screenDetail:
		m.active = screenBoard
		if m.board.Title() == "" {
			m.active = screenDashboard
		}
		return m, nil, true
	case screenBoard:
		m.active = screenDashboard
		m.dashboard = dashboard.New(m.client, m.keyMap, m.contentWidth(), m.contentHeight())
		return m, m.dashboard.Init(), true
	}
	return m, nil, false
}

func (m Model) openBoard(b model.BoardType) (tea.Model, tea.Cmd) {
	m.active = screenBoard
	m.board = board.New(m.client, m.keyMap, b, m.contentWidth(), m.contentHeight())
	return m, m.board.Init()
}

func (m Model) openDetail(id int) (tea.Model, tea.Cmd) {
	m.active = screenDetail
	m.detail = detail.New(m.client, m.keyMap, m.user, id, m.contentWidth(), m.contentHeight())
	return m, tea.Batch(m.detail.Init(), m.refreshUnread())
}

// handleRealtime appends the event to the notification log and, when a
// detail view is open, forwards it there for the live merge.
func (m Model) handleRealtime(ev realtime.Event) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if n, ok := msync.NotificationFor(ev); ok {
		cmds = append(cmds, func() tea.Msg {
			err := m.store.AddNotification(context.Background(), n)
			return notificationStoredMsg{err: err}
		})
	}

	if m.active == screenDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(detail.EventMsg{Event: ev})
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// updateActive forwards a message to whichever screen is showing.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case screenLogin:
		m.login, cmd = m.login.Update(msg)
	case screenDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case screenBoard:
		m.board, cmd = m.board.Update(msg)
	case screenDetail:
		m.detail, cmd = m.detail.Update(msg)
	case screenForm:
		m.form, cmd = m.form.Update(msg)
	case screenBell:
		m.bell, cmd = m.bell.Update(msg)
	}
	return m, cmd
}

func (m *Model) resizeScreens() {
	w, h := m.contentWidth(), m.contentHeight()
	m.login.SetSize(w, h)
	m.dashboard.SetSize(w, h)
	m.board.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.form.SetSize(w, h)
	m.bell.SetSize(w, h)
}

// View composes header, active screen, and bottom bar. The login
// screen renders full-frame on its own.
func (m Model) View() string {
	if m.active == screenLogin {
		return m.login.View()
	}

	var title, content, hints string
	switch m.active {
	case screenDashboard:
		title = "Pinnwand"
		content = m.dashboard.View()
		hints = "2/3/4: boards · n: neue nachricht · b: mitteilungen · ctrl+c: beenden"
	case screenBoard:
		title = m.board.Title()
		content = m.board.View()
		hints = "enter: öffnen · v: archiv · p: priorität · r: aktualisieren · esc: zurück"
	case screenDetail:
		title = m.detail.Title()
		content = m.detail.View()
		hints = "c: kommentar · a: archivieren · m: mir zuweisen · s: teilen · e: bearbeiten · esc: zurück"
	case screenForm:
		title = m.form.Title()
		content = m.form.View()
		hints = "esc: abbrechen"
	case screenBell:
		title = "Mitteilungen"
		content = m.bell.View()
		hints = "g: alle als gelesen · x: entfernen · esc: zurück"
	}

	badge := fmt.Sprintf("Mitteilungen: %d", m.unread)
	header := m.layout.RenderHeader(title, badge)
	bottom := m.layout.RenderBottomBar(m.notice, hints)
	return m.layout.RenderWithFrame(header, content, bottom)
}
