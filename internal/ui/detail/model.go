// Package detail renders a single message: metadata, the attachment
// and activity lists, and the live comment thread. Realtime comment
// events merge into the open thread, deduplicated against the direct
// response to the user's own submissions.
package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/api"
	"github.com/mfellner/pinnwand/internal/keys"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/realtime"
	msync "github.com/mfellner/pinnwand/internal/sync"
	"github.com/mfellner/pinnwand/internal/theme"
)

// EventMsg delivers a realtime event to the open detail view. The root
// model forwards every incoming event this way.
type EventMsg struct {
	Event realtime.Event
}

// EditMessageMsg asks the parent to open the edit form for the message.
type EditMessageMsg struct {
	Message model.Message
}

// loadedMsg carries a fetch result back to Update. seq ties it to the
// request that produced it so late responses for a view the user has
// since reloaded are discarded.
type loadedMsg struct {
	seq     int
	message model.Message
	err     error
}

// commentSentMsg carries the stored comment after a submission.
type commentSentMsg struct {
	messageID int
	comment   model.Comment
	err       error
}

// archiveResultMsg resolves a pending archive toggle.
type archiveResultMsg struct {
	toggle msync.Toggle
	err    error
}

// assignResultMsg resolves a pending assign-to-me toggle.
type assignResultMsg struct {
	toggle msync.Toggle
	err    error
}

// usersLoadedMsg delivers the account list for the share picker.
type usersLoadedMsg struct {
	users []model.User
	err   error
}

// sharedMsg reports the outcome of a share operation.
type sharedMsg struct {
	err error
}

// shareBindings holds the share picker's selection on the heap so that
// huh's Value() pointer stays valid across Bubble Tea model copies.
type shareBindings struct {
	userIDs []int
}

// Model is the message detail screen.
type Model struct {
	client *api.Client
	keyMap *keys.KeyMap
	me     model.User

	view  *msync.MessageView
	seq   int
	msgID int

	body    viewport.Model
	input   textinput.Model
	typing  bool
	sending bool

	pendingArchive *msync.Toggle
	pendingAssign  *msync.Toggle

	shareForm *huh.Form
	shareFB   *shareBindings
	sharing   bool

	width  int
	height int
}

// New creates a detail screen for the given message id. The message
// body loads asynchronously; until then the view is in its loading
// state.
func New(client *api.Client, keyMap *keys.KeyMap, me model.User, messageID, width, height int) Model {
	input := textinput.New()
	input.Placeholder = "Kommentar schreiben …"
	input.CharLimit = 500

	m := Model{
		client: client,
		keyMap: keyMap,
		me:     me,
		view:   msync.NewMessageView(),
		msgID:  messageID,
		input:  input,
		width:  width,
		height: height,
	}
	m.body = viewport.New(width, m.bodyHeight())
	return m
}

// Capturing reports whether the screen currently owns all key input
// (comment entry or the share picker), so global shortcuts must not
// fire.
func (m Model) Capturing() bool {
	return m.typing || m.sharing
}

// Title returns the header title for the screen.
func (m Model) Title() string {
	if m.view.State != msync.ViewLoaded {
		return "Nachricht"
	}
	return m.view.Message.Title
}

// Init triggers the initial fetch.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.body.Width = width
	m.body.Height = m.bodyHeight()
}

func (m Model) bodyHeight() int {
	// One line is reserved for the comment input.
	h := m.height - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) fetch() tea.Cmd {
	m.seq++
	seq, id := m.seq, m.msgID
	m.view.Refetch()
	return func() tea.Msg {
		msg, err := m.client.GetMessage(context.Background(), id)
		return loadedMsg{seq: seq, message: msg, err: err}
	}
}

// Update handles messages for the detail screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		if msg.err != nil {
			// The gateway raised the banner; stay on stale data if any.
			if m.view.Message.ID != 0 {
				m.view.SetLoaded(m.view.Message)
			}
			return m, nil
		}
		m.view.SetLoaded(msg.message)
		m.refreshBody()
		m.body.GotoBottom()
		return m, nil

	case EventMsg:
		if m.view.ApplyEvent(msg.Event) {
			m.refreshBody()
			if m.view.TakeScrollRequest() {
				m.body.GotoBottom()
			}
		}
		return m, nil

	case commentSentMsg:
		m.sending = false
		if msg.err != nil {
			return m, nil
		}
		// The realtime echo may have landed first; ApplyComment drops
		// whichever copy arrives second.
		if msg.messageID == m.view.Message.ID && m.view.ApplyComment(msg.comment) {
			m.refreshBody()
			if m.view.TakeScrollRequest() {
				m.body.GotoBottom()
			}
		}
		return m, nil

	case archiveResultMsg:
		m.view.Message.IsArchived = msg.toggle.Resolve(msg.err)
		m.pendingArchive = nil
		m.refreshBody()
		return m, nil

	case assignResultMsg:
		assigned := msg.toggle.Resolve(msg.err)
		m.pendingAssign = nil
		if assigned && !m.view.Message.AssignedTo(m.me.ID) {
			m.view.Message.Assignee = &m.me
		}
		m.refreshBody()
		return m, nil

	case usersLoadedMsg:
		if msg.err != nil {
			m.sharing = false
			return m, nil
		}
		m.shareFB = &shareBindings{}
		m.shareForm = buildShareForm(m.shareFB, msg.users, m.width)
		return m, m.shareForm.Init()

	case sharedMsg:
		m.sharing = false
		if msg.err == nil {
			return m, m.fetch()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.sharing && m.shareForm != nil {
		return m.updateShareForm(msg)
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.sharing && m.shareForm != nil {
		return m.updateShareForm(msg)
	}

	if m.typing {
		switch msg.Type {
		case tea.KeyEnter:
			return m.submitComment()
		case tea.KeyEsc:
			m.typing = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.view.State != msync.ViewLoaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.Comment):
		m.typing = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keyMap.Refresh):
		return m, m.fetch()
	case key.Matches(msg, m.keyMap.Archive):
		return m.toggleArchive()
	case key.Matches(msg, m.keyMap.AssignToMe):
		return m.assignToMe()
	case key.Matches(msg, m.keyMap.Share):
		m.sharing = true
		return m, m.loadUsers()
	case key.Matches(msg, m.keyMap.Edit):
		message := m.view.Message
		return m, func() tea.Msg { return EditMessageMsg{Message: message} }
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m Model) submitComment() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.sending {
		return m, nil
	}
	m.sending = true
	m.input.Reset()
	m.typing = false
	m.input.Blur()

	id := m.view.Message.ID
	return m, func() tea.Msg {
		c, err := m.client.AddComment(context.Background(), id, text)
		return commentSentMsg{messageID: id, comment: c, err: err}
	}
}

// toggleArchive flips the archive flag with the confirm-then-apply
// policy: the displayed value does not change until the call succeeds,
// and a failure leaves it at the captured pre-toggle value.
func (m Model) toggleArchive() (Model, tea.Cmd) {
	if m.pendingArchive != nil {
		return m, nil
	}
	t := msync.NewToggle(m.view.Message.IsArchived)
	m.pendingArchive = &t

	id := m.view.Message.ID
	return m, func() tea.Msg {
		err := m.client.SetArchived(context.Background(), id, t.Desired)
		return archiveResultMsg{toggle: t, err: err}
	}
}

func (m Model) assignToMe() (Model, tea.Cmd) {
	if m.pendingAssign != nil || m.view.Message.AssignedTo(m.me.ID) {
		return m, nil
	}
	t := msync.NewToggle(false)
	m.pendingAssign = &t

	id := m.view.Message.ID
	return m, func() tea.Msg {
		err := m.client.AssignToMe(context.Background(), id)
		return assignResultMsg{toggle: t, err: err}
	}
}

func (m Model) loadUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := m.client.ListUsers(context.Background())
		return usersLoadedMsg{users: users, err: err}
	}
}

func buildShareForm(fb *shareBindings, users []model.User, width int) *huh.Form {
	opts := make([]huh.Option[int], 0, len(users))
	for _, u := range users {
		opts = append(opts, huh.NewOption(u.Name, u.ID))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Teilen mit").
				Options(opts...).
				Value(&fb.userIDs),
		),
	).WithWidth(min(width-4, 60))
}

func (m Model) updateShareForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.shareForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.shareForm = f
	}

	if m.shareForm.State == huh.StateCompleted {
		ids := m.shareFB.userIDs
		m.shareForm = nil
		if len(ids) == 0 {
			m.sharing = false
			return m, nil
		}
		return m, m.share(ids)
	}
	if m.shareForm.State == huh.StateAborted {
		m.shareForm = nil
		m.sharing = false
		return m, nil
	}
	return m, cmd
}

// share replaces the subscriber set and logs one share activity per
// chosen user.
func (m Model) share(userIDs []int) tea.Cmd {
	id := m.view.Message.ID
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.client.Assign(ctx, id, userIDs); err != nil {
			return sharedMsg{err: err}
		}
		for _, uid := range userIDs {
			uid := uid
			if err := m.client.StoreActivity(ctx, id, "hat geteilt mit", &uid); err != nil {
				return sharedMsg{err: err}
			}
		}
		return sharedMsg{}
	}
}

// refreshBody re-renders the viewport content from the current view.
func (m *Model) refreshBody() {
	m.body.SetContent(m.renderMessage())
}

func (m *Model) renderMessage() string {
	msg := m.view.Message
	var b strings.Builder

	meta := theme.PriorityStyle(msg.Priority).Render(string(msg.Priority))
	if msg.Status.Name != "" {
		meta += "  " + theme.StatusStyle(msg.Status).Render(msg.Status.Name)
	}
	if msg.IsArchived {
		meta += "  " + theme.ArchivedStyle.Render("Archiviert")
	}
	b.WriteString(meta + "\n\n")

	b.WriteString(msg.Description + "\n\n")

	b.WriteString(theme.HelpStyle.Render(fmt.Sprintf("Erstellt von %s", msg.Creator.Name)) + "\n")
	if msg.Assignee != nil {
		b.WriteString(theme.HelpStyle.Render(fmt.Sprintf("Zugewiesen an %s", msg.Assignee.Name)) + "\n")
	}

	if len(msg.Attachments) > 0 {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("Anhänge") + "\n")
		for _, a := range msg.Attachments {
			b.WriteString(fmt.Sprintf("  %s\n", a.OriginalName))
		}
	}

	if len(msg.Activities) > 0 {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("Aktivitäten") + "\n")
		for _, a := range msg.Activities {
			line := fmt.Sprintf("  %s %s", a.User.Name, a.Action)
			if a.Assignee != nil {
				line += " " + a.Assignee.Name
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("Kommentare") + "\n")
	if len(msg.Comments) == 0 {
		b.WriteString(theme.EmptyStyle.Render("  Keine Kommentare") + "\n")
	} else {
		for _, c := range msg.Comments {
			author := lipgloss.NewStyle().Bold(true).Render(c.User.Name)
			b.WriteString(fmt.Sprintf("  %s  %s\n    %s\n", author,
				theme.HelpStyle.Render(c.CreatedAt), c.Content))
		}
	}

	return theme.DetailPanelStyle.Width(m.width - 2).Render(b.String())
}

// View renders the message body above the comment input line.
func (m Model) View() string {
	if m.view.State != msync.ViewLoaded {
		return theme.HelpStyle.Render("Wird geladen …")
	}
	if m.sharing && m.shareForm != nil {
		return m.shareForm.View()
	}

	input := m.input.View()
	if !m.typing {
		input = theme.HelpStyle.Render("c: kommentar schreiben")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.body.View(), input)
}
