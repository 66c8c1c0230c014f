// Package msgform is the create/edit form for messages. Creation also
// writes the audit-log entries and uploads any attached files; the
// server's copy of the message comes back through SavedMsg.
package msgform

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/api"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/theme"
)

// SavedMsg signals the parent that the message was stored.
type SavedMsg struct {
	Message model.Message
}

// CancelledMsg signals the parent that the form was dismissed.
type CancelledMsg struct{}

// optionsMsg carries the select options fetched before the form shows.
type optionsMsg struct {
	statuses []model.Status
	users    []model.User
	err      error
}

// savedMsg carries the save result back to Update.
type savedMsg struct {
	message model.Message
	err     error
}

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title        string
	description  string
	priority     model.Priority
	statusID     int
	announcement bool
	assignees    []int
	attachments  string
}

// Model is the message form screen. A zero-id editing target means a
// new message is being created.
type Model struct {
	client *api.Client

	editing  *model.Message
	form     *huh.Form
	fb       *formBindings
	statuses []model.Status
	users    []model.User
	ready    bool
	saving   bool
	errText  string

	width  int
	height int
}

// New creates a form for a new message.
func New(client *api.Client, width, height int) Model {
	return newModel(client, nil, width, height)
}

// NewEdit creates a form prefilled from an existing message.
func NewEdit(client *api.Client, msg model.Message, width, height int) Model {
	return newModel(client, &msg, width, height)
}

func newModel(client *api.Client, editing *model.Message, width, height int) Model {
	fb := &formBindings{priority: model.PriorityMedium}
	if editing != nil {
		fb.title = editing.Title
		fb.description = editing.Description
		fb.priority = editing.Priority
		fb.statusID = editing.Status.ID
		fb.announcement = editing.IsAnnouncement
		for _, a := range editing.Assignees {
			fb.assignees = append(fb.assignees, a.ID)
		}
	}
	return Model{
		client:  client,
		editing: editing,
		fb:      fb,
		width:   width,
		height:  height,
	}
}

// Title returns the header title for the screen.
func (m Model) Title() string {
	if m.editing != nil {
		return "Nachricht bearbeiten"
	}
	return "Neue Nachricht"
}

// Init fetches the status and user lists the form needs.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		statuses, err := m.client.ListStatuses(ctx)
		if err != nil {
			return optionsMsg{err: err}
		}
		users, err := m.client.ListUsers(ctx)
		if err != nil {
			return optionsMsg{err: err}
		}
		return optionsMsg{statuses: statuses, users: users}
	}
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm(statuses []model.Status, users []model.User) *huh.Form {
	statusOpts := make([]huh.Option[int], 0, len(statuses))
	for _, s := range statuses {
		statusOpts = append(statusOpts, huh.NewOption(s.Name, s.ID))
	}
	userOpts := make([]huh.Option[int], 0, len(users))
	for _, u := range users {
		userOpts = append(userOpts, huh.NewOption(u.Name, u.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Titel").
				Value(&m.fb.title).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return errors.New("Titel darf nicht leer sein")
					}
					return nil
				}),
			huh.NewText().
				Title("Beschreibung").
				Value(&m.fb.description),
			huh.NewSelect[model.Priority]().
				Title("Priorität").
				Options(
					huh.NewOption("Niedrig", model.PriorityLow),
					huh.NewOption("Mittel", model.PriorityMedium),
					huh.NewOption("Hoch", model.PriorityHigh),
				).
				Value(&m.fb.priority),
			huh.NewSelect[int]().
				Title("Status").
				Options(statusOpts...).
				Value(&m.fb.statusID),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("An der Pin Wand veröffentlichen?").
				Affirmative("Ja").
				Negative("Nein").
				Value(&m.fb.announcement),
			huh.NewMultiSelect[int]().
				Title("Teilen mit").
				Options(userOpts...).
				Value(&m.fb.assignees),
			huh.NewInput().
				Title("Anhänge").
				Placeholder("Dateipfade, durch Komma getrennt").
				Value(&m.fb.attachments),
		),
	).WithWidth(min(m.width-4, 72))
}

// Update handles messages for the form screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case optionsMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return CancelledMsg{} }
		}
		m.statuses = msg.statuses
		m.users = msg.users
		m.form = m.buildForm(msg.statuses, msg.users)
		m.ready = true
		return m, m.form.Init()

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.errText = saveErrorText(m.editing != nil)
			// Reopen the form with the entered values intact.
			m.form = m.buildForm(m.statuses, m.users)
			return m, m.form.Init()
		}
		saved := msg.message
		return m, func() tea.Msg { return SavedMsg{Message: saved} }
	}

	if !m.ready || m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.saving = true
		m.errText = ""
		return m, m.save()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, cmd
}

// save runs the create or update call off the UI loop, including the
// audit-log entries and attachment uploads tied to the operation.
func (m Model) save() tea.Cmd {
	draft := api.MessageDraft{
		Title:          m.fb.title,
		Description:    m.fb.description,
		Priority:       m.fb.priority,
		StatusID:       m.fb.statusID,
		IsAnnouncement: m.fb.announcement,
		Assignees:      m.fb.assignees,
	}
	if len(m.fb.assignees) > 0 {
		first := m.fb.assignees[0]
		draft.Assignee = &first
	}
	files := splitPaths(m.fb.attachments)

	if m.editing != nil {
		id := m.editing.ID
		return func() tea.Msg {
			ctx := context.Background()
			saved, err := m.client.UpdateMessage(ctx, id, draft)
			if err != nil {
				return savedMsg{err: err}
			}
			if err := m.client.StoreActivity(ctx, id, "hat Nachricht bearbeitet", nil); err != nil {
				return savedMsg{err: err}
			}
			if err := m.client.UploadAttachments(ctx, id, files); err != nil {
				return savedMsg{err: err}
			}
			return savedMsg{message: saved}
		}
	}

	assignees := m.fb.assignees
	return func() tea.Msg {
		ctx := context.Background()
		saved, err := m.client.CreateMessage(ctx, draft)
		if err != nil {
			return savedMsg{err: err}
		}
		if err := m.client.StoreActivity(ctx, saved.ID, "hat Nachricht erstellt", nil); err != nil {
			return savedMsg{err: err}
		}
		for _, uid := range assignees {
			uid := uid
			if err := m.client.StoreActivity(ctx, saved.ID, "hat geteilt mit", &uid); err != nil {
				return savedMsg{err: err}
			}
		}
		if err := m.client.UploadAttachments(ctx, saved.ID, files); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{message: saved}
	}
}

func saveErrorText(editing bool) string {
	if editing {
		return "Nachricht konnte nicht bearbeitet werden"
	}
	return "Nachricht konnte nicht erstellt werden"
}

// splitPaths parses the comma separated attachment field.
func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// View renders the form.
func (m Model) View() string {
	if !m.ready {
		return theme.HelpStyle.Render("Wird geladen …")
	}
	if m.saving {
		return theme.HelpStyle.Render("Wird gespeichert …")
	}

	body := ""
	if m.errText != "" {
		body += lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.errText) + "\n\n"
	}
	body += m.form.View()
	return body
}
