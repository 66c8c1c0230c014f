// Package login is the sign-in screen: an email/password form that
// runs the login call and hands the session to the rest of the app.
package login

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/api"
	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/theme"
)

// LoggedInMsg signals the parent that the session is established.
type LoggedInMsg struct {
	User model.User
}

// loginResultMsg carries the outcome of the login call back to Update.
type loginResultMsg struct {
	user model.User
	err  error
}

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
}

// Model is the login screen.
type Model struct {
	client     *api.Client
	form       *huh.Form
	fb         *formBindings
	submitting bool
	errText    string
	width      int
	height     int
}

// New creates the login screen.
func New(client *api.Client, width, height int) Model {
	m := Model{
		client: client,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("E-Mail").
				Placeholder("name@firma.de").
				Value(&m.fb.email).
				Validate(required("E-Mail")),
			huh.NewInput().
				Title("Passwort").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required("Passwort")),
		),
	).WithWidth(min(m.width-4, 60))
}

func required(field string) func(string) error {
	return func(v string) error {
		if v == "" {
			return fmt.Errorf("%s darf nicht leer sein", field)
		}
		return nil
	}
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reset clears the form for a fresh login attempt, e.g. after a forced
// logout.
func (m *Model) Reset() tea.Cmd {
	m.fb.email = ""
	m.fb.password = ""
	m.errText = ""
	m.submitting = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = loginErrorText(msg.err)
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg {
			return LoggedInMsg{User: msg.user}
		}
	}

	if m.submitting {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		m.errText = ""
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		// There is nowhere to go back to; restart the form.
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	return m, cmd
}

// submit runs the login call off the UI loop.
func (m Model) submit() tea.Cmd {
	email, password := m.fb.email, m.fb.password
	return func() tea.Msg {
		user, err := m.client.Login(context.Background(), email, password)
		return loginResultMsg{user: user, err: err}
	}
}

// loginErrorText prefers the backend's message over the generic line.
func loginErrorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Fehler bei der Anmeldung"
}

// View renders the login card.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("Pinnwand")

	var body string
	switch {
	case m.submitting:
		body = theme.HelpStyle.Render("Anmeldung läuft …")
	default:
		body = m.form.View()
	}

	card := title + "\n\n"
	if m.errText != "" {
		card += lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.errText) + "\n\n"
	}
	card += body

	framed := theme.CardStyle.Width(min(m.width-2, 64)).Render(card)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, framed)
}
