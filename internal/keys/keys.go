package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Screens
	Dashboard     key.Binding
	Assigned      key.Binding
	Created       key.Binding
	Announcements key.Binding
	NewMessage    key.Binding
	Bell          key.Binding

	// Manual refresh
	Refresh key.Binding

	// Board filters
	ToggleArchivedFilter key.Binding
	CyclePriority        key.Binding

	// Message actions
	Comment    key.Binding
	Edit       key.Binding
	Share      key.Binding
	Archive    key.Binding
	AssignToMe key.Binding

	// Bell actions
	MarkAllRead key.Binding
	Remove      key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "runter"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "hoch"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "links"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "rechts"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "öffnen"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "zurück"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "beenden"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Assigned: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "meine nachrichten"),
		),
		Created: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "zugewiesene"),
		),
		Announcements: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "pin wand"),
		),
		NewMessage: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "neue nachricht"),
		),
		Bell: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "mitteilungen"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "aktualisieren"),
		),
		ToggleArchivedFilter: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "archiv"),
		),
		CyclePriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priorität"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "kommentar"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "bearbeiten"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "teilen"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archivieren"),
		),
		AssignToMe: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mir zuweisen"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "alle als gelesen"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "entfernen"),
		),
	}
}
