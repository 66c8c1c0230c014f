package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2563EB"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#16A34A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#DC2626"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#6B7280"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// Banner styles for the transient feedback notice, one per notice kind.
var (
	BannerSuccessStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite).
				Background(ColorGreen).
				Padding(0, 1)

	BannerErrorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite).
				Background(ColorRed).
				Padding(0, 1)

	BannerLoadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite).
				Background(ColorBlue).
				Padding(0, 1)
)

// CardStyle frames a dashboard summary card or a board column.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// DetailPanelStyle wraps the message detail content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// EmptyStyle renders placeholder text such as "Keine Nachrichten".
var EmptyStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ArchivedStyle dims archived messages on boards.
var ArchivedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Faint(true)

// PriorityStyle returns a color-coded style for a message priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	case model.PriorityMedium:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case model.PriorityLow:
		return lipgloss.NewStyle().Foreground(ColorBlue)
	}
	return lipgloss.NewStyle().Foreground(ColorGray)
}

// StatusStyle renders a status badge. Backend statuses carry their own
// hex color; fall back to gray when it is missing.
func StatusStyle(s model.Status) lipgloss.Style {
	color := s.Color
	if color == "" {
		return lipgloss.NewStyle().Foreground(ColorGray).Bold(true)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// UnreadStyle highlights unread notifications in the bell overlay.
var UnreadStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)
