package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mfellner/pinnwand/internal/feedback"
	"github.com/mfellner/pinnwand/internal/theme"
)

// Layout manages the terminal layout dimensions: a one-line header, the
// content area, and a one-line bottom bar that shows either keyboard
// hints or the transient feedback banner.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and bottom bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with the screen title on the
// left and the unread-notification badge on the right.
func (l Layout) RenderHeader(title string, badge string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	badgeRendered := theme.HeaderStyle.Align(lipgloss.Right).Render(badge)

	gap := l.Width - lipgloss.Width(titleRendered) - lipgloss.Width(badgeRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, filler, badgeRendered)
}

// RenderBottomBar renders the bottom line. A present notice takes the
// whole line (the banner has single-slot semantics); otherwise the
// keyboard hints show.
func (l Layout) RenderBottomBar(notice *feedback.Notice, hints string) string {
	if notice != nil && notice.Text != "" {
		var style lipgloss.Style
		switch notice.Kind {
		case feedback.KindSuccess:
			style = theme.BannerSuccessStyle
		case feedback.KindError:
			style = theme.BannerErrorStyle
		default:
			style = theme.BannerLoadingStyle
		}
		return style.Width(l.Width).Render(notice.Text)
	}

	rendered := theme.StatusBarStyle.Render(hints)
	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}
	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and bottom bar.
func (l Layout) RenderWithFrame(header, content, bottomBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, bottomBar)
}
