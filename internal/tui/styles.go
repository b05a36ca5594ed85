package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Count      lipgloss.Style
	Pill       lipgloss.Style
	PillActive lipgloss.Style
	Row        lipgloss.Style
	RowCursor  lipgloss.Style
	RowViewed  lipgloss.Style
	Badge      lipgloss.Style
	Summary    lipgloss.Style
	URL        lipgloss.Style
	Date       lipgloss.Style
	Important  lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
}

// DarkStyles returns the dark theme.
func DarkStyles() Styles {
	return themedStyles(
		lipgloss.Color("#A0A0A0"), // primary
		lipgloss.Color("#606060"), // subtle
		lipgloss.Color("#5F8787"), // accent
	)
}

// LightStyles returns the light theme.
func LightStyles() Styles {
	return themedStyles(
		lipgloss.Color("#505050"),
		lipgloss.Color("#888888"),
		lipgloss.Color("#4A7070"),
	)
}

func themedStyles(primary, subtle, accent lipgloss.Color) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Count: lipgloss.NewStyle().
			Foreground(subtle),

		Pill: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1),

		PillActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(accent).
			Padding(0, 1),

		Row: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		RowCursor: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		RowViewed: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(1).
			Faint(true),

		Badge: lipgloss.NewStyle().
			Foreground(accent),

		Summary: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(3),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Date: lipgloss.NewStyle().
			Foreground(subtle),

		Important: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B8860B")),

		Status: lipgloss.NewStyle().
			Foreground(accent).
			Padding(1, 0),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AF5F5F")).
			Padding(1, 0),

		Help: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(1, 0),
	}
}
