package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains the lipgloss styles used by the picker.
type Styles struct {
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles builds the default picker styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Text:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}
