package table

import "github.com/charmbracelet/lipgloss"

// Styles controls how the table renders. Screens derive these from their
// theme.
type Styles struct {
	Title        lipgloss.Style
	Header       lipgloss.Style
	HeaderActive lipgloss.Style
	Cell         lipgloss.Style
	Selected     lipgloss.Style
	Busy         lipgloss.Style
	Error        lipgloss.Style
	Muted        lipgloss.Style
	Notice       lipgloss.Style
	Bar          lipgloss.Style
}

// DefaultStyles returns the Dracula-like palette used when a screen supplies
// none.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	muted := lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	return Styles{
		Title:        lipgloss.NewStyle().Foreground(primary).Bold(true),
		Header:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E8E8E8"}),
		HeaderActive: lipgloss.NewStyle().Bold(true).Foreground(primary),
		Cell:         lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Bold(true).Background(lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"}),
		Busy:         lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}),
		Muted:        lipgloss.NewStyle().Foreground(muted),
		Notice:       lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}),
		Bar:          lipgloss.NewStyle().Foreground(muted),
	}
}
