package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casedesk/pkg/model"
	"github.com/vanderheijden86/casedesk/pkg/table"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Case status
	New      lipgloss.AdaptiveColor
	Open     lipgloss.AdaptiveColor
	Pending  lipgloss.AdaptiveColor
	Reviewed lipgloss.AdaptiveColor
	Resolved lipgloss.AdaptiveColor
	Closed   lipgloss.AdaptiveColor

	// Severity and risk level
	Low    lipgloss.AdaptiveColor
	Medium lipgloss.AdaptiveColor
	High   lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style

	MutedText     lipgloss.Style
	InfoText      lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	ErrorText     lipgloss.Style
	SuccessText   lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		New:      lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}, // Red, needs triage
		Open:     lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Pending:  lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"},
		Reviewed: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Resolved: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Closed:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},

		Low:    lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Medium: lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"},
		High:   lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Tab = r.NewStyle().Foreground(t.Secondary).Padding(0, 1)
	t.TabOn = t.Header

	t.MutedText = r.NewStyle().Foreground(ColorMuted)
	t.InfoText = r.NewStyle().Foreground(ColorInfo)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.ErrorText = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.SuccessText = r.NewStyle().Foreground(ColorSuccess)

	return t
}

func (t Theme) GetStatusColor(s model.Status) lipgloss.AdaptiveColor {
	switch s {
	case model.StatusNew:
		return t.New
	case model.StatusOpen:
		return t.Open
	case model.StatusPending:
		return t.Pending
	case model.StatusReviewed:
		return t.Reviewed
	case model.StatusResolved:
		return t.Resolved
	case model.StatusClosed:
		return t.Closed
	default:
		return t.Subtext
	}
}

// GetLevelColor colors a severity or watchlist risk level.
func (t Theme) GetLevelColor(level string) lipgloss.AdaptiveColor {
	switch level {
	case "low":
		return t.Low
	case "medium":
		return t.Medium
	case "high":
		return t.High
	default:
		return t.Subtext
	}
}

// TableStyles derives the table rendering styles from the theme.
func (t Theme) TableStyles() table.Styles {
	r := t.Renderer
	return table.Styles{
		Title:        r.NewStyle().Foreground(t.Primary).Bold(true),
		Header:       r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E8E8E8"}),
		HeaderActive: r.NewStyle().Bold(true).Foreground(t.Primary),
		Cell:         r.NewStyle(),
		Selected:     t.Selected,
		Busy:         r.NewStyle().Foreground(ColorInfo),
		Error:        r.NewStyle().Foreground(ColorDanger),
		Muted:        r.NewStyle().Foreground(t.Muted),
		Notice:       r.NewStyle().Foreground(ColorWarning),
		Bar:          r.NewStyle().Foreground(t.Muted),
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
