package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// Light mode colors tuned for WCAG AA compliance (contrast ratio >= 4.5:1)
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Status background colors (for badges) - subtle backgrounds
	ColorStatusNewBg      = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}
	ColorStatusOpenBg     = lipgloss.AdaptiveColor{Light: "#FFE8CC", Dark: "#3D2A1A"}
	ColorStatusPendingBg  = lipgloss.AdaptiveColor{Light: "#CCE5FF", Dark: "#1A2A44"}
	ColorStatusReviewedBg = lipgloss.AdaptiveColor{Light: "#D1ECF1", Dark: "#1A3344"}
	ColorStatusResolvedBg = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
	ColorStatusClosedBg   = lipgloss.AdaptiveColor{Light: "#E2E3E5", Dark: "#2A2A3D"}

	ColorLevelHighBg   = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}
	ColorLevelMediumBg = lipgloss.AdaptiveColor{Light: "#FFF3CD", Dark: "#3D3D1A"}
	ColorLevelLowBg    = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For split view layouts
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// statusLabel is the fixed-width badge text of a status.
func statusLabel(s model.Status) string {
	switch s {
	case model.StatusNew:
		return "NEW "
	case model.StatusOpen:
		return "OPEN"
	case model.StatusPending:
		return "PEND"
	case model.StatusReviewed:
		return "REVW"
	case model.StatusResolved:
		return "RSLV"
	case model.StatusClosed:
		return "DONE"
	default:
		return "????"
	}
}

// RenderStatusBadge returns a styled status badge
func RenderStatusBadge(s model.Status, t Theme) string {
	var bg lipgloss.AdaptiveColor
	switch s {
	case model.StatusNew:
		bg = ColorStatusNewBg
	case model.StatusOpen:
		bg = ColorStatusOpenBg
	case model.StatusPending:
		bg = ColorStatusPendingBg
	case model.StatusReviewed:
		bg = ColorStatusReviewedBg
	case model.StatusResolved:
		bg = ColorStatusResolvedBg
	case model.StatusClosed:
		bg = ColorStatusClosedBg
	default:
		bg = ColorBgSubtle
	}
	return t.Renderer.NewStyle().
		Foreground(t.GetStatusColor(s)).
		Background(bg).
		Render(statusLabel(s))
}

// RenderLevelBadge renders a severity or risk level as a short colored tag.
func RenderLevelBadge(level string, t Theme) string {
	var bg lipgloss.AdaptiveColor
	var label string
	switch level {
	case "high":
		bg, label = ColorLevelHighBg, "HIGH"
	case "medium":
		bg, label = ColorLevelMediumBg, "MED "
	case "low":
		bg, label = ColorLevelLowBg, "LOW "
	default:
		bg, label = ColorBgSubtle, " ?  "
	}
	return t.Renderer.NewStyle().
		Foreground(t.GetLevelColor(level)).
		Background(bg).
		Bold(level == "high").
		Render(label)
}

// ══════════════════════════════════════════════════════════════════════════════
// METRIC VISUALIZATION
// ══════════════════════════════════════════════════════════════════════════════

// RenderMiniBar renders a mini horizontal bar for a value between 0 and 1.
// Higher values are riskier and render hotter.
func RenderMiniBar(value float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}

	var barColor lipgloss.AdaptiveColor
	switch {
	case value >= 0.7:
		barColor = t.High
	case value >= 0.3:
		barColor = t.Medium
	default:
		barColor = t.Low
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(barColor).Render(bar)
}

// RenderPercent renders a fraction as a whole percentage.
func RenderPercent(frac float64) string {
	return fmt.Sprintf("%.0f%%", frac*100)
}
