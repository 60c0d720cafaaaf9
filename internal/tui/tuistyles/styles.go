// Package tuistyles holds the colors and lipgloss styles shared by the TUI
// scenes and components. It has no dependencies on them so both can import it.
package tuistyles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary   = lipgloss.Color("#2E7D32")
	ColorSecondary = lipgloss.Color("#1565C0")
	ColorAccent    = lipgloss.Color("#F9A825")
	ColorSuccess   = lipgloss.Color("#43A047")
	ColorDanger    = lipgloss.Color("#E53935")
	ColorInfo      = lipgloss.Color("#039BE5")

	ColorBackground = lipgloss.Color("#1E1E1E")
	ColorForeground = lipgloss.Color("#E0E0E0")
	ColorMuted      = lipgloss.Color("#8A8A8A")
	ColorBorder     = lipgloss.Color("#4A4A4A")
)

var (
	AppStyle = lipgloss.NewStyle().Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorForeground).
			Background(lipgloss.Color("#2A2A2A")).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ActiveBorderStyle = BorderStyle.
				BorderForeground(ColorPrimary)

	ReadOnlyBorderStyle = BorderStyle.
				BorderForeground(ColorSecondary)

	SelectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary)

	UnselectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorForeground)

	InactiveItemStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	MetricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorForeground)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	// HighlightStyle outlines the level a recorded scenario used.
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBackground).
			Background(ColorAccent)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorSecondary)
)

// MetricTrendStyle colors a change; lower consumption is good.
func MetricTrendStyle(good bool) lipgloss.Style {
	if good {
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	}
	return lipgloss.NewStyle().Foreground(ColorDanger)
}

// TrendIndicator returns an arrow for the direction of a change.
func TrendIndicator(up bool) string {
	if up {
		return "▲"
	}
	return "▼"
}

// Checkbox renders a level toggle. Disabled toggles (the baseline, or choices
// while the baseline is off) are dimmed.
func Checkbox(checked, enabled bool) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	if !enabled {
		return InactiveItemStyle.Render(box)
	}
	return UnselectedItemStyle.Render(box)
}
