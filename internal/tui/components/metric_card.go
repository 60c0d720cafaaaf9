package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/dpesim/internal/tui/tuistyles"
)

// MetricCard displays a single figure with label and an optional delta
type MetricCard struct {
	Label       string
	Value       string
	Delta       *Delta
	Description string
	Alert       bool
	Width       int
}

// Delta is a signed change; Good tells how to color it.
type Delta struct {
	Up     bool
	Good   bool
	Change string
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{Label: label, Value: value, Width: 24}
}

// WithDelta adds a change indicator
func (m *MetricCard) WithDelta(up, good bool, change string) *MetricCard {
	m.Delta = &Delta{Up: up, Good: good, Change: change}
	return m
}

// WithDescription adds a subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithAlert renders the value as a problem (e.g. a count over the limit)
func (m *MetricCard) WithAlert(alert bool) *MetricCard {
	m.Alert = alert
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	value := tuistyles.MetricValueStyle.Render(m.Value)
	if m.Alert {
		value = tuistyles.ErrorStyle.Bold(true).Render(m.Value)
	}
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" + value
	if m.Delta != nil {
		content += "\n" + tuistyles.MetricTrendStyle(m.Delta.Good).
			Render(fmt.Sprintf("%s %s", tuistyles.TrendIndicator(m.Delta.Up), m.Delta.Change))
	}
	if m.Description != "" {
		content += "\n" + tuistyles.SubtitleStyle.Render(m.Description)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// MetricRow renders cards side by side
func MetricRow(cards ...*MetricCard) string {
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		if c != nil {
			rendered = append(rendered, c.Render())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
