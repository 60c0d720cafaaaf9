package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	var content string
	switch m.currentScene {
	case SceneEditor:
		content = m.editor.View()
	case SceneResults:
		content = m.results.View()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	return AppStyle.Render(m.renderApp(content))
}

// renderApp wraps content with title bar, notices and status bar
func (m Model) renderApp(content string) string {
	titleBar := m.renderTitleBar()
	statusBar := m.renderStatusBar()
	notices := m.notices.Render()
	if m.confirm != nil {
		notices = WarnStyle.Render(m.confirm.Prompt + " (y/N)")
	}

	contentHeight := max(m.height-5-lipgloss.Height(notices), 1)
	contentContainer := lipgloss.NewStyle().
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleBar,
		contentContainer,
		notices,
		statusBar,
	)
}

// renderTitleBar renders the application title, the project and the scene
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("DPE Sim - renovation scenarios")

	crumbs := []string{m.currentScene.String()}
	if ref, ok := m.bridge.Ref(); ok {
		crumbs = append([]string{ref}, crumbs...)
	}
	if k, ok := m.bridge.Selected(); ok {
		crumbs = append(crumbs, fmt.Sprintf("scenario #%d", k))
	}
	breadcrumb := SubtitleStyle.Render(strings.Join(crumbs, " / "))
	if m.bridge.ReadOnly() {
		breadcrumb += "  " + HighlightStyle.Render(" READ-ONLY ")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, breadcrumb)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("tab", "editor/results"),
		formatShortcut("ctrl+r", "reload"),
		formatShortcut("y", "copy link"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}
	statusText := strings.Join(shortcuts, " • ")

	total := SubtitleStyle.Render(fmt.Sprintf("%s combinations", m.bridge.Total().String()))
	width := m.width - lipgloss.Width(statusText) - lipgloss.Width(total) - 4
	statusText = statusText + strings.Repeat(" ", max(0, width)) + total

	return StatusBarStyle.Width(m.width).Render(statusText)
}

// formatShortcut formats a keyboard shortcut with key and description
func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	helpText := `
DPE Sim - renovation scenario configurator

GLOBAL:
  tab        Switch between configuration and results
  ctrl+r     Reload the configuration (drops local edits)
  y          Copy the link to the project and selected scenario
  esc        Clear notices / leave help
  ?          Show this help
  q/ctrl+c   Quit

CONFIGURATION:
  ↑/↓ j/k    Move between groups
  space      Activate the group (deactivates its siblings)
  1 / 2      Toggle choice 1 / choice 2
  0          Keep the baseline only
  a          Select or clear the whole scope
  [ / ]      Move between scope items
  o          Select or clear the scope item
  r / d / p  Rename, describe, set the element path
  n / t      Add a group, attach a scope
  + / x      Add an element, remove a group
  c          Show the rule behind a choice
  R          Reset every group to its presets
  S          Apply the configuration (generate scenarios)

RESULTS:
  ←/→ h/l    Move between scenarios
  enter      Select the scenario (the editor becomes read-only)
  x          Clear the selection
  b          Jump to the best scenario
  m          Plot energy or emissions
`
	return BorderStyle.Render(helpText)
}
