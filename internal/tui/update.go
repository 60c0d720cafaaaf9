package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/tui/tuimsg"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	nm := next.(Model)
	return nm, tea.Batch(cmd, nm.flush())
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetSize(msg.Width, msg.Height)
		m.results.SetSize(msg.Width, msg.Height)
		return m, nil

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case QuitMsg:
		m.Close()
		return m, tea.Quit

	case tuimsg.EventMsg:
		return m, m.run.Cmd(m.bridge.Apply(msg.Event))

	case tuimsg.NoticeMsg:
		m.notices.Add(msg.Notice)
		return m, nil

	case tuimsg.CopiedMsg:
		if msg.Err != nil {
			m.notices.Add(bridge.Notice{Level: bridge.NoticeError, Message: fmt.Sprintf("failed to copy link: %v", msg.Err), Err: msg.Err})
		} else {
			m.notices.Add(bridge.Notice{Level: bridge.NoticeInfo, Message: "link copied: " + msg.Link})
		}
		return m, nil

	case tuimsg.ConfirmMsg:
		confirm := msg
		m.confirm = &confirm
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}

	if m.confirm != nil {
		return m.handleConfirm(msg)
	}

	// Text fields own every other key
	if m.currentScene == SceneEditor && m.editor.Editing() {
		return m.updateCurrentScene(msg)
	}

	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit

	case "?":
		if m.currentScene != SceneHelp {
			return m, func() tea.Msg { return NavigateMsg{Scene: SceneHelp} }
		}

	case "esc":
		if m.currentScene == SceneHelp {
			return m, func() tea.Msg { return NavigateMsg{Scene: m.previousScene} }
		}
		m.notices.Clear()
		return m, nil

	case "tab":
		target := SceneResults
		if m.currentScene == SceneResults {
			target = SceneEditor
		}
		return m, func() tea.Msg { return NavigateMsg{Scene: target} }

	case "ctrl+r":
		return m, m.run.Cmd(m.bridge.Reload())

	case "y":
		return m, copyLinkCmd(m.copy, m.bridge.ShareLink())
	}

	return m.updateCurrentScene(msg)
}

// handleConfirm answers a pending confirmation: y runs it, anything else
// drops it.
func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := m.confirm
	m.confirm = nil
	switch msg.String() {
	case "y", "Y", "enter":
		if confirm.Action != nil {
			return m, m.run.Cmd(confirm.Action())
		}
	}
	return m, nil
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneEditor:
		m.editor, cmd = m.editor.Update(msg)
	case SceneResults:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}
