package tui

// Scene represents different screens in the TUI
type Scene int

const (
	SceneEditor Scene = iota
	SceneResults
	SceneHelp
)

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// QuitMsg signals the application should exit
type QuitMsg struct{}

func (s Scene) String() string {
	switch s {
	case SceneEditor:
		return "Configuration"
	case SceneResults:
		return "Results"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
