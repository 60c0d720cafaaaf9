package tui

import "github.com/rgehrsitz/dpesim/internal/tui/tuistyles"

// Re-export the styles the model renders with
var (
	AppStyle       = tuistyles.AppStyle
	TitleStyle     = tuistyles.TitleStyle
	SubtitleStyle  = tuistyles.SubtitleStyle
	StatusBarStyle = tuistyles.StatusBarStyle
	StatusKeyStyle = tuistyles.StatusKeyStyle
	BorderStyle    = tuistyles.BorderStyle
	HighlightStyle = tuistyles.HighlightStyle
	WarnStyle      = tuistyles.WarnStyle
)
