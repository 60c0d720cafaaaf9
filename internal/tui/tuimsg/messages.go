// Package tuimsg holds the messages shared between the TUI model and its
// scenes, and the glue that runs bridge tasks as Bubble Tea commands.
package tuimsg

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/dpesim/internal/bridge"
)

// EventMsg carries a bridge event into Update, where it is applied.
type EventMsg struct {
	Event bridge.Event
}

// NoticeMsg shows a notice in the status area.
type NoticeMsg struct {
	Notice bridge.Notice
}

// CopiedMsg reports a clipboard copy of the share link.
type CopiedMsg struct {
	Link string
	Err  error
}

// ConfirmMsg asks the model to run Tasks once the user confirms Prompt.
type ConfirmMsg struct {
	Prompt string
	Action func() []bridge.Task
}

// Runner turns bridge tasks into commands. Every task runs on its own
// goroutine with a fresh timeout; its result comes back as an EventMsg.
type Runner struct {
	Ctx     context.Context
	Timeout time.Duration
}

// Cmd batches tasks. It returns nil for no tasks.
func (r Runner) Cmd(tasks []bridge.Task) tea.Cmd {
	if len(tasks) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(tasks))
	for i, task := range tasks {
		task := task
		cmds[i] = func() tea.Msg {
			ctx := r.Ctx
			if ctx == nil {
				ctx = context.Background()
			}
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}
			return EventMsg{Event: task(ctx)}
		}
	}
	return tea.Batch(cmds...)
}
