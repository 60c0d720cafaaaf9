package tui

import (
	"sync"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/tui/components"
	"github.com/rgehrsitz/dpesim/internal/tui/scenes"
	"github.com/rgehrsitz/dpesim/internal/tui/tuimsg"
)

// Options configures the application model.
type Options struct {
	Runner tuimsg.Runner
	// Clipboard copies the share link. Defaults to the system clipboard.
	Clipboard func(string) error
	// NoticeLimit is the number of notices kept on screen.
	NoticeLimit int
}

// inbox collects what the dispatcher delivers between two updates. Handlers
// run on the publisher's goroutine, which is the event loop for everything
// the bridge and the scenes publish.
type inbox struct {
	mu     sync.Mutex
	events []bridge.Event
}

func (i *inbox) push(e bridge.Event) {
	i.mu.Lock()
	i.events = append(i.events, e)
	i.mu.Unlock()
}

func (i *inbox) drain() []bridge.Event {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.events
	i.events = nil
	return out
}

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	bridge      *bridge.Bridge
	run         tuimsg.Runner
	copy        func(string) error
	inbox       *inbox
	unsubscribe func()

	notices *components.NoticeLog
	confirm *tuimsg.ConfirmMsg

	editor  *scenes.EditorModel
	results *scenes.ResultsModel
}

// NewModel creates the application model around a bridge. The bridge must
// publish on d.
func NewModel(b *bridge.Bridge, d *bridge.Dispatcher, opts Options) Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.NoticeLimit <= 0 {
		opts.NoticeLimit = 3
	}
	box := &inbox{}
	return Model{
		currentScene: SceneEditor,
		bridge:       b,
		run:          opts.Runner,
		copy:         opts.Clipboard,
		inbox:        box,
		unsubscribe:  d.Subscribe(box.push),
		notices:      components.NewNoticeLog(opts.NoticeLimit),
		editor:       scenes.NewEditorModel(b, opts.Runner),
		results:      scenes.NewResultsModel(b, d),
		width:        80,
		height:       24,
	}
}

// Init starts loading the project (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	tasks := m.bridge.Open()
	return tea.Batch(m.flush(), m.run.Cmd(tasks))
}

// Close detaches the model from the dispatcher.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// flush applies what the dispatcher delivered since the last update. Notices
// go to the log; selection events go through the bridge, and the tasks they
// produce run as commands.
func (m Model) flush() tea.Cmd {
	var tasks []bridge.Task
	for {
		events := m.inbox.drain()
		if len(events) == 0 {
			break
		}
		for _, e := range events {
			if n, ok := e.(bridge.Notice); ok {
				m.notices.Add(n)
				continue
			}
			tasks = append(tasks, m.bridge.Apply(e)...)
		}
	}
	return m.run.Cmd(tasks)
}

// copyLinkCmd copies the share link off the event loop.
func copyLinkCmd(copyFn func(string) error, link string) tea.Cmd {
	return func() tea.Msg {
		return tuimsg.CopiedMsg{Link: link, Err: copyFn(link)}
	}
}
