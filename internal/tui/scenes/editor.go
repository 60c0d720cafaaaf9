package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/tui/components"
	"github.com/rgehrsitz/dpesim/internal/tui/tuimsg"
	"github.com/rgehrsitz/dpesim/internal/tui/tuistyles"
)

type editorKeyMap struct {
	Up, Down       key.Binding
	ToggleGroup    key.Binding
	Level1, Level2 key.Binding
	BaselineOnly   key.Binding
	Scope          key.Binding
	ScopePrev      key.Binding
	ScopeNext      key.Binding
	ScopeItem      key.Binding
	AddGroup       key.Binding
	AttachScope    key.Binding
	Rename         key.Binding
	Describe       key.Binding
	Path           key.Binding
	NewEntry       key.Binding
	Remove         key.Binding
	Reset          key.Binding
	Setting        key.Binding
	Submit         key.Binding
}

var editorKeys = editorKeyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	ToggleGroup:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "activate")),
	Level1:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "choice 1")),
	Level2:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "choice 2")),
	BaselineOnly: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "baseline only")),
	Scope:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all scope")),
	ScopePrev:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev scope item")),
	ScopeNext:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next scope item")),
	ScopeItem:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "toggle scope item")),
	AddGroup:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new group")),
	AttachScope:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "attach scope")),
	Rename:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
	Describe:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "describe")),
	Path:         key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "path")),
	NewEntry:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "new entry")),
	Remove:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
	Reset:        key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
	Setting:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "choice rule")),
	Submit:       key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "apply")),
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleGroup, k.Level1, k.Level2, k.Rename, k.AddGroup, k.Submit}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ToggleGroup, k.Level1, k.Level2, k.BaselineOnly},
		{k.Scope, k.ScopePrev, k.ScopeNext, k.ScopeItem, k.AttachScope},
		{k.AddGroup, k.NewEntry, k.Remove},
		{k.Rename, k.Describe, k.Path, k.Setting, k.Reset, k.Submit},
	}
}

type editKind int

const (
	editNone editKind = iota
	editLabel
	editDescription
	editPath
	editNewEntry
)

// row is one line of the editor: a group of an entry.
type row struct {
	entry domain.Entry
	group domain.SimulationGroup
	key   domain.Key
}

// EditorModel is the configuration scene: every entry with its groups, level
// toggles and the recorded inputs of the selected scenario.
type EditorModel struct {
	bridge *bridge.Bridge
	run    tuimsg.Runner

	cursor      int
	scopeCursor int
	input       textinput.Model
	mode        editKind
	target      domain.Key
	help        help.Model

	width  int
	height int
}

// NewEditorModel creates the editor scene
func NewEditorModel(b *bridge.Bridge, run tuimsg.Runner) *EditorModel {
	ti := textinput.New()
	ti.CharLimit = 120
	ti.Width = 50
	return &EditorModel{bridge: b, run: run, input: ti, help: help.New()}
}

// SetSize updates the scene dimensions
func (m *EditorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

// Editing reports whether a text field has the keyboard.
func (m *EditorModel) Editing() bool { return m.mode != editNone }

// Current returns the key under the cursor.
func (m *EditorModel) Current() (domain.Key, bool) {
	rows := m.rows()
	if len(rows) == 0 {
		return domain.Key{}, false
	}
	m.clampCursor(len(rows))
	return rows[m.cursor].key, true
}

func (m *EditorModel) rows() []row {
	var out []row
	for _, e := range m.bridge.State().Entries() {
		for _, g := range e.Groups {
			out = append(out, row{entry: e, group: g, key: e.Key(g)})
		}
	}
	return out
}

func (m *EditorModel) clampCursor(n int) {
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update handles messages for the editor scene
func (m *EditorModel) Update(msg tea.Msg) (*EditorModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.Editing() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if m.Editing() {
		return m.updateInput(keyMsg)
	}
	return m.handleKeyPress(keyMsg)
}

func (m *EditorModel) handleKeyPress(msg tea.KeyMsg) (*EditorModel, tea.Cmd) {
	rows := m.rows()
	if len(rows) == 0 {
		return m, nil
	}
	m.clampCursor(len(rows))
	cur := rows[m.cursor]

	switch {
	case key.Matches(msg, editorKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scopeCursor = 0
		}
	case key.Matches(msg, editorKeys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
			m.scopeCursor = 0
		}
	case key.Matches(msg, editorKeys.ToggleGroup):
		_ = m.bridge.ToggleGroup(cur.key)
	case key.Matches(msg, editorKeys.Level1):
		_, _ = m.bridge.ToggleLevel(cur.key, domain.LevelChoice1)
	case key.Matches(msg, editorKeys.Level2):
		_, _ = m.bridge.ToggleLevel(cur.key, domain.LevelChoice2)
	case key.Matches(msg, editorKeys.BaselineOnly):
		_ = m.bridge.SetLevels(cur.key, domain.NewLevelSet(domain.LevelBaseline))
	case key.Matches(msg, editorKeys.Scope):
		_ = m.bridge.SetAllScope(cur.key, !allSelected(cur.group.Scope))
	case key.Matches(msg, editorKeys.ScopePrev):
		if m.scopeCursor > 0 {
			m.scopeCursor--
		}
	case key.Matches(msg, editorKeys.ScopeNext):
		if m.scopeCursor < len(cur.group.Scope)-1 {
			m.scopeCursor++
		}
	case key.Matches(msg, editorKeys.ScopeItem):
		if m.scopeCursor < len(cur.group.Scope) {
			_ = m.bridge.ToggleScope(cur.key, cur.group.Scope[m.scopeCursor].ID)
		}
	case key.Matches(msg, editorKeys.AddGroup):
		return m, m.run.Cmd(m.bridge.AddGroup(cur.entry.ID))
	case key.Matches(msg, editorKeys.AttachScope):
		return m, m.run.Cmd(m.bridge.AttachScope(cur.key))
	case key.Matches(msg, editorKeys.Rename):
		if m.bridge.BeginLabelEdit(cur.key) == nil {
			draft, _ := m.bridge.State().LabelDraft(cur.key)
			return m, m.startInput(editLabel, cur.key, draft, "group label")
		}
	case key.Matches(msg, editorKeys.Describe):
		if m.bridge.BeginDescriptionEdit(cur.key) == nil {
			draft, _ := m.bridge.State().DescriptionDraft(cur.key)
			return m, m.startInput(editDescription, cur.key, draft, "description")
		}
	case key.Matches(msg, editorKeys.Path):
		if !m.bridge.ReadOnly() {
			return m, m.startInput(editPath, cur.key, cur.entry.Path, "/config/...")
		}
	case key.Matches(msg, editorKeys.NewEntry):
		if !m.bridge.ReadOnly() {
			return m, m.startInput(editNewEntry, domain.Key{}, "", "entry label")
		}
	case key.Matches(msg, editorKeys.Remove):
		target := cur.key
		b := m.bridge
		return m, func() tea.Msg {
			return tuimsg.ConfirmMsg{
				Prompt: fmt.Sprintf("Remove group %q?", cur.group.Label),
				Action: func() []bridge.Task { _ = b.RemoveGroup(target); return nil },
			}
		}
	case key.Matches(msg, editorKeys.Reset):
		b := m.bridge
		return m, func() tea.Msg {
			return tuimsg.ConfirmMsg{
				Prompt: "Reset every group to its presets?",
				Action: func() []bridge.Task { _ = b.Reset(); return nil },
			}
		}
	case key.Matches(msg, editorKeys.Setting):
		level := domain.LevelChoice1
		if l, ok := m.bridge.Highlight(cur.key); ok && l != domain.LevelBaseline {
			level = l
		}
		return m, m.run.Cmd(m.bridge.LoadChoiceSetting(cur.key, level))
	case key.Matches(msg, editorKeys.Submit):
		return m, m.run.Cmd(m.bridge.Submit())
	}
	return m, nil
}

func (m *EditorModel) startInput(kind editKind, target domain.Key, value, placeholder string) tea.Cmd {
	m.mode = kind
	m.target = target
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return textinput.Blink
}

func (m *EditorModel) updateInput(msg tea.KeyMsg) (*EditorModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.bridge.CancelEdits(m.target.EntryID)
		m.stopInput()
		return m, nil

	case tea.KeyEnter:
		mode, target, value := m.mode, m.target, m.input.Value()
		m.stopInput()
		switch mode {
		case editLabel:
			m.bridge.UpdateLabelEdit(target, value)
			return m, m.run.Cmd(m.bridge.CommitLabelEdit(target))
		case editDescription:
			m.bridge.UpdateDescriptionEdit(target, value)
			return m, m.run.Cmd(m.bridge.CommitDescriptionEdit(target))
		case editPath:
			return m, m.run.Cmd(m.bridge.SaveEntryPath(target.EntryID, value))
		case editNewEntry:
			if _, err := m.bridge.AppendEntry(value); err == nil {
				m.cursor = len(m.rows()) - 1
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	switch m.mode {
	case editLabel:
		m.bridge.UpdateLabelEdit(m.target, m.input.Value())
	case editDescription:
		m.bridge.UpdateDescriptionEdit(m.target, m.input.Value())
	}
	return m, cmd
}

func (m *EditorModel) stopInput() {
	m.mode = editNone
	m.input.Blur()
	m.input.SetValue("")
}

func allSelected(items []domain.ScopeItem) bool {
	for _, it := range items {
		if !it.Selected {
			return false
		}
	}
	return len(items) > 0
}

// View renders the editor scene
func (m *EditorModel) View() string {
	if !m.bridge.Loaded() {
		return tuistyles.BorderStyle.Render("Loading configuration…")
	}
	rows := m.rows()
	if len(rows) == 0 {
		return tuistyles.BorderStyle.Render("This project has no modifiable elements.")
	}
	m.clampCursor(len(rows))

	left := m.renderRows(rows)
	right := m.renderSide(rows[m.cursor])
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(body)
	if m.Editing() {
		b.WriteString("\n\n" + tuistyles.MetricLabelStyle.Render(m.inputTitle()) + " " + m.input.View())
	} else {
		b.WriteString("\n\n" + m.help.View(editorKeys))
	}
	return b.String()
}

func (m *EditorModel) inputTitle() string {
	switch m.mode {
	case editLabel:
		return "Label:"
	case editDescription:
		return "Description:"
	case editPath:
		return "Path:"
	default:
		return "New entry:"
	}
}

func (m *EditorModel) renderHeader() string {
	total := m.bridge.Total()
	limit := m.bridge.Limit()
	count := components.NewMetricCard("Combinations", total.String()).
		WithDescription(fmt.Sprintf("limit %d", limit)).
		WithAlert(total.GreaterThan(decimalFromInt(limit)))
	cards := []*components.MetricCard{count}

	if k, ok := m.bridge.Selected(); ok {
		cards = append(cards, components.NewMetricCard("Scenario", fmt.Sprintf("#%d", k)).
			WithDescription("read-only"))
	}
	return components.MetricRow(cards...)
}

// renderRows lists the groups around the cursor, grouped by entry.
func (m *EditorModel) renderRows(rows []row) string {
	width := max(m.width/2, 40)
	visible := max((m.height-12)/5, 3)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	var parts []string
	lastEntry := ""
	for i := start; i < end; i++ {
		r := rows[i]
		if r.entry.ID != lastEntry {
			lastEntry = r.entry.ID
			title := r.entry.Label
			if r.entry.Category != "" {
				title += tuistyles.SubtitleStyle.Render("  " + r.entry.Category)
			}
			parts = append(parts, tuistyles.TableHeaderStyle.Render(title))
		}
		card := components.NewGroupCard(r.group, m.bridge.State().Levels(r.key)).
			WithState(i == m.cursor, m.bridge.ReadOnly()).
			WithWidth(width)
		if i == m.cursor {
			card.WithScopeCursor(m.scopeCursor)
		}
		if l, ok := m.bridge.Highlight(r.key); ok && r.group.Active {
			card.WithRecorded(l)
		}
		switch {
		case m.bridge.AddingGroup(r.entry.ID):
			card.WithPending("adding group")
		case m.bridge.AttachingScope(r.key):
			card.WithPending("attaching scope")
		}
		parts = append(parts, card.Render())
	}
	if end < len(rows) {
		parts = append(parts, tuistyles.SubtitleStyle.Render(fmt.Sprintf("… %d more", len(rows)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderSide shows the recorded inputs and the loaded choice rule of the
// group under the cursor.
func (m *EditorModel) renderSide(r row) string {
	var b strings.Builder
	b.WriteString(tuistyles.TitleStyle.Render(r.entry.Label))
	b.WriteString("\n")
	if r.entry.Path != "" {
		b.WriteString(tuistyles.SubtitleStyle.Render(r.entry.Path) + "\n")
	}

	if _, selected := m.bridge.Selected(); selected {
		info, err := m.bridge.StepInfo(r.key)
		switch {
		case err != nil:
			b.WriteString("\n" + tuistyles.SubtitleStyle.Render(err.Error()) + "\n")
		default:
			b.WriteString("\n" + tuistyles.MetricLabelStyle.Render(fmt.Sprintf("Recorded inputs (card %d)", info.CardIndex)) + "\n")
			b.WriteString(renderInputs(info.Inputs))
		}
	}

	if s, ok := m.bridge.ChoiceSetting(); ok && s.Key == r.key {
		b.WriteString("\n" + tuistyles.MetricLabelStyle.Render(fmt.Sprintf("Rule for level %d", s.Level)) + "\n")
		if s.Setting.HumanReadable != "" {
			b.WriteString(s.Setting.HumanReadable + "\n")
		}
		if len(s.Setting.JSONAction) > 0 {
			b.WriteString(renderInputs(s.Setting.JSONAction))
		}
	}
	return tuistyles.BorderStyle.Width(max(m.width/2-6, 30)).Render(strings.TrimRight(b.String(), "\n"))
}

func renderInputs(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Sprintf("%v\n", v)
	}
	if len(m) == 0 {
		return tuistyles.SubtitleStyle.Render("(none)") + "\n"
	}
	keys := sortedKeys(m)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s: %v\n", tuistyles.HelpKeyStyle.Render(k), m[k]))
	}
	return b.String()
}
