package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
	"github.com/rgehrsitz/dpesim/internal/tui/tuistyles"
)

// GroupCard displays one simulation group with its level toggles
type GroupCard struct {
	Group    domain.SimulationGroup
	Levels   domain.LevelSet
	Focused  bool
	ReadOnly bool
	// Recorded is the level the selected scenario used, when known.
	Recorded    domain.Level
	HasRecorded bool
	Pending     string
	Width       int
	// ScopeCursor is the scope item under the cursor, -1 for none.
	ScopeCursor int
}

// NewGroupCard creates a card for g with its enabled levels.
func NewGroupCard(g domain.SimulationGroup, levels domain.LevelSet) *GroupCard {
	return &GroupCard{Group: g, Levels: levels, Width: 60, ScopeCursor: -1}
}

// WithRecorded marks the level of the selected scenario
func (c *GroupCard) WithRecorded(l domain.Level) *GroupCard {
	c.Recorded = l
	c.HasRecorded = true
	return c
}

// WithState sets focus and read-only mode
func (c *GroupCard) WithState(focused, readOnly bool) *GroupCard {
	c.Focused = focused
	c.ReadOnly = readOnly
	return c
}

// WithPending shows an in-flight action
func (c *GroupCard) WithPending(action string) *GroupCard {
	c.Pending = action
	return c
}

// WithScopeCursor marks scope item i
func (c *GroupCard) WithScopeCursor(i int) *GroupCard {
	c.ScopeCursor = i
	return c
}

// WithWidth sets the card width
func (c *GroupCard) WithWidth(width int) *GroupCard {
	c.Width = width
	return c
}

// Render returns the styled group card
func (c *GroupCard) Render() string {
	var b strings.Builder

	title := tuistyles.UnselectedItemStyle
	if !c.Group.Active {
		title = tuistyles.InactiveItemStyle
	} else if c.Focused {
		title = tuistyles.SelectedItemStyle
	}
	marker := "○"
	if c.Group.Active {
		marker = "●"
	}
	b.WriteString(title.Render(marker + " " + c.Group.Label))
	if c.Pending != "" {
		b.WriteString(" " + tuistyles.WarnStyle.Render("("+c.Pending+"…)"))
	}
	b.WriteString("\n")

	if d := c.Group.DescriptionText(); d != "" {
		b.WriteString(tuistyles.SubtitleStyle.Italic(true).Render(d))
		b.WriteString("\n")
	}

	if c.Group.Active {
		b.WriteString(c.renderLevels())
		if scope := c.renderScope(); scope != "" {
			b.WriteString("\n" + scope)
		}
	}

	style := tuistyles.BorderStyle
	switch {
	case c.ReadOnly:
		style = tuistyles.ReadOnlyBorderStyle
	case c.Focused:
		style = tuistyles.ActiveBorderStyle
	}
	return style.Width(c.Width).Render(strings.TrimRight(b.String(), "\n"))
}

func (c *GroupCard) renderLevels() string {
	rows := []string{c.levelRow(domain.LevelBaseline, "baseline")}
	for i, ch := range c.Group.Choices {
		if i >= domain.MaxChoices {
			break
		}
		rows = append(rows, c.levelRow(domain.LevelFromChoice(i), ch.Label))
	}
	return strings.Join(rows, "\n")
}

func (c *GroupCard) levelRow(l domain.Level, label string) string {
	enabled := !c.ReadOnly && simul.LevelInteractive(c.Group, c.Levels, l)
	row := fmt.Sprintf("%s %d %s", tuistyles.Checkbox(c.Levels.Has(l), enabled), int(l), label)
	if c.HasRecorded && c.Recorded == l {
		return tuistyles.HighlightStyle.Render(row)
	}
	return row
}

func (c *GroupCard) renderScope() string {
	if len(c.Group.Scope) == 0 {
		return ""
	}
	parts := make([]string, len(c.Group.Scope))
	for i, it := range c.Group.Scope {
		label := it.Label
		if label == "" {
			label = it.ID
		}
		mark := "□"
		if it.Selected {
			mark = "■"
		}
		parts[i] = mark + " " + label
		if i == c.ScopeCursor {
			parts[i] = "[" + parts[i] + "]"
		}
	}
	return lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Render("scope: " + strings.Join(parts, "  "))
}
