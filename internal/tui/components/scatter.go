package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/dpesim/internal/tui/tuistyles"
)

const (
	pointChar    = '·'
	cursorChar   = '●'
	selectedChar = '◆'
)

// ScatterChart plots one value per scenario ordinal. It stands in for the
// plotting surface: the cursor is what a hover would show, the selection is
// what a click picked.
type ScatterChart struct {
	Title      string
	Values     []float64
	Cursor     int
	Selected   int
	Width      int
	Height     int
	YAxisLabel string
}

// NewScatterChart creates a chart with no cursor or selection.
func NewScatterChart(title string, values []float64) *ScatterChart {
	return &ScatterChart{
		Title:    title,
		Values:   values,
		Cursor:   -1,
		Selected: -1,
		Width:    60,
		Height:   12,
	}
}

// WithSize sets the chart dimensions
func (c *ScatterChart) WithSize(width, height int) *ScatterChart {
	c.Width = width
	c.Height = height
	return c
}

// WithMarks sets the cursor and selected ordinals (-1 for none).
func (c *ScatterChart) WithMarks(cursor, selected int) *ScatterChart {
	c.Cursor = cursor
	c.Selected = selected
	return c
}

// Column returns the grid column of ordinal k.
func (c *ScatterChart) Column(k int) int {
	cols := c.plotWidth()
	if len(c.Values) <= 1 || cols <= 1 {
		return 0
	}
	return int(float64(k) / float64(len(c.Values)-1) * float64(cols-1))
}

// Row returns the grid row of a value between lo and hi; row 0 is the top.
func (c *ScatterChart) Row(v, lo, hi float64) int {
	if hi <= lo || c.Height <= 1 {
		return c.Height - 1
	}
	return c.Height - 1 - int((v-lo)/(hi-lo)*float64(c.Height-1))
}

func (c *ScatterChart) plotWidth() int {
	return max(c.Width-yAxisWidth-3, 1)
}

const yAxisWidth = 8

// Bounds returns the padded value range.
func (c *ScatterChart) Bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range c.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.1
	return lo - pad, hi + pad
}

// Render returns the styled chart
func (c *ScatterChart) Render() string {
	if len(c.Values) == 0 {
		return tuistyles.InfoStyle.Render("No scenarios generated yet")
	}

	var out strings.Builder
	if c.Title != "" {
		out.WriteString(tuistyles.TitleStyle.Render(c.Title))
		out.WriteString("\n\n")
	}

	cols := c.plotWidth()
	lo, hi := c.Bounds()
	grid := make([][]rune, c.Height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	plot := func(k int, ch rune) {
		if k < 0 || k >= len(c.Values) {
			return
		}
		x, y := c.Column(k), c.Row(c.Values[k], lo, hi)
		if x >= 0 && x < cols && y >= 0 && y < c.Height {
			grid[y][x] = ch
		}
	}
	for k := range c.Values {
		plot(k, pointChar)
	}
	plot(c.Selected, selectedChar)
	plot(c.Cursor, cursorChar)

	axis := lipgloss.NewStyle().
		Foreground(tuistyles.ColorMuted).
		Width(yAxisWidth).
		Align(lipgloss.Right)
	for i, row := range grid {
		label := ""
		if i == 0 || i == c.Height-1 || i == c.Height/2 {
			label = fmt.Sprintf("%.0f", hi-(float64(i)/float64(max(c.Height-1, 1)))*(hi-lo))
		}
		out.WriteString(axis.Render(label))
		out.WriteString(" │ ")
		out.WriteString(string(row))
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", cols))
	out.WriteString("\n")
	out.WriteString(strings.Repeat(" ", yAxisWidth+3))
	out.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("0 … %d (scenario ordinal)", len(c.Values)-1)))

	if c.YAxisLabel != "" {
		out.WriteString("\n")
		out.WriteString(tuistyles.SubtitleStyle.Italic(true).Render(c.YAxisLabel))
	}
	return out.String()
}
