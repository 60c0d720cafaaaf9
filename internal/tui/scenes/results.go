package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/compare"
	"github.com/rgehrsitz/dpesim/internal/correlate"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/tui/components"
	"github.com/rgehrsitz/dpesim/internal/tui/tuistyles"
)

type resultsKeyMap struct {
	Left, Right key.Binding
	First, Last key.Binding
	Select      key.Binding
	Clear       key.Binding
	Best        key.Binding
	Metric      key.Binding
}

var resultsKeys = resultsKeyMap{
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
	First:  key.NewBinding(key.WithKeys("home", "g")),
	Last:   key.NewBinding(key.WithKeys("end", "G")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Clear:  key.NewBinding(key.WithKeys("x", "backspace"), key.WithHelp("x", "clear")),
	Best:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "best")),
	Metric: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "EP/GES")),
}

// ResultsModel plots the generated scenarios of the project. Picking a point
// publishes a selection on the dispatcher; the model applies it to the bridge.
type ResultsModel struct {
	bridge     *bridge.Bridge
	dispatcher *bridge.Dispatcher

	cursor   int
	emission bool

	width  int
	height int
}

// NewResultsModel creates the results scene
func NewResultsModel(b *bridge.Bridge, d *bridge.Dispatcher) *ResultsModel {
	return &ResultsModel{bridge: b, dispatcher: d}
}

// SetSize updates the scene dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Cursor returns the ordinal under the cursor.
func (m *ResultsModel) Cursor() int { return m.cursor }

// Update handles messages for the results scene
func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := len(m.bridge.Points())
	if n == 0 {
		return m, nil
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}

	switch {
	case key.Matches(keyMsg, resultsKeys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, resultsKeys.Right):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, resultsKeys.First):
		m.cursor = 0
	case key.Matches(keyMsg, resultsKeys.Last):
		m.cursor = n - 1
	case key.Matches(keyMsg, resultsKeys.Select):
		m.dispatcher.Publish(bridge.SelectionChanged{Ordinal: m.cursor})
	case key.Matches(keyMsg, resultsKeys.Clear):
		m.dispatcher.Publish(bridge.SelectionCleared{})
	case key.Matches(keyMsg, resultsKeys.Best):
		if best, ok := m.best(); ok {
			m.cursor = best
		}
	case key.Matches(keyMsg, resultsKeys.Metric):
		m.emission = !m.emission
	}
	return m, nil
}

// comparison measures every point against the baseline, sorted on the
// metric currently plotted.
func (m *ResultsModel) comparison() (*compare.ComparisonSet, error) {
	ref, _ := m.bridge.Ref()
	en := correlate.Enumerate(m.bridge.State().Entries(), m.bridge.State())
	sortBy := compare.SortEPConso
	if m.emission {
		sortBy = compare.SortEmission
	}
	return compare.Compare(ref, m.bridge.Points(), compare.Options{Enumeration: &en, SortBy: sortBy})
}

// best returns the ordinal with the lowest value of the plotted metric.
func (m *ResultsModel) best() (int, bool) {
	cs, err := m.comparison()
	if err != nil || len(cs.Alternatives) == 0 {
		return 0, false
	}
	top := cs.Alternatives[0]
	base := cs.Baseline
	if m.emission && base.Emission.LessThan(top.Emission) || !m.emission && base.EPConso.LessThan(top.EPConso) {
		return base.Ordinal, true
	}
	return top.Ordinal, true
}

func (m *ResultsModel) values() []float64 {
	points := m.bridge.Points()
	out := make([]float64, len(points))
	for i, p := range points {
		if m.emission {
			out[i] = p.Result.EmissionGES5UsagesM2
		} else {
			out[i] = p.Result.EPConso5UsagesM2
		}
	}
	return out
}

// View renders the results scene
func (m *ResultsModel) View() string {
	points := m.bridge.Points()
	if len(points) == 0 {
		return renderNoResultsState()
	}
	if m.cursor >= len(points) {
		m.cursor = len(points) - 1
	}

	selected := -1
	if k, ok := m.bridge.Selected(); ok {
		selected = k
	}

	title, unit := "Primary energy per scenario", "kWh EP/m²/yr"
	if m.emission {
		title, unit = "Emissions per scenario", "kg CO₂/m²/yr"
	}
	chart := components.NewScatterChart(title, m.values()).
		WithSize(max(m.width-4, 40), max(m.height-18, 8)).
		WithMarks(m.cursor, selected)
	chart.YAxisLabel = unit

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderMetrics(points),
		"",
		chart.Render(),
		"",
		m.renderSummary(),
		"",
		renderResultsHelp(),
	)
}

func (m *ResultsModel) renderMetrics(points []domain.GraphPoint) string {
	base := points[0].Result
	cur := points[m.cursor].Result

	ep := components.NewMetricCard(fmt.Sprintf("Scenario #%d EP", m.cursor), formatPerM2(cur.EPConso5UsagesM2, "kWh")).WithWidth(26)
	ges := components.NewMetricCard("Emissions", formatPerM2(cur.EmissionGES5UsagesM2, "kg")).WithWidth(26)
	if m.cursor > 0 {
		ep.WithDelta(cur.EPConso5UsagesM2 > base.EPConso5UsagesM2, cur.EPConso5UsagesM2 <= base.EPConso5UsagesM2,
			pctChange(cur.EPConso5UsagesM2, base.EPConso5UsagesM2))
		ges.WithDelta(cur.EmissionGES5UsagesM2 > base.EmissionGES5UsagesM2, cur.EmissionGES5UsagesM2 <= base.EmissionGES5UsagesM2,
			pctChange(cur.EmissionGES5UsagesM2, base.EmissionGES5UsagesM2))
	} else {
		ep.WithDescription("baseline")
	}
	count := components.NewMetricCard("Scenarios", fmt.Sprintf("%d", len(points))).WithWidth(20)
	if k, ok := m.bridge.Selected(); ok {
		count.WithDescription(fmt.Sprintf("selected #%d", k))
	}
	return components.MetricRow(ep, ges, count)
}

func pctChange(v, base float64) string {
	if base == 0 {
		return fmt.Sprintf("%+.1f", v-base)
	}
	return fmt.Sprintf("%+.1f%%", (v-base)/base*100)
}

// renderSummary lists the recommendations of the comparison with the
// baseline.
func (m *ResultsModel) renderSummary() string {
	cs, err := m.comparison()
	if err != nil {
		return tuistyles.ErrorStyle.Render(err.Error())
	}
	var b strings.Builder
	b.WriteString(tuistyles.MetricLabelStyle.Render("Highlights"))
	for _, r := range cs.Recommendations {
		b.WriteString("\n• " + r)
	}
	if len(cs.Keys) == 0 {
		b.WriteString("\n" + tuistyles.WarnStyle.Render("The configuration changed since these scenarios were generated."))
	}
	return b.String()
}

func renderNoResultsState() string {
	return tuistyles.BorderStyle.Render(`No scenarios generated yet.

Apply the configuration (S) from the editor, then reload (ctrl+r).`)
}

func renderResultsHelp() string {
	return tuistyles.HelpDescStyle.Render("←/→ move • enter select • x clear • b best • m EP/GES • tab editor")
}
