package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgehrsitz/dpesim/internal/bridge"
	"github.com/rgehrsitz/dpesim/internal/domain"
)

func wallGroup(active bool) domain.SimulationGroup {
	return domain.SimulationGroup{
		ID:     "wall_ite",
		Active: active,
		Label:  "ITE",
		Choices: []domain.Choice{
			{ID: "ite_r4", Label: "R=4"},
			{ID: "ite_r6", Label: "R=6"},
		},
		Scope: []domain.ScopeItem{{ID: "north", Label: "Nord", Selected: true}, {ID: "south", Label: "Sud"}},
	}
}

func TestGroupCardRender(t *testing.T) {
	levels := domain.NewLevelSet(domain.LevelBaseline, domain.LevelChoice1)
	out := NewGroupCard(wallGroup(true), levels).WithPending("attaching scope").Render()

	assert.Contains(t, out, "ITE")
	assert.Contains(t, out, "R=4")
	assert.Contains(t, out, "R=6")
	assert.Contains(t, out, "■ Nord")
	assert.Contains(t, out, "□ Sud")
	assert.Contains(t, out, "attaching scope")
}

func TestGroupCardScopeCursor(t *testing.T) {
	levels := domain.NewLevelSet(domain.LevelBaseline)

	out := NewGroupCard(wallGroup(true), levels).WithScopeCursor(1).Render()
	assert.Contains(t, out, "[□ Sud]")
	assert.NotContains(t, out, "[■ Nord]")

	out = NewGroupCard(wallGroup(true), levels).Render()
	assert.NotContains(t, out, "[")
}

func TestGroupCardInactiveHidesLevels(t *testing.T) {
	out := NewGroupCard(wallGroup(false), domain.LevelSet{}).Render()

	assert.Contains(t, out, "ITE")
	assert.NotContains(t, out, "R=4")
	assert.NotContains(t, out, "scope:")
}

func TestNoticeLogKeepsLatest(t *testing.T) {
	log := NewNoticeLog(2)
	log.Add(bridge.Notice{Level: bridge.NoticeInfo, Message: "one"})
	log.Add(bridge.Notice{Level: bridge.NoticeWarn, Message: "two"})
	log.Add(bridge.Notice{Level: bridge.NoticeError, Message: "three", Err: errors.New("boom")})

	notices := log.Notices()
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(notices))
	}
	assert.Equal(t, "two", notices[0].Message)
	assert.Equal(t, "three", notices[1].Message)

	out := log.Render()
	assert.Contains(t, out, "! two")
	assert.Contains(t, out, "✗ three")

	log.Clear()
	assert.Empty(t, log.Notices())
	assert.Equal(t, "", log.Render())
}

func TestScatterChartGeometry(t *testing.T) {
	c := NewScatterChart("EP", []float64{10, 20, 30, 40, 50})
	c.WithSize(60, 12)

	assert.Equal(t, 0, c.Column(0))
	assert.Equal(t, c.plotWidth()-1, c.Column(4))
	assert.Equal(t, 0, c.Row(10, 0, 10))
	assert.Equal(t, 11, c.Row(0, 0, 10))
	assert.Equal(t, 11, c.Row(5, 5, 5), "flat range falls back to the bottom row")

	lo, hi := c.Bounds()
	assert.InDelta(t, 6, lo, 1e-9)
	assert.InDelta(t, 54, hi, 1e-9)
}

func TestScatterChartRender(t *testing.T) {
	empty := NewScatterChart("EP", nil).Render()
	assert.Contains(t, empty, "No scenarios")

	out := NewScatterChart("EP", []float64{10, 20, 30}).WithMarks(1, 2).Render()
	assert.Contains(t, out, "EP")
	assert.Equal(t, 1, strings.Count(out, string(cursorChar)))
	assert.Equal(t, 1, strings.Count(out, string(selectedChar)))
	assert.Contains(t, out, "0 … 2")
}

func TestMetricCardRender(t *testing.T) {
	out := NewMetricCard("EP", "120.0").
		WithDelta(false, true, "-12.5%").
		WithDescription("baseline 137").
		WithWidth(30).
		Render()

	assert.Contains(t, out, "EP")
	assert.Contains(t, out, "120.0")
	assert.Contains(t, out, "▼ -12.5%")
	assert.Contains(t, out, "baseline 137")

	row := MetricRow(NewMetricCard("A", "1"), nil, NewMetricCard("B", "2"))
	assert.Contains(t, row, "A")
	assert.Contains(t, row, "B")
}
