package simul

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

func TestTotal_WallAndFloor(t *testing.T) {
	s := Load(sampleEntries())
	assert.True(t, s.Total().Equal(decimal.NewFromInt(6)), "got %s", s.Total())
}

func TestToggleGroup_DeactivateExcludesEntry(t *testing.T) {
	s := Load(sampleEntries())

	next, err := s.ToggleGroup(wallInsulation)
	require.NoError(t, err)
	assert.True(t, next.Total().Equal(decimal.NewFromInt(2)), "got %s", next.Total())
	assert.True(t, s.Total().Equal(decimal.NewFromInt(6)), "previous state must be untouched")
}

func TestToggleGroup_MutualExclusion(t *testing.T) {
	s := Load(sampleEntries())

	next, err := s.ToggleGroup(wallAlt)
	require.NoError(t, err)

	wall, _ := next.Entry("wall")
	active := 0
	for _, g := range wall.Groups {
		if g.Active {
			active++
		}
	}
	assert.Equal(t, 1, active)
	g, ok := wall.ActiveGroup()
	require.True(t, ok)
	assert.Equal(t, "wall_iti", g.ID)
	assert.Equal(t, "{0}", next.Levels(wallAlt).String())
	assert.Equal(t, []domain.Key{wallAlt, floorLow}, next.ActiveKeys())
}

func TestToggleGroup_KeepsExistingLevels(t *testing.T) {
	s := Load(sampleEntries())
	s, _ = s.SetEnabledLevels(wallInsulation, domain.NewLevelSet(0, 2))
	s, _ = s.ToggleGroup(wallInsulation)
	s, _ = s.ToggleGroup(wallInsulation)
	assert.Equal(t, "{0,2}", s.Levels(wallInsulation).String())
}

func TestToggleEntry(t *testing.T) {
	s := Load(sampleEntries())

	next, err := s.ToggleEntry("window")
	require.NoError(t, err)
	w, _ := next.Entry("window")
	assert.True(t, w.Groups[0].Active)
	assert.True(t, next.Total().Equal(decimal.NewFromInt(6)), "no choices means factor 1")

	_, err = s.ToggleEntry("roof")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLevel_BaselineIsNoop(t *testing.T) {
	s := Load(sampleEntries())

	next, changed, err := s.ToggleLevel(wallInsulation, domain.LevelBaseline)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "{0,1,2}", next.Levels(wallInsulation).String())
}

func TestToggleLevel_FactorRatio(t *testing.T) {
	s := Load(sampleEntries())
	before := s.Total()

	next, changed, err := s.ToggleLevel(floorLow, domain.LevelChoice2)
	require.NoError(t, err)
	require.True(t, changed)
	// floor goes from 2 to 3 enabled levels, the wall factor is unchanged.
	want := before.Mul(decimal.NewFromInt(3)).Div(decimal.NewFromInt(2))
	assert.True(t, next.Total().Equal(want), "got %s want %s", next.Total(), want)

	back, _, err := next.ToggleLevel(floorLow, domain.LevelChoice2)
	require.NoError(t, err)
	assert.True(t, back.Total().Equal(before))
}

func TestToggleLevel_RequiresBaselineAndChoice(t *testing.T) {
	s := Load(sampleEntries())

	_, changed, err := s.ToggleLevel(wallAlt, domain.LevelChoice2)
	require.NoError(t, err)
	assert.False(t, changed, "wall_iti has a single choice")

	broken, err := s.SetEnabledLevels(floorLow, domain.NewLevelSet(domain.LevelChoice1))
	require.NoError(t, err)
	_, changed, err = broken.ToggleLevel(floorLow, domain.LevelChoice2)
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = s.ToggleLevel(domain.Key{EntryID: "wall", GroupID: "x"}, domain.LevelChoice1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReset(t *testing.T) {
	s := Load(sampleEntries())

	s, _ = s.ToggleGroup(wallAlt)
	s, _, _ = s.ToggleLevel(floorLow, domain.LevelChoice1)
	s, _ = s.BeginLabelDraft(floorLow)
	s, _ = s.SetGroupLabel(wallInsulation, "Renamed")

	r := s.Reset()
	wall, _ := r.Entry("wall")
	assert.True(t, wall.Groups[0].Active)
	assert.False(t, wall.Groups[1].Active)
	assert.Equal(t, "Renamed", wall.Groups[0].Label, "reset restores activation, not edits")
	assert.Equal(t, "{0,1,2}", r.Levels(wallInsulation).String())
	assert.Equal(t, "{0,1}", r.Levels(floorLow).String())
	_, hasDraft := r.LabelDraft(floorLow)
	assert.False(t, hasDraft)
	assert.True(t, r.Total().Equal(decimal.NewFromInt(6)))
}

func TestCardOrderStableAcrossEdits(t *testing.T) {
	s := Load(sampleEntries())
	before := s.ActiveKeys()

	s, _ = s.SetGroupLabel(wallInsulation, "Nouveau nom")
	s, _ = s.SetGroupDescription(floorLow, "desc")
	s, _ = s.ToggleScopeItem(wallInsulation, "north")
	s, _ = s.SetAllScope(wallInsulation, true)

	assert.Equal(t, before, s.ActiveKeys())
}

func TestLevelInteractive(t *testing.T) {
	g := sampleEntries()[0].Groups[0]
	full := domain.NewLevelSet(0, 1, 2)

	assert.False(t, LevelInteractive(g, full, domain.LevelBaseline))
	assert.True(t, LevelInteractive(g, full, domain.LevelChoice1))
	assert.False(t, LevelInteractive(g, domain.NewLevelSet(domain.LevelChoice1), domain.LevelChoice1))
	assert.False(t, LevelInteractive(g, full, domain.Level(3)))
}
