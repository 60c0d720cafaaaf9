package simul

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

func TestSetGroupLabel(t *testing.T) {
	s := Load(sampleEntries())
	s, err := s.BeginLabelDraft(wallInsulation)
	require.NoError(t, err)
	draft, ok := s.LabelDraft(wallInsulation)
	require.True(t, ok)
	assert.Equal(t, "Isolation par l'extérieur", draft)

	next, err := s.SetGroupLabel(wallInsulation, "  ITE 20cm ")
	require.NoError(t, err)
	g, _ := next.Group(wallInsulation)
	assert.Equal(t, "ITE 20cm", g.Label)
	_, ok = next.LabelDraft(wallInsulation)
	assert.False(t, ok, "committing clears the draft")

	_, err = s.SetGroupLabel(wallInsulation, " ")
	assert.ErrorIs(t, err, ErrEmptyLabel)
}

func TestSetGroupDescription(t *testing.T) {
	s := Load(sampleEntries())

	next, err := s.SetGroupDescription(wallInsulation, "")
	require.NoError(t, err)
	g, _ := next.Group(wallInsulation)
	assert.Nil(t, g.Description)

	next, err = next.SetGroupDescription(wallInsulation, "Laine de bois")
	require.NoError(t, err)
	g, _ = next.Group(wallInsulation)
	assert.Equal(t, "Laine de bois", g.DescriptionText())

	orig, _ := s.Group(wallInsulation)
	assert.Equal(t, "ITE", orig.DescriptionText())
}

func TestScopeEdits(t *testing.T) {
	s := Load(sampleEntries())

	next, err := s.ToggleScopeItem(wallInsulation, "north")
	require.NoError(t, err)
	g, _ := next.Group(wallInsulation)
	assert.True(t, g.Scope[0].Selected)
	assert.False(t, g.Scope[1].Selected)

	next, err = next.SetAllScope(wallInsulation, true)
	require.NoError(t, err)
	g, _ = next.Group(wallInsulation)
	for _, item := range g.Scope {
		assert.True(t, item.Selected, item.ID)
	}

	_, err = s.ToggleScopeItem(wallInsulation, "west")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetChoiceLabel(t *testing.T) {
	s := Load(sampleEntries())

	next, err := s.SetChoiceLabel(wallInsulation, domain.LevelChoice2, "R=7")
	require.NoError(t, err)
	g, _ := next.Group(wallInsulation)
	assert.Equal(t, "R=7", g.Choices[1].Label)

	_, err = s.SetChoiceLabel(wallAlt, domain.LevelChoice2, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaths(t *testing.T) {
	s := Load(sampleEntries())

	next, err := s.SetEntryPath("wall", " /config/murs ")
	require.NoError(t, err)
	e, _ := next.Entry("wall")
	assert.Equal(t, "/config/murs", e.Path)

	next, err = next.SetGroupPath(wallInsulation, "/config/murs/ext")
	require.NoError(t, err)
	g, _ := next.Group(wallInsulation)
	assert.Equal(t, "/config/murs/ext", g.Path)
}

func TestDiscardDrafts(t *testing.T) {
	s := Load(sampleEntries())
	s = s.UpdateLabelDraft(wallInsulation, "a")
	s = s.UpdateDescriptionDraft(floorLow, "b")

	wallOnly := s.DiscardDrafts("wall")
	_, ok := wallOnly.LabelDraft(wallInsulation)
	assert.False(t, ok)
	d, ok := wallOnly.DescriptionDraft(floorLow)
	assert.True(t, ok)
	assert.Equal(t, "b", d)

	none := s.DiscardDrafts("")
	_, ok = none.DescriptionDraft(floorLow)
	assert.False(t, ok)
}

func TestSubmission(t *testing.T) {
	s := Load(sampleEntries())
	s, _, _ = s.ToggleLevel(wallInsulation, domain.LevelChoice1)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	sub := s.Submission("2287E1043883T", now)
	assert.Equal(t, "2287E1043883T", sub.RefAdeme)
	assert.Equal(t, json.Number("4"), sub.TotalCombinations)
	assert.Equal(t, []int{0, 2}, sub.CheckboxStates["wall_wall_ite"])
	assert.Equal(t, []int{0, 1}, sub.CheckboxStates["floor_low_floor_low_isol"])

	require.Len(t, sub.Entries, 3)
	wall := sub.Entries[0]
	assert.False(t, wall.Groups[0].Choices[0].Checked)
	assert.True(t, wall.Groups[0].Choices[1].Checked)

	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"totalCombinations":4`)
	assert.Contains(t, string(raw), `"simul":[`)
}
