package edit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

var wallKey = domain.Key{EntryID: "wall", GroupID: "wall_ite"}

func testState() simul.State {
	return simul.Load([]domain.Entry{
		{
			ID: "wall",
			Groups: []domain.SimulationGroup{
				{
					ID:     "wall_ite",
					Active: true,
					Choices: []domain.Choice{
						{ID: "r4", PresetChecked: true},
						{ID: "r6", PresetChecked: true},
					},
					Scope: []domain.ScopeItem{{ID: "north"}, {ID: "south"}},
				},
				{ID: "wall_iti", Choices: []domain.Choice{{ID: "r3"}}},
			},
		},
	})
}

func TestParse(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		spec string
		want Edit
	}{
		{"toggle_entry:entry=wall", ToggleEntry{EntryID: "wall"}},
		{"toggle_group: entry=wall, group=wall_iti", ToggleGroup{Key: domain.Key{EntryID: "wall", GroupID: "wall_iti"}}},
		{"toggle_level:entry=wall,group=wall_ite,level=2", ToggleLevel{Key: wallKey, Level: domain.LevelChoice2}},
		{"set_levels:entry=wall,group=wall_ite,levels=0+2", SetLevels{Key: wallKey, Levels: domain.NewLevelSet(0, 2)}},
		{"toggle_scope:entry=wall,group=wall_ite,item=north", ToggleScope{Key: wallKey, ItemID: "north"}},
		{"scope_all:entry=wall,group=wall_ite,selected=false", SetAllScope{Key: wallKey}},
		{"scope_all:entry=wall,group=wall_ite", SetAllScope{Key: wallKey, Selected: true}},
		{"group_path:entry=wall,group=wall_ite,path=/config/wall/north", GroupPath{Key: wallKey, Path: "/config/wall/north"}},
		{"add_entry:label=Ventilation", AddEntry{Label: "Ventilation"}},
		{"remove_group:entry=wall,group=wall_iti", RemoveGroup{Key: domain.Key{EntryID: "wall", GroupID: "wall_iti"}}},
		{"reset", Reset{}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := r.Parse(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	r := NewRegistry()
	for _, spec := range []string{
		"",
		"unknown:x=1",
		"toggle_entry:",
		"toggle_level:entry=wall,group=wall_ite",
		"toggle_level:entry=wall,group=wall_ite,level=3",
		"toggle_group:entry=wall,group",
		"set_levels:entry=wall,group=wall_ite,levels=0+x",
		"scope_all:entry=wall,group=wall_ite,selected=maybe",
		"group_path:entry=wall,group=wall_ite",
	} {
		if _, err := r.Parse(spec); err == nil {
			t.Errorf("Parse(%q) expected error", spec)
		}
	}
}

func TestListIsSorted(t *testing.T) {
	names := NewRegistry().List()
	assert.Contains(t, names, "toggle_level")
	assert.IsIncreasing(t, names)
}

func TestGroupPathEdit(t *testing.T) {
	next, err := ApplyEdits(testState(), []Edit{GroupPath{Key: wallKey, Path: " /config/wall/north "}})
	require.NoError(t, err)
	g, ok := next.Group(wallKey)
	require.True(t, ok)
	assert.Equal(t, "/config/wall/north", g.Path)

	_, err = ApplyEdits(testState(), []Edit{GroupPath{Key: domain.Key{EntryID: "roof", GroupID: "x"}, Path: "/p"}})
	assert.Error(t, err)
}

func TestApplyEdits(t *testing.T) {
	base := testState()
	require.Equal(t, "3", base.Total().String())

	edits, err := NewRegistry().ParseAll([]string{
		"toggle_level:entry=wall,group=wall_ite,level=1",
		"add_entry:label=Ventilation",
	})
	require.NoError(t, err)

	got, err := ApplyEdits(base, edits)
	require.NoError(t, err)
	assert.Equal(t, "2", got.Total().String())
	assert.Len(t, got.Entries(), 2)
	assert.Equal(t, "3", base.Total().String())
}

func TestApplyEditsStopsAtFirstFailure(t *testing.T) {
	base := testState()
	edits := []Edit{
		ToggleLevel{Key: wallKey, Level: domain.LevelChoice1},
		ToggleLevel{Key: wallKey, Level: domain.LevelBaseline},
	}

	got, err := ApplyEdits(base, edits)
	require.Error(t, err)

	var editErr *Error
	require.True(t, errors.As(err, &editErr))
	assert.Equal(t, 1, editErr.Index)
	assert.ErrorIs(t, err, ErrUnchanged)
	assert.Equal(t, base.Total().String(), got.Total().String())
}

func TestSetLevelsRequiresBaseline(t *testing.T) {
	_, err := SetLevels{Key: wallKey, Levels: domain.NewLevelSet(1)}.Apply(testState())
	assert.Error(t, err)
}

func TestToggleGroupSwitchesSibling(t *testing.T) {
	got, err := ApplyEdits(testState(), []Edit{ToggleGroup{Key: domain.Key{EntryID: "wall", GroupID: "wall_iti"}}})
	require.NoError(t, err)

	e, ok := got.Entry("wall")
	require.True(t, ok)
	g, ok := e.ActiveGroup()
	require.True(t, ok)
	assert.Equal(t, "wall_iti", g.ID)
}
