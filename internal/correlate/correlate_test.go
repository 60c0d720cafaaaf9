package correlate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/dpesim/internal/calculation"
	"github.com/rgehrsitz/dpesim/internal/domain"
)

var (
	wallKey  = domain.Key{EntryID: "wall", GroupID: "ite"}
	floorKey = domain.Key{EntryID: "floor_low", GroupID: "isol"}
)

func testEntries() []domain.Entry {
	return []domain.Entry{
		{ID: "window", Path: "/config/window", Groups: []domain.SimulationGroup{{ID: "dv"}}},
		{ID: "wall", Path: "/config/wall", Groups: []domain.SimulationGroup{
			{ID: "iti"},
			{ID: "ite", Active: true, Choices: []domain.Choice{{ID: "a"}, {ID: "b"}}},
		}},
		{ID: "floor_low", Path: "/config/floor_low", Groups: []domain.SimulationGroup{
			{ID: "isol", Active: true, Choices: []domain.Choice{{ID: "c"}}},
		}},
	}
}

func testLevels() calculation.LevelMap {
	return calculation.LevelMap{
		wallKey:  domain.NewLevelSet(0, 1, 2),
		floorKey: domain.NewLevelSet(0, 1),
	}
}

func TestCards(t *testing.T) {
	cards := Cards(testEntries())
	require.Len(t, cards, 2)
	assert.Equal(t, wallKey, cards[0].Key)
	assert.Equal(t, 0, cards[0].Index)
	assert.Equal(t, floorKey, cards[1].Key)

	idx, ok := CardIndex(testEntries(), floorKey)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = CardIndex(testEntries(), domain.Key{EntryID: "window", GroupID: "dv"})
	assert.False(t, ok)
	assert.Equal(t, []domain.Key{wallKey, floorKey}, CardKeys(testEntries()))
}

func TestEnumeration_LastCardFastest(t *testing.T) {
	en := Enumerate(testEntries(), testLevels())
	size, ok := en.Size()
	require.True(t, ok)
	require.Equal(t, 6, size)

	want := [][]domain.Level{
		{0, 0}, {0, 1},
		{1, 0}, {1, 1},
		{2, 0}, {2, 1},
	}
	for k, levels := range want {
		got, err := en.LevelsAt(k)
		require.NoError(t, err)
		assert.Equal(t, levels, got, "ordinal %d", k)

		back, err := en.OrdinalOf(got)
		require.NoError(t, err)
		assert.Equal(t, k, back)
	}

	_, err := en.LevelsAt(6)
	assert.ErrorIs(t, err, ErrOrdinalRange)
	_, err = en.OrdinalOf([]domain.Level{0})
	assert.ErrorIs(t, err, ErrOrdinalRange)
	_, err = en.OrdinalOf([]domain.Level{0, 2})
	assert.ErrorIs(t, err, ErrOrdinalRange)
}

func TestEnumeration_SizeMatchesCounter(t *testing.T) {
	entries := testEntries()
	levels := testLevels()
	en := Enumerate(entries, levels)
	total := calculation.TotalCombinations(entries, levels)
	size, ok := en.Size()
	require.True(t, ok)
	assert.Equal(t, total.IntPart(), int64(size))
}

func TestEnumeration_SizeOverflow(t *testing.T) {
	var entries []domain.Entry
	levels := calculation.LevelMap{}
	for i := 0; i < 41; i++ {
		id := fmt.Sprintf("e%d", i)
		entries = append(entries, domain.Entry{ID: id, Groups: []domain.SimulationGroup{
			{ID: "g", Active: true, Choices: []domain.Choice{{ID: "a"}, {ID: "b"}}},
		}})
		levels[domain.Key{EntryID: id, GroupID: "g"}] = domain.NewLevelSet(0, 1, 2)
	}

	en := Enumerate(entries, levels)
	_, ok := en.Size()
	assert.False(t, ok)
	assert.Equal(t, "36472996377170786403", calculation.TotalCombinations(entries, levels).String())

	_, err := en.LevelsAt(5)
	assert.ErrorIs(t, err, ErrTooLarge)
	_, err = en.OrdinalOf(make([]domain.Level, 41))
	assert.ErrorIs(t, err, ErrTooLarge)

	// 39 cards still fit
	en = Enumerate(entries[:39], levels)
	size, ok := en.Size()
	require.True(t, ok)
	assert.Equal(t, 4052555153018976267, size)
	got, err := en.LevelsAt(size - 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Level(2), got[38])
}

func TestEnumeration_NoCards(t *testing.T) {
	en := Enumerate(nil, calculation.LevelMap{})
	size, ok := en.Size()
	assert.True(t, ok)
	assert.Equal(t, 1, size)
	levels, err := en.LevelsAt(0)
	require.NoError(t, err)
	assert.Empty(t, levels)
}

type stubFetcher struct {
	detail domain.ScenarioDetail
	err    error
	calls  int
}

func (s *stubFetcher) ScenarioDetail(_ context.Context, _ string, _, _ int) (domain.ScenarioDetail, error) {
	s.calls++
	return s.detail, s.err
}

func TestLookup(t *testing.T) {
	f := &stubFetcher{detail: domain.ScenarioDetail{Status: "ok", Choices: []int{1, 0}}}

	detail, err := Lookup(context.Background(), f, "REF", 3, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, detail.Choices)

	_, err = Lookup(context.Background(), f, "REF", 6, 6)
	assert.ErrorIs(t, err, ErrOrdinalRange)
	_, err = Lookup(context.Background(), f, "REF", 0, 0)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Equal(t, 1, f.calls)

	boom := errors.New("boom")
	_, err = Lookup(context.Background(), &stubFetcher{err: boom}, "REF", 1, 6)
	assert.ErrorIs(t, err, boom)
}

func TestHighlight(t *testing.T) {
	detail := domain.ScenarioDetail{Choices: []int{2, 0, 7}}

	l, ok := Highlight(detail, 0)
	assert.True(t, ok)
	assert.Equal(t, domain.LevelChoice2, l)

	_, ok = Highlight(detail, 2)
	assert.False(t, ok)
	_, ok = Highlight(detail, 3)
	assert.False(t, ok)
}

func TestCardInputs(t *testing.T) {
	detail := domain.ScenarioDetail{
		Choices: []int{1, 0},
		Inputs: []any{
			map[string]any{"/config/wall.u_value": 0.2, "/config/wallpaper": "x"},
			map[string]any{"/config/floor_low.r": 3.0},
		},
	}

	info, err := CardInputs(detail, testEntries(), wallKey, domain.LevelChoice1)
	require.NoError(t, err)
	assert.Equal(t, 0, info.CardIndex)
	assert.Equal(t, map[string]any{"u_value": 0.2, "/config/wallpaper": "x"}, info.Inputs)

	info, err = CardInputs(detail, testEntries(), floorKey, domain.LevelBaseline)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"r": 3.0}, info.Inputs)

	_, err = CardInputs(detail, testEntries(), domain.Key{EntryID: "wall", GroupID: "iti"}, 0)
	assert.ErrorIs(t, err, ErrCardInactive)

	_, err = CardInputs(domain.ScenarioDetail{}, testEntries(), wallKey, 0)
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestCardInputs_ShortInputs(t *testing.T) {
	detail := domain.ScenarioDetail{Inputs: []any{map[string]any{"a": 1.0}}}
	info, err := CardInputs(detail, testEntries(), floorKey, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, info.Inputs)
}

func TestStripPathPrefix(t *testing.T) {
	in := map[string]any{
		"/config/wall.a": map[string]any{
			"/config/wall.b": []any{map[string]any{"/config/wall.c": 1.0}},
		},
		"/config/wall": "kept",
		"other":        2.0,
	}

	got := StripPathPrefix(in, "/config/wall")
	want := map[string]any{
		"a": map[string]any{
			"b": []any{map[string]any{"c": 1.0}},
		},
		"/config/wall": "kept",
		"other":        2.0,
	}
	assert.Equal(t, want, got)
	_, untouched := in["/config/wall.a"]
	assert.True(t, untouched)

	assert.Equal(t, "scalar", StripPathPrefix("scalar", "/config/wall"))
}
