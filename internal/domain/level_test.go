package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelSet_WithWithout(t *testing.T) {
	s := NewLevelSet(LevelChoice2, LevelBaseline, LevelChoice2)
	assert.Equal(t, []Level{LevelBaseline, LevelChoice2}, s.Levels())
	assert.Equal(t, 2, s.Len())

	added := s.With(LevelChoice1)
	assert.Equal(t, "{0,1,2}", added.String())
	assert.Equal(t, "{0,2}", s.String(), "With must not modify the receiver")

	removed := added.Without(LevelChoice2)
	assert.Equal(t, []int{0, 1}, removed.Ints())
	assert.True(t, removed.Has(LevelChoice1))
	assert.False(t, removed.Has(LevelChoice2))
}

func TestLevelSet_Valid(t *testing.T) {
	tests := []struct {
		name string
		set  LevelSet
		want bool
	}{
		{"baseline only", NewLevelSet(LevelBaseline), true},
		{"all levels", NewLevelSet(0, 1, 2), true},
		{"missing baseline", NewLevelSet(LevelChoice1), false},
		{"empty", LevelSet{}, false},
		{"unknown level", NewLevelSet(0, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v for %s", got, tt.want, tt.set)
			}
		})
	}
}

func TestLevelSet_Equal(t *testing.T) {
	assert.True(t, NewLevelSet(2, 0).Equal(NewLevelSet(0, 2)))
	assert.False(t, NewLevelSet(0).Equal(NewLevelSet(0, 1)))
}

func TestParseLevelSet(t *testing.T) {
	set, err := ParseLevelSet("0+2")
	require.NoError(t, err)
	assert.Equal(t, "{0,2}", set.String())

	set, err = ParseLevelSet("1, 0")
	require.NoError(t, err)
	assert.Equal(t, "{0,1}", set.String())

	_, err = ParseLevelSet("0+5")
	var lerr *LevelError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "5", lerr.Input)

	_, err = ParseLevelSet("zero")
	assert.Error(t, err)
}

func TestLevel_ChoiceMapping(t *testing.T) {
	assert.Equal(t, LevelChoice1, LevelFromChoice(0))
	assert.Equal(t, LevelChoice2, LevelFromChoice(1))
	assert.Equal(t, -1, LevelBaseline.ChoiceIndex())
	assert.Equal(t, 1, LevelChoice2.ChoiceIndex())
	assert.Equal(t, "choice1", LevelChoice1.String())
	assert.Equal(t, "level(7)", Level(7).String())
}
