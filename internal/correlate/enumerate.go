package correlate

import (
	"errors"
	"fmt"
	"math"

	"github.com/rgehrsitz/dpesim/internal/calculation"
	"github.com/rgehrsitz/dpesim/internal/domain"
)

var (
	// ErrOrdinalRange is returned for ordinals outside the enumeration.
	ErrOrdinalRange = errors.New("ordinal out of range")
	// ErrTooLarge is returned when the scenario count does not fit in an int.
	ErrTooLarge = errors.New("enumeration too large")
)

// Enumeration is the cross product of every card's enabled levels. The last
// card varies fastest and levels inside a card are taken in ascending order,
// so ordinal 0 is the all-baseline scenario.
type Enumeration struct {
	keys   []domain.Key
	levels [][]domain.Level
}

// Enumerate builds the enumeration of the current configuration.
func Enumerate(entries []domain.Entry, levels calculation.LevelSource) Enumeration {
	cards := Cards(entries)
	en := Enumeration{
		keys:   make([]domain.Key, len(cards)),
		levels: make([][]domain.Level, len(cards)),
	}
	for i, c := range cards {
		en.keys[i] = c.Key
		en.levels[i] = levels.Levels(c.Key).Levels()
	}
	return en
}

// Keys returns the card keys, in order.
func (en Enumeration) Keys() []domain.Key {
	return append([]domain.Key(nil), en.keys...)
}

// Size is the number of scenarios, matching calculation.TotalCombinations.
// ok is false when the count does not fit in an int.
func (en Enumeration) Size() (n int, ok bool) {
	n = 1
	for _, ls := range en.levels {
		radix := len(ls)
		if radix != 0 && n > math.MaxInt/radix {
			return 0, false
		}
		n *= radix
	}
	return n, true
}

// LevelsAt returns the level of every card for ordinal k.
func (en Enumeration) LevelsAt(k int) ([]domain.Level, error) {
	size, ok := en.Size()
	if !ok {
		return nil, fmt.Errorf("%d cards: %w", len(en.levels), ErrTooLarge)
	}
	if k < 0 || k >= size {
		return nil, fmt.Errorf("ordinal %d of %d: %w", k, size, ErrOrdinalRange)
	}
	out := make([]domain.Level, len(en.levels))
	for i := len(en.levels) - 1; i >= 0; i-- {
		radix := len(en.levels[i])
		out[i] = en.levels[i][k%radix]
		k /= radix
	}
	return out, nil
}

// OrdinalOf is the inverse of LevelsAt.
func (en Enumeration) OrdinalOf(levels []domain.Level) (int, error) {
	if len(levels) != len(en.levels) {
		return 0, fmt.Errorf("got %d levels for %d cards: %w", len(levels), len(en.levels), ErrOrdinalRange)
	}
	if _, ok := en.Size(); !ok {
		return 0, fmt.Errorf("%d cards: %w", len(en.levels), ErrTooLarge)
	}
	k := 0
	for i, l := range levels {
		pos := -1
		for j, candidate := range en.levels[i] {
			if candidate == l {
				pos = j
				break
			}
		}
		if pos < 0 {
			return 0, fmt.Errorf("card %s has no enabled %s: %w", en.keys[i], l, ErrOrdinalRange)
		}
		k = k*len(en.levels[i]) + pos
	}
	return k, nil
}
