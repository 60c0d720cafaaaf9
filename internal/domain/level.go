package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Level is a selectable position of an active group: the baseline or one of
// its two choices.
type Level int

const (
	LevelBaseline Level = 0
	LevelChoice1  Level = 1
	LevelChoice2  Level = 2
)

// LevelFromChoice maps a choice index (0 or 1) to its level.
func LevelFromChoice(index int) Level {
	return Level(index + 1)
}

// ChoiceIndex returns the index into SimulationGroup.Choices, or -1 for the
// baseline.
func (l Level) ChoiceIndex() int {
	return int(l) - 1
}

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	return l >= LevelBaseline && l <= LevelChoice2
}

func (l Level) String() string {
	switch l {
	case LevelBaseline:
		return "baseline"
	case LevelChoice1:
		return "choice1"
	case LevelChoice2:
		return "choice2"
	default:
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
}

// LevelSet is the set of enabled levels for one (entry, group) pair. It is a
// value type: every operation returns a new set.
type LevelSet struct {
	levels []Level
}

// NewLevelSet builds a set from the given levels, dropping duplicates.
func NewLevelSet(levels ...Level) LevelSet {
	var s LevelSet
	for _, l := range levels {
		s = s.With(l)
	}
	return s
}

// Has reports membership.
func (s LevelSet) Has(l Level) bool {
	for _, x := range s.levels {
		if x == l {
			return true
		}
	}
	return false
}

// With returns a copy of s containing l.
func (s LevelSet) With(l Level) LevelSet {
	if s.Has(l) {
		return s
	}
	out := make([]Level, 0, len(s.levels)+1)
	out = append(out, s.levels...)
	out = append(out, l)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return LevelSet{levels: out}
}

// Without returns a copy of s without l.
func (s LevelSet) Without(l Level) LevelSet {
	out := make([]Level, 0, len(s.levels))
	for _, x := range s.levels {
		if x != l {
			out = append(out, x)
		}
	}
	return LevelSet{levels: out}
}

// Len is the number of enabled levels, which is the pair's contribution to
// the combination count.
func (s LevelSet) Len() int {
	return len(s.levels)
}

// Levels returns the members in ascending order.
func (s LevelSet) Levels() []Level {
	return append([]Level(nil), s.levels...)
}

// Valid checks the enabled-level invariant: the baseline is always a member
// and choice levels only appear next to it.
func (s LevelSet) Valid() bool {
	if !s.Has(LevelBaseline) {
		return false
	}
	for _, l := range s.levels {
		if !l.Valid() {
			return false
		}
	}
	return true
}

// Equal compares two sets.
func (s LevelSet) Equal(o LevelSet) bool {
	if len(s.levels) != len(o.levels) {
		return false
	}
	for i := range s.levels {
		if s.levels[i] != o.levels[i] {
			return false
		}
	}
	return true
}

// Ints returns the members as plain ints, the shape the backend stores.
func (s LevelSet) Ints() []int {
	out := make([]int, len(s.levels))
	for i, l := range s.levels {
		out[i] = int(l)
	}
	return out
}

func (s LevelSet) String() string {
	parts := make([]string, len(s.levels))
	for i, l := range s.levels {
		parts[i] = strconv.Itoa(int(l))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ParseLevelSet parses "0+1+2", "0,2" or "0 1" style lists.
func ParseLevelSet(s string) (LevelSet, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '|'
	})
	var set LevelSet
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return LevelSet{}, &LevelError{Input: f}
		}
		l := Level(n)
		if !l.Valid() {
			return LevelSet{}, &LevelError{Input: f}
		}
		set = set.With(l)
	}
	return set, nil
}

// LevelError reports an unparseable level.
type LevelError struct {
	Input string
}

func (e *LevelError) Error() string {
	return "invalid level " + strconv.Quote(e.Input) + " (expected 0, 1 or 2)"
}
