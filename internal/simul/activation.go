package simul

import (
	"fmt"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// ToggleEntry flips the active flag of the entry's first group.
func (s State) ToggleEntry(entryID string) (State, error) {
	idx, ok := s.entryIndex(entryID)
	if !ok {
		return s, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
	}
	if len(s.entries[idx].Groups) == 0 {
		return s, fmt.Errorf("entry %s has no group: %w", entryID, ErrNotFound)
	}
	first := s.entries[idx].Groups[0]
	return s.ToggleGroup(domain.Key{EntryID: entryID, GroupID: first.ID})
}

// ToggleGroup flips a group's active flag. Turning a group on turns every
// sibling off in the same new state, so an entry never has two active groups.
// Turning it off leaves siblings alone.
func (s State) ToggleGroup(key domain.Key) (State, error) {
	idx, ok := s.entryIndex(key.EntryID)
	if !ok {
		return s, fmt.Errorf("entry %s: %w", key.EntryID, ErrNotFound)
	}
	current, ok := s.entries[idx].FindGroup(key.GroupID)
	if !ok {
		return s, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}

	activate := !current.Active
	updated := s.entries[idx].Clone()
	for gi := range updated.Groups {
		g := &updated.Groups[gi]
		switch {
		case g.ID == key.GroupID:
			g.Active = activate
		case activate:
			g.Active = false
		}
	}

	next := s.withEntry(idx, updated)
	if activate {
		if _, ok := next.levels[key]; !ok {
			next.levels[key] = current.PresetLevels()
		}
	}
	return next, nil
}

// SetEnabledLevels replaces the enabled set of a pair verbatim. Policy
// ("baseline always on", "choices need the baseline") belongs to the
// interactive layer; see ToggleLevel.
func (s State) SetEnabledLevels(key domain.Key, set domain.LevelSet) (State, error) {
	if _, ok := s.Group(key); !ok {
		return s, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}
	next := s.clone()
	next.levels[key] = set
	return next, nil
}

// ToggleLevel is the policy-enforcing path used by the front ends. Removing
// the baseline is a no-op, choice levels can only be toggled while the
// baseline is enabled, and only for choices the group actually has. The
// returned bool reports whether anything changed.
func (s State) ToggleLevel(key domain.Key, level domain.Level) (State, bool, error) {
	g, ok := s.Group(key)
	if !ok {
		return s, false, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}
	if !LevelInteractive(g, s.Levels(key), level) {
		return s, false, nil
	}
	current := s.Levels(key)
	var set domain.LevelSet
	if current.Has(level) {
		set = current.Without(level)
	} else {
		set = current.With(level)
	}
	next, err := s.SetEnabledLevels(key, set)
	return next, err == nil, err
}

// LevelInteractive reports whether a level's toggle should be offered. The
// baseline never is; choice levels are when the baseline is enabled and the
// choice exists.
func LevelInteractive(g domain.SimulationGroup, set domain.LevelSet, level domain.Level) bool {
	if level == domain.LevelBaseline || !level.Valid() {
		return false
	}
	if !set.Has(domain.LevelBaseline) {
		return false
	}
	_, ok := g.ChoiceForLevel(level)
	return ok
}

// Reset restores the first group of every entry to active (and its siblings
// to inactive) and every active group's enabled levels to the presets of the
// original snapshot. Pending label and description drafts are discarded. This
// is the only bulk undo.
func (s State) Reset() State {
	next := s.clone()
	next.drafts = make(map[draftKey]string)
	next.levels = make(map[domain.Key]domain.LevelSet)

	for i, e := range s.entries {
		updated := e.Clone()
		for gi := range updated.Groups {
			updated.Groups[gi].Active = gi == 0
		}
		next.entries[i] = updated
	}

	for _, e := range next.entries {
		original, _ := domain.FindEntry(s.initial, e.ID)
		for _, g := range e.Groups {
			if !g.Active {
				continue
			}
			preset := g.PresetLevels()
			if og, ok := original.FindGroup(g.ID); ok {
				preset = og.PresetLevels()
			}
			next.levels[e.Key(g)] = preset
		}
	}
	return next
}

// ActiveKeys returns the (entry, group) pairs of every active group, in card
// order.
func (s State) ActiveKeys() []domain.Key {
	var keys []domain.Key
	for _, e := range s.entries {
		if g, ok := e.ActiveGroup(); ok {
			keys = append(keys, e.Key(g))
		}
	}
	return keys
}
