package simul

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// SetGroupLabel renames a group. Used once the backend accepted the change.
func (s State) SetGroupLabel(key domain.Key, label string) (State, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return s, ErrEmptyLabel
	}
	next, err := s.updateGroup(key, func(g *domain.SimulationGroup) error {
		g.Label = label
		return nil
	})
	if err != nil {
		return s, err
	}
	delete(next.drafts, draftKey{key, draftLabel})
	return next, nil
}

// SetGroupDescription replaces a group's description. A blank description is
// stored as nil.
func (s State) SetGroupDescription(key domain.Key, description string) (State, error) {
	description = strings.TrimSpace(description)
	next, err := s.updateGroup(key, func(g *domain.SimulationGroup) error {
		if description == "" {
			g.Description = nil
			return nil
		}
		g.Description = &description
		return nil
	})
	if err != nil {
		return s, err
	}
	delete(next.drafts, draftKey{key, draftDescription})
	return next, nil
}

// SetGroupPath overrides the path a group's modifier applies to.
func (s State) SetGroupPath(key domain.Key, path string) (State, error) {
	return s.updateGroup(key, func(g *domain.SimulationGroup) error {
		g.Path = strings.TrimSpace(path)
		return nil
	})
}

// SetEntryPath changes an entry's element path.
func (s State) SetEntryPath(entryID, path string) (State, error) {
	idx, ok := s.entryIndex(entryID)
	if !ok {
		return s, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
	}
	updated := s.entries[idx].Clone()
	updated.Path = strings.TrimSpace(path)
	return s.withEntry(idx, updated), nil
}

// SetChoiceLabel renames the choice behind a level.
func (s State) SetChoiceLabel(key domain.Key, level domain.Level, label string) (State, error) {
	return s.updateGroup(key, func(g *domain.SimulationGroup) error {
		idx := level.ChoiceIndex()
		if idx < 0 || idx >= len(g.Choices) {
			return fmt.Errorf("choice for %s of %s: %w", level, key, ErrNotFound)
		}
		g.Choices[idx].Label = label
		return nil
	})
}

// ToggleScopeItem flips one scope item's selected flag.
func (s State) ToggleScopeItem(key domain.Key, scopeID string) (State, error) {
	return s.updateGroup(key, func(g *domain.SimulationGroup) error {
		for i := range g.Scope {
			if g.Scope[i].ID == scopeID {
				g.Scope[i].Selected = !g.Scope[i].Selected
				return nil
			}
		}
		return fmt.Errorf("scope item %s of %s: %w", scopeID, key, ErrNotFound)
	})
}

// SetAllScope selects or deselects every scope item of a group.
func (s State) SetAllScope(key domain.Key, selected bool) (State, error) {
	return s.updateGroup(key, func(g *domain.SimulationGroup) error {
		for i := range g.Scope {
			g.Scope[i].Selected = selected
		}
		return nil
	})
}

// BeginLabelDraft starts editing a group label, seeded with the current one.
func (s State) BeginLabelDraft(key domain.Key) (State, error) {
	g, ok := s.Group(key)
	if !ok {
		return s, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}
	next := s.clone()
	next.drafts[draftKey{key, draftLabel}] = g.Label
	return next, nil
}

// BeginDescriptionDraft starts editing a group description.
func (s State) BeginDescriptionDraft(key domain.Key) (State, error) {
	g, ok := s.Group(key)
	if !ok {
		return s, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}
	next := s.clone()
	next.drafts[draftKey{key, draftDescription}] = g.DescriptionText()
	return next, nil
}

// UpdateLabelDraft replaces the in-progress label text.
func (s State) UpdateLabelDraft(key domain.Key, text string) State {
	next := s.clone()
	next.drafts[draftKey{key, draftLabel}] = text
	return next
}

// UpdateDescriptionDraft replaces the in-progress description text.
func (s State) UpdateDescriptionDraft(key domain.Key, text string) State {
	next := s.clone()
	next.drafts[draftKey{key, draftDescription}] = text
	return next
}

// LabelDraft returns the in-progress label of a group.
func (s State) LabelDraft(key domain.Key) (string, bool) {
	v, ok := s.drafts[draftKey{key, draftLabel}]
	return v, ok
}

// DescriptionDraft returns the in-progress description of a group.
func (s State) DescriptionDraft(key domain.Key) (string, bool) {
	v, ok := s.drafts[draftKey{key, draftDescription}]
	return v, ok
}

// DiscardDrafts drops every draft belonging to an entry, as when leaving its
// edit mode. An empty entryID drops all drafts.
func (s State) DiscardDrafts(entryID string) State {
	next := s.clone()
	for k := range next.drafts {
		if entryID == "" || k.key.EntryID == entryID {
			delete(next.drafts, k)
		}
	}
	return next
}
