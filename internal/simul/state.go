// Package simul holds the editable scenario configuration: the entries loaded
// from the backend, the enabled levels of every active group, and the rules
// that keep them consistent.
//
// State is an immutable value. Every mutation returns a new State and never
// writes into entries or maps reachable from an earlier value, so callers may
// keep old values around for diffing.
package simul

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

var (
	// ErrNotFound is returned when an entry, group, choice or scope item does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrLastGroup is returned when removing a group would leave its entry
	// without any group.
	ErrLastGroup = errors.New("cannot remove the last group of an entry")
	// ErrEmptyLabel is returned for blank labels.
	ErrEmptyLabel = errors.New("label cannot be empty")
)

// State is the whole configuration being edited.
type State struct {
	entries []domain.Entry
	levels  map[domain.Key]domain.LevelSet
	// initial is the snapshot as loaded; Reset restores presets from it.
	initial []domain.Entry
	drafts  map[draftKey]string
}

type draftField int

const (
	draftLabel draftField = iota
	draftDescription
)

type draftKey struct {
	key   domain.Key
	field draftField
}

// Load builds a state from a snapshot, replacing everything. Scope items are
// normalised, only the first active group of an entry stays active, and every
// active group starts with its preset levels.
func Load(entries []domain.Entry) State {
	normalized := make([]domain.Entry, len(entries))
	for i, e := range entries {
		normalized[i] = normalizeEntry(e)
	}
	s := State{
		entries: normalized,
		levels:  make(map[domain.Key]domain.LevelSet),
		initial: domain.CloneEntries(normalized),
	}
	for _, e := range normalized {
		for _, g := range e.Groups {
			if g.Active {
				s.levels[e.Key(g)] = g.PresetLevels()
			}
		}
	}
	return s
}

func normalizeEntry(e domain.Entry) domain.Entry {
	out := e.Clone()
	if out.Category == "enveloppe" {
		out.Category = "Enveloppe"
	}
	if out.Path == "" {
		out.Path = "/config/" + out.ID
	}
	seenActive := false
	for gi := range out.Groups {
		g := &out.Groups[gi]
		if g.Active {
			g.Active = !seenActive
			seenActive = true
		}
		if len(g.Choices) > domain.MaxChoices {
			g.Choices = g.Choices[:domain.MaxChoices]
		}
		for ci := range g.Choices {
			g.Choices[ci].Index = ci
		}
		scope := make([]domain.ScopeItem, len(g.Scope))
		for si, item := range g.Scope {
			scope[si] = NormalizeScopeItem(item)
		}
		g.Scope = scope
	}
	return out
}

// NormalizeScopeItem fills a missing id from the label and a missing label
// from the id.
func NormalizeScopeItem(item domain.ScopeItem) domain.ScopeItem {
	out := item
	if out.ID == "" {
		out.ID = item.Label
	}
	if out.Label == "" {
		out.Label = item.ID
	}
	return out
}

// Entries returns the entries in load order. The returned slice must not be
// modified.
func (s State) Entries() []domain.Entry {
	return s.entries
}

// Levels returns the enabled levels of a pair. A pair without a recorded set
// only has the baseline.
func (s State) Levels(key domain.Key) domain.LevelSet {
	if set, ok := s.levels[key]; ok {
		return set
	}
	return domain.NewLevelSet(domain.LevelBaseline)
}

// LevelMap returns a copy of the enabled-level map.
func (s State) LevelMap() map[domain.Key]domain.LevelSet {
	out := make(map[domain.Key]domain.LevelSet, len(s.levels))
	for k, v := range s.levels {
		out[k] = v
	}
	return out
}

// Entry looks up an entry by id.
func (s State) Entry(id string) (domain.Entry, bool) {
	return domain.FindEntry(s.entries, id)
}

// Group looks up a group by key.
func (s State) Group(key domain.Key) (domain.SimulationGroup, bool) {
	e, ok := s.Entry(key.EntryID)
	if !ok {
		return domain.SimulationGroup{}, false
	}
	return e.FindGroup(key.GroupID)
}

// Append adds a custom entry with one active default group and no choices.
func (s State) Append(label string) (State, domain.Entry, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return s, domain.Entry{}, ErrEmptyLabel
	}
	slug := Slug(label)
	desc := "Configuration personnalisée pour " + label
	entry := domain.Entry{
		ID:       "entry_" + uuid.NewString(),
		Label:    label,
		Category: "Custom",
		Path:     "/config/" + slug,
		Groups: []domain.SimulationGroup{{
			ID:          "simul_" + slug + "_" + uuid.NewString(),
			Active:      true,
			Label:       "Simulation " + label,
			Description: &desc,
			Path:        "/config/" + slug + "/custom",
			Choices:     []domain.Choice{},
		}},
	}

	next := s.clone()
	next.entries = append(next.entries, entry)
	next.levels[entry.Key(entry.Groups[0])] = domain.NewLevelSet(domain.LevelBaseline)
	return next, entry, nil
}

// Remove deletes one group. Confirmation is the caller's job.
func (s State) Remove(key domain.Key) (State, error) {
	idx, ok := s.entryIndex(key.EntryID)
	if !ok {
		return s, fmt.Errorf("entry %s: %w", key.EntryID, ErrNotFound)
	}
	entry := s.entries[idx]
	if _, ok := entry.FindGroup(key.GroupID); !ok {
		return s, fmt.Errorf("group %s: %w", key, ErrNotFound)
	}
	if len(entry.Groups) == 1 {
		return s, fmt.Errorf("group %s: %w", key, ErrLastGroup)
	}

	updated := entry.Clone()
	groups := make([]domain.SimulationGroup, 0, len(updated.Groups)-1)
	for _, g := range updated.Groups {
		if g.ID != key.GroupID {
			groups = append(groups, g)
		}
	}
	updated.Groups = groups

	next := s.withEntry(idx, updated)
	delete(next.levels, key)
	return next, nil
}

// Slug lower-cases a label, folds accents and joins words with underscores:
// "Plancher Bas Isolé" becomes "plancher_bas_isole".
func Slug(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, label)
	if err != nil {
		folded = label
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), "_")
}

func (s State) entryIndex(id string) (int, bool) {
	for i, e := range s.entries {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

// clone copies the containers of s. Entries themselves are shared until one
// is replaced through withEntry.
func (s State) clone() State {
	next := State{
		entries: append([]domain.Entry(nil), s.entries...),
		levels:  make(map[domain.Key]domain.LevelSet, len(s.levels)),
		initial: s.initial,
		drafts:  make(map[draftKey]string, len(s.drafts)),
	}
	for k, v := range s.levels {
		next.levels[k] = v
	}
	for k, v := range s.drafts {
		next.drafts[k] = v
	}
	return next
}

func (s State) withEntry(idx int, e domain.Entry) State {
	next := s.clone()
	next.entries[idx] = e
	return next
}

// updateGroup applies fn to a deep copy of the group at key and returns the
// resulting state.
func (s State) updateGroup(key domain.Key, fn func(*domain.SimulationGroup) error) (State, error) {
	idx, ok := s.entryIndex(key.EntryID)
	if !ok {
		return s, fmt.Errorf("entry %s: %w", key.EntryID, ErrNotFound)
	}
	updated := s.entries[idx].Clone()
	for gi := range updated.Groups {
		if updated.Groups[gi].ID == key.GroupID {
			if err := fn(&updated.Groups[gi]); err != nil {
				return s, err
			}
			return s.withEntry(idx, updated), nil
		}
	}
	return s, fmt.Errorf("group %s: %w", key, ErrNotFound)
}
