package domain

import "fmt"

// Entry is a modifiable building element (wall, floor, window, door, thermal
// bridge) grouping the simulation options available for it.
type Entry struct {
	ID       string            `json:"id" yaml:"id"`
	Label    string            `json:"label" yaml:"label"`
	Category string            `json:"category" yaml:"category"`
	Path     string            `json:"path" yaml:"path"`
	Groups   []SimulationGroup `json:"simul" yaml:"simul"`
}

// SimulationGroup is a named bundle of up to two improvement choices, and an
// optional scope, for one entry. At most one group per entry is active.
type SimulationGroup struct {
	ID          string      `json:"id" yaml:"id"`
	Active      bool        `json:"active" yaml:"active"`
	Label       string      `json:"label" yaml:"label"`
	Description *string     `json:"description" yaml:"description"`
	Path        string      `json:"path" yaml:"path"`
	Choices     []Choice    `json:"choices" yaml:"choices"`
	Scope       []ScopeItem `json:"scope" yaml:"scope"`
}

// Choice is one improvement level layered on the baseline.
type Choice struct {
	ID            string `json:"id" yaml:"id"`
	Index         int    `json:"index" yaml:"index"`
	Reference     int    `json:"reference" yaml:"reference"`
	Label         string `json:"label" yaml:"label"`
	Description   string `json:"description" yaml:"description"`
	PresetChecked bool   `json:"checked" yaml:"checked"`
}

// ScopeItem narrows where a group applies (an orientation or a surface).
type ScopeItem struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Selected    bool   `json:"selected" yaml:"selected"`
}

// MaxChoices is the number of improvement levels a group can offer.
const MaxChoices = 2

// Key identifies selection state. Selection is always keyed by the
// (entry, group) pair because the active group of an entry can change.
type Key struct {
	EntryID string
	GroupID string
}

// String renders the key the way the backend expects it in checkbox state maps.
func (k Key) String() string {
	return k.EntryID + "_" + k.GroupID
}

// GoString is used by %#v and keeps test failures readable.
func (k Key) GoString() string {
	return fmt.Sprintf("Key{%q, %q}", k.EntryID, k.GroupID)
}

// FindEntry returns the entry with the given id.
func FindEntry(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// FindGroup returns the group with the given id.
func (e Entry) FindGroup(id string) (SimulationGroup, bool) {
	for _, g := range e.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return SimulationGroup{}, false
}

// ActiveGroup returns the entry's active group, if any.
func (e Entry) ActiveGroup() (SimulationGroup, bool) {
	for _, g := range e.Groups {
		if g.Active {
			return g, true
		}
	}
	return SimulationGroup{}, false
}

// Key returns the selection key for group g of entry e.
func (e Entry) Key(g SimulationGroup) Key {
	return Key{EntryID: e.ID, GroupID: g.ID}
}

// ChoiceForLevel returns the choice behind a level. Level 0 (baseline) has no
// choice.
func (g SimulationGroup) ChoiceForLevel(l Level) (Choice, bool) {
	idx := l.ChoiceIndex()
	if idx < 0 || idx >= len(g.Choices) {
		return Choice{}, false
	}
	return g.Choices[idx], true
}

// PresetLevels is {0} plus the levels whose choice the backend pre-checked.
func (g SimulationGroup) PresetLevels() LevelSet {
	set := NewLevelSet(LevelBaseline)
	for i, c := range g.Choices {
		if i >= MaxChoices {
			break
		}
		if c.PresetChecked {
			set = set.With(LevelFromChoice(i))
		}
	}
	return set
}

// DescriptionText returns the description or "" when unset.
func (g SimulationGroup) DescriptionText() string {
	if g.Description == nil {
		return ""
	}
	return *g.Description
}

// Clone returns a deep copy of the entry so it can be modified without
// touching snapshots held elsewhere.
func (e Entry) Clone() Entry {
	out := e
	out.Groups = make([]SimulationGroup, len(e.Groups))
	for i, g := range e.Groups {
		out.Groups[i] = g.Clone()
	}
	return out
}

// Clone returns a deep copy of the group.
func (g SimulationGroup) Clone() SimulationGroup {
	out := g
	if g.Description != nil {
		d := *g.Description
		out.Description = &d
	}
	if g.Choices != nil {
		out.Choices = append([]Choice(nil), g.Choices...)
	}
	if g.Scope != nil {
		out.Scope = append([]ScopeItem(nil), g.Scope...)
	}
	return out
}

// CloneEntries deep-copies an entry list.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
