// Package edit provides named, composable edits of a scenario configuration.
// They let the command line replay what a user would click in the editor
// ("toggle_level:entry=wall,group=wall_ite,level=2") before counting or
// submitting.
package edit

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

// Edit is one change to a configuration.
type Edit interface {
	// Apply returns the edited state. The input state is never modified.
	Apply(s simul.State) (simul.State, error)

	// Name returns the registry name of the edit.
	Name() string

	// Description returns a human-readable summary.
	Description() string
}

// ApplyEdits applies edits in order, each receiving the output of the
// previous one.
func ApplyEdits(base simul.State, edits []Edit) (simul.State, error) {
	current := base
	for i, e := range edits {
		if e == nil {
			return base, fmt.Errorf("edit at index %d is nil", i)
		}
		next, err := e.Apply(current)
		if err != nil {
			return base, &Error{EditName: e.Name(), Index: i, Err: err}
		}
		current = next
	}
	return current, nil
}

// Error reports which edit of a sequence failed.
type Error struct {
	EditName string
	Index    int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("edit %d (%s): %v", e.Index, e.EditName, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrUnchanged is returned by ToggleLevel when the level cannot be toggled
// (the baseline, a missing choice, or a group without its baseline).
var ErrUnchanged = errors.New("level cannot be toggled")

// ToggleEntry flips the first group of an entry.
type ToggleEntry struct {
	EntryID string
}

func (e ToggleEntry) Apply(s simul.State) (simul.State, error) { return s.ToggleEntry(e.EntryID) }
func (e ToggleEntry) Name() string                              { return "toggle_entry" }
func (e ToggleEntry) Description() string {
	return fmt.Sprintf("toggle entry %s", e.EntryID)
}

// ToggleGroup flips a group; turning it on deactivates its siblings.
type ToggleGroup struct {
	Key domain.Key
}

func (e ToggleGroup) Apply(s simul.State) (simul.State, error) { return s.ToggleGroup(e.Key) }
func (e ToggleGroup) Name() string                              { return "toggle_group" }
func (e ToggleGroup) Description() string {
	return fmt.Sprintf("toggle group %s", e.Key)
}

// ToggleLevel flips one choice level of a card.
type ToggleLevel struct {
	Key   domain.Key
	Level domain.Level
}

func (e ToggleLevel) Apply(s simul.State) (simul.State, error) {
	next, changed, err := s.ToggleLevel(e.Key, e.Level)
	if err != nil {
		return s, err
	}
	if !changed {
		return s, fmt.Errorf("%s of %s: %w", e.Level, e.Key, ErrUnchanged)
	}
	return next, nil
}
func (e ToggleLevel) Name() string { return "toggle_level" }
func (e ToggleLevel) Description() string {
	return fmt.Sprintf("toggle %s of %s", e.Level, e.Key)
}

// SetLevels replaces the enabled levels of a card.
type SetLevels struct {
	Key    domain.Key
	Levels domain.LevelSet
}

func (e SetLevels) Apply(s simul.State) (simul.State, error) {
	if !e.Levels.Valid() {
		return s, fmt.Errorf("levels %s of %s: choices need the baseline", e.Levels, e.Key)
	}
	return s.SetEnabledLevels(e.Key, e.Levels)
}
func (e SetLevels) Name() string { return "set_levels" }
func (e SetLevels) Description() string {
	return fmt.Sprintf("set %s to %s", e.Key, e.Levels)
}

// ToggleScope flips one scope item of a group.
type ToggleScope struct {
	Key    domain.Key
	ItemID string
}

func (e ToggleScope) Apply(s simul.State) (simul.State, error) {
	return s.ToggleScopeItem(e.Key, e.ItemID)
}
func (e ToggleScope) Name() string { return "toggle_scope" }
func (e ToggleScope) Description() string {
	return fmt.Sprintf("toggle scope %s of %s", e.ItemID, e.Key)
}

// SetAllScope selects or clears every scope item of a group.
type SetAllScope struct {
	Key      domain.Key
	Selected bool
}

func (e SetAllScope) Apply(s simul.State) (simul.State, error) {
	return s.SetAllScope(e.Key, e.Selected)
}
func (e SetAllScope) Name() string { return "scope_all" }
func (e SetAllScope) Description() string {
	if e.Selected {
		return fmt.Sprintf("select all scope of %s", e.Key)
	}
	return fmt.Sprintf("clear scope of %s", e.Key)
}

// GroupPath overrides the path a group's modifier applies to.
type GroupPath struct {
	Key  domain.Key
	Path string
}

func (e GroupPath) Apply(s simul.State) (simul.State, error) {
	return s.SetGroupPath(e.Key, e.Path)
}
func (e GroupPath) Name() string { return "group_path" }
func (e GroupPath) Description() string {
	return fmt.Sprintf("set path of %s to %s", e.Key, e.Path)
}

// AddEntry appends a custom entry.
type AddEntry struct {
	Label string
}

func (e AddEntry) Apply(s simul.State) (simul.State, error) {
	next, _, err := s.Append(e.Label)
	return next, err
}
func (e AddEntry) Name() string        { return "add_entry" }
func (e AddEntry) Description() string { return fmt.Sprintf("add entry %q", e.Label) }

// RemoveGroup deletes a group.
type RemoveGroup struct {
	Key domain.Key
}

func (e RemoveGroup) Apply(s simul.State) (simul.State, error) { return s.Remove(e.Key) }
func (e RemoveGroup) Name() string                              { return "remove_group" }
func (e RemoveGroup) Description() string {
	return fmt.Sprintf("remove group %s", e.Key)
}

// Reset restores the loaded presets.
type Reset struct{}

func (Reset) Apply(s simul.State) (simul.State, error) { return s.Reset(), nil }
func (Reset) Name() string                              { return "reset" }
func (Reset) Description() string                       { return "reset to presets" }
