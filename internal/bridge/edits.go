package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/dpesim/internal/api"
	"github.com/rgehrsitz/dpesim/internal/calculation"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/edit"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

// editable refuses an action while a recorded scenario is selected.
func (b *Bridge) editable(action string) error {
	if b.ReadOnly() {
		b.notify(NoticeError, action, ErrReadOnly)
		return ErrReadOnly
	}
	return nil
}

// ToggleEntry flips the first group of an entry.
func (b *Bridge) ToggleEntry(entryID string) error {
	if err := b.editable("toggle entry"); err != nil {
		return err
	}
	return b.commit(b.state.ToggleEntry(entryID))
}

// ToggleGroup flips a group, deactivating its siblings when it turns on.
func (b *Bridge) ToggleGroup(key domain.Key) error {
	if err := b.editable("toggle group"); err != nil {
		return err
	}
	return b.commit(b.state.ToggleGroup(key))
}

// ToggleLevel flips a choice level of a card. It reports whether anything
// changed; the baseline and missing choices are silently left alone.
func (b *Bridge) ToggleLevel(key domain.Key, level domain.Level) (bool, error) {
	if err := b.editable("toggle level"); err != nil {
		return false, err
	}
	next, changed, err := b.state.ToggleLevel(key, level)
	if err := b.commit(next, err); err != nil {
		return false, err
	}
	return changed, nil
}

// SetLevels replaces a card's enabled levels. The baseline is always kept.
func (b *Bridge) SetLevels(key domain.Key, set domain.LevelSet) error {
	if err := b.editable("set levels"); err != nil {
		return err
	}
	return b.commit(b.state.SetEnabledLevels(key, set.With(domain.LevelBaseline)))
}

// ToggleScope flips one scope item.
func (b *Bridge) ToggleScope(key domain.Key, scopeID string) error {
	if err := b.editable("edit scope"); err != nil {
		return err
	}
	return b.commit(b.state.ToggleScopeItem(key, scopeID))
}

// SetAllScope selects or clears every scope item of a group.
func (b *Bridge) SetAllScope(key domain.Key, selected bool) error {
	if err := b.editable("edit scope"); err != nil {
		return err
	}
	return b.commit(b.state.SetAllScope(key, selected))
}

// AppendEntry adds a custom entry locally; it is sent with the next Submit.
func (b *Bridge) AppendEntry(label string) (domain.Entry, error) {
	if err := b.editable("add entry"); err != nil {
		return domain.Entry{}, err
	}
	next, entry, err := b.state.Append(label)
	if err := b.commit(next, err); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

// ApplyEdits replays a sequence of named edits. Nothing changes when one of
// them fails.
func (b *Bridge) ApplyEdits(edits []edit.Edit) error {
	if err := b.editable("apply edits"); err != nil {
		return err
	}
	return b.commit(edit.ApplyEdits(b.state, edits))
}

// RemoveGroup deletes a group locally. Confirmation is the caller's job.
func (b *Bridge) RemoveGroup(key domain.Key) error {
	if err := b.editable("remove group"); err != nil {
		return err
	}
	return b.commit(b.state.Remove(key))
}

// Reset restores activation and levels to the loaded presets.
func (b *Bridge) Reset() error {
	if err := b.editable("reset"); err != nil {
		return err
	}
	b.state = b.state.Reset()
	return nil
}

// BeginLabelEdit starts editing a group label.
func (b *Bridge) BeginLabelEdit(key domain.Key) error {
	if err := b.editable("rename group"); err != nil {
		return err
	}
	return b.commit(b.state.BeginLabelDraft(key))
}

// BeginDescriptionEdit starts editing a group description.
func (b *Bridge) BeginDescriptionEdit(key domain.Key) error {
	if err := b.editable("update description"); err != nil {
		return err
	}
	return b.commit(b.state.BeginDescriptionDraft(key))
}

// UpdateLabelEdit replaces the draft label.
func (b *Bridge) UpdateLabelEdit(key domain.Key, text string) {
	b.state = b.state.UpdateLabelDraft(key, text)
}

// UpdateDescriptionEdit replaces the draft description.
func (b *Bridge) UpdateDescriptionEdit(key domain.Key, text string) {
	b.state = b.state.UpdateDescriptionDraft(key, text)
}

// CancelEdits discards the drafts of an entry ("" for all).
func (b *Bridge) CancelEdits(entryID string) {
	b.state = b.state.DiscardDrafts(entryID)
}

// CommitLabelEdit sends the draft label to the backend.
func (b *Bridge) CommitLabelEdit(key domain.Key) []Task {
	draft, ok := b.state.LabelDraft(key)
	if !ok {
		return nil
	}
	return b.RenameGroup(key, draft)
}

// CommitDescriptionEdit sends the draft description to the backend.
func (b *Bridge) CommitDescriptionEdit(key domain.Key) []Task {
	draft, ok := b.state.DescriptionDraft(key)
	if !ok {
		return nil
	}
	return b.DescribeGroup(key, draft)
}

// RenameGroup asks the backend to rename a group; the local label changes
// once it accepts.
func (b *Bridge) RenameGroup(key domain.Key, label string) []Task {
	if b.editable("rename group") != nil {
		return nil
	}
	label = strings.TrimSpace(label)
	if label == "" {
		b.notify(NoticeError, "rename group", simul.ErrEmptyLabel)
		return nil
	}
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		return GroupRenamed{Key: key, Label: label, Err: backend.RenameGroup(ctx, key, label)}
	}}
}

// DescribeGroup asks the backend to change a group description.
func (b *Bridge) DescribeGroup(key domain.Key, description string) []Task {
	if b.editable("update description") != nil {
		return nil
	}
	description = strings.TrimSpace(description)
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		return GroupDescribed{Key: key, Description: description, Err: backend.DescribeGroup(ctx, key, description)}
	}}
}

// SaveEntryPath asks the backend to change an element path.
func (b *Bridge) SaveEntryPath(entryID, path string) []Task {
	if b.editable("save element path") != nil {
		return nil
	}
	if _, ok := b.state.Entry(entryID); !ok {
		b.notify(NoticeError, "save element path", fmt.Errorf("entry %s: %w", entryID, simul.ErrNotFound))
		return nil
	}
	path = strings.TrimSpace(path)
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		return EntryPathSaved{EntryID: entryID, Path: path, Err: backend.SaveEntryPath(ctx, entryID, path)}
	}}
}

// AddGroup asks the backend for a new group under an entry, then reloads.
// A second request for the same entry is dropped while the first is pending.
func (b *Bridge) AddGroup(entryID string) []Task {
	if b.editable("add scenario") != nil {
		return nil
	}
	flag := groupFlag(entryID)
	if b.pending[flag] {
		b.logger.Debugf("add group for %s already pending", entryID)
		return nil
	}
	b.pending[flag] = true
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		return GroupAdded{EntryID: entryID, Err: backend.AddGroup(ctx, entryID)}
	}}
}

// AttachScope asks the backend to attach the default scope to a group, then
// reloads. Duplicate requests are dropped while one is pending.
func (b *Bridge) AttachScope(key domain.Key) []Task {
	if b.editable("attach scope") != nil {
		return nil
	}
	ref, ok := b.loc.Ref()
	if !ok {
		b.notify(NoticeError, "attach scope", ErrNoProject)
		return nil
	}
	flag := scopeFlag(key)
	if b.pending[flag] {
		b.logger.Debugf("attach scope for %s already pending", key)
		return nil
	}
	b.pending[flag] = true
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		return ScopeAttached{Key: key, Err: backend.AttachScope(ctx, ref, key)}
	}}
}

// LoadChoiceSetting fetches the modifier rule behind a card's level.
func (b *Bridge) LoadChoiceSetting(key domain.Key, level domain.Level) []Task {
	choice, err := b.choice(key, level)
	if err != nil {
		b.notify(NoticeError, "load configuration data", err)
		return nil
	}
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		s, err := backend.ChoiceSetting(ctx, key.EntryID, choice.ID)
		return ChoiceSettingLoaded{Key: key, Level: level, Setting: s, Err: err}
	}}
}

// SaveChoiceSetting stores the modifier rule behind a card's level.
func (b *Bridge) SaveChoiceSetting(key domain.Key, level domain.Level, upd api.ChoiceSettingUpdate) []Task {
	if b.editable("save configuration") != nil {
		return nil
	}
	ref, ok := b.loc.Ref()
	if !ok {
		b.notify(NoticeError, "save configuration", ErrNoProject)
		return nil
	}
	choice, err := b.choice(key, level)
	if err != nil {
		b.notify(NoticeError, "save configuration", err)
		return nil
	}
	if upd.Label == "" {
		upd.Label = choice.Label
	}
	upd.Level = level
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		err := backend.SaveChoiceSetting(ctx, ref, key.EntryID, choice.ID, upd)
		return ChoiceSettingSaved{Key: key, Level: level, Label: upd.Label, Err: err}
	}}
}

func (b *Bridge) choice(key domain.Key, level domain.Level) (domain.Choice, error) {
	g, ok := b.state.Group(key)
	if !ok {
		return domain.Choice{}, fmt.Errorf("group %s: %w", key, simul.ErrNotFound)
	}
	c, ok := g.ChoiceForLevel(level)
	if !ok {
		return domain.Choice{}, fmt.Errorf("no choice for %s of %s: %w", level, key, simul.ErrNotFound)
	}
	return c, nil
}

// Submit sends the configuration for scenario generation. It is refused above
// the combination limit.
func (b *Bridge) Submit() []Task {
	ref, ok := b.loc.Ref()
	if !ok {
		b.notify(NoticeError, "apply simulation", ErrNoProject)
		return nil
	}
	total := b.state.Total()
	if calculation.ExceedsLimit(total, b.limit) {
		b.notify(NoticeError, "apply simulation", fmt.Errorf("%s combinations, limit is %d: %w", total, b.limit, ErrTooMany))
		return nil
	}
	sub := b.state.Submission(ref, b.now())
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		return Submitted{Total: string(sub.TotalCombinations), Err: backend.Submit(ctx, sub)}
	}}
}
