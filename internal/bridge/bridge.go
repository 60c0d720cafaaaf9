// Package bridge keeps the scenario editor, the backend and the results view
// in step. A Bridge is driven by a single event loop: front ends call its
// methods and Apply on the loop, and run the Tasks those return elsewhere.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"github.com/rgehrsitz/dpesim/internal/api"
	"github.com/rgehrsitz/dpesim/internal/calculation"
	"github.com/rgehrsitz/dpesim/internal/correlate"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/logging"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

var (
	// ErrReadOnly is returned for edits while a recorded scenario is selected.
	ErrReadOnly = errors.New("a recorded scenario is selected; clear the selection to edit")
	// ErrBusy is returned when the same action is already pending.
	ErrBusy = errors.New("already in progress")
	// ErrTooMany is returned when a submission exceeds the combination limit.
	ErrTooMany = errors.New("too many combinations")
	// ErrNoProject is returned when no project reference is known.
	ErrNoProject = errors.New("no project selected")
)

// Backend is the subset of the API client the bridge drives.
type Backend interface {
	Snapshot(ctx context.Context, ref string) ([]domain.Entry, error)
	Submit(ctx context.Context, sub simul.Submission) error
	Graph(ctx context.Context, ref string) ([]domain.GraphPoint, error)
	ScenarioDetail(ctx context.Context, ref string, ordinal, maxOrdinal int) (domain.ScenarioDetail, error)
	ChoiceSetting(ctx context.Context, entryID, choiceID string) (domain.ChoiceSetting, error)
	SaveChoiceSetting(ctx context.Context, ref, entryID, choiceID string, upd api.ChoiceSettingUpdate) error
	RenameGroup(ctx context.Context, key domain.Key, label string) error
	DescribeGroup(ctx context.Context, key domain.Key, description string) error
	SaveEntryPath(ctx context.Context, entryID, path string) error
	AddGroup(ctx context.Context, entryID string) error
	AttachScope(ctx context.Context, ref string, key domain.Key) error
}

// Options configures a Bridge.
type Options struct {
	// Tokens is the credential provider. Without a valid token no scenario
	// detail is fetched.
	Tokens oauth2.TokenSource
	// Dispatcher receives notices and delivers SelectionChanged events.
	Dispatcher *Dispatcher
	Logger     logging.Logger
	// MaxCombinations gates Submit. 0 uses calculation.DefaultCombinationLimit.
	MaxCombinations int64
	Now             func() time.Time
}

// Bridge owns the editor state. It is not safe for concurrent use; all calls
// happen on one event loop.
type Bridge struct {
	backend    Backend
	tokens     oauth2.TokenSource
	dispatcher *Dispatcher
	logger     logging.Logger
	limit      int64
	now        func() time.Time

	loc     Location
	state   simul.State
	loaded  bool
	points  []domain.GraphPoint
	detail  *domain.ScenarioDetail
	seq     uint64
	pending map[string]bool
	setting *ChoiceSettingLoaded
}

// New returns a bridge positioned at loc. Call Open to start loading.
func New(backend Backend, loc Location, opts Options) *Bridge {
	b := &Bridge{
		backend:    backend,
		tokens:     opts.Tokens,
		dispatcher: opts.Dispatcher,
		logger:     logging.OrNop(opts.Logger),
		limit:      opts.MaxCombinations,
		now:        opts.Now,
		loc:        loc,
		state:      simul.Load(nil),
		pending:    make(map[string]bool),
	}
	if b.limit <= 0 {
		b.limit = calculation.DefaultCombinationLimit
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Open loads the snapshot and the graph of the current project. The selected
// ordinal, if any, is looked up once the graph tells how many scenarios exist.
func (b *Bridge) Open() []Task {
	ref, ok := b.loc.Ref()
	if !ok {
		b.notify(NoticeError, "open project", ErrNoProject)
		return nil
	}
	return []Task{b.loadSnapshot(ref, ""), b.loadGraph(ref)}
}

// Reload re-fetches the snapshot, discarding local edits.
func (b *Bridge) Reload() []Task {
	ref, ok := b.loc.Ref()
	if !ok {
		b.notify(NoticeError, "reload", ErrNoProject)
		return nil
	}
	return []Task{b.loadSnapshot(ref, "")}
}

// reloadHolding reloads the snapshot and keeps flag set until it arrives.
func (b *Bridge) reloadHolding(flag string) []Task {
	ref, ok := b.loc.Ref()
	if !ok {
		delete(b.pending, flag)
		b.notify(NoticeError, "reload", ErrNoProject)
		return nil
	}
	return []Task{b.loadSnapshot(ref, flag)}
}

// Navigate moves to a new location, as when the URL changes.
func (b *Bridge) Navigate(loc Location) []Task {
	oldRef, _ := b.loc.Ref()
	newRef, _ := loc.Ref()
	b.loc = loc
	if newRef != oldRef {
		b.loaded = false
		b.points = nil
		b.state = simul.Load(nil)
		b.clearDetail()
		return b.Open()
	}
	return b.syncSelection()
}

// Select picks scenario k, as a click on the graph does.
func (b *Bridge) Select(k int) []Task {
	return b.Apply(SelectionChanged{Ordinal: k})
}

// ClearSelection returns to editing.
func (b *Bridge) ClearSelection() []Task {
	return b.Apply(SelectionCleared{})
}

// Apply folds an event into the bridge and returns follow-up tasks.
func (b *Bridge) Apply(e Event) []Task {
	switch ev := e.(type) {
	case SelectionChanged:
		b.loc = b.loc.WithOrdinal(ev.Ordinal)
		return b.syncSelection()

	case SelectionCleared:
		b.loc = b.loc.WithoutOrdinal()
		return b.syncSelection()

	case SnapshotLoaded:
		if ev.Release != "" {
			delete(b.pending, ev.Release)
		}
		if ref, _ := b.loc.Ref(); ev.Ref != ref {
			b.logger.Debugf("dropping snapshot of %s, now on %s", ev.Ref, ref)
			return nil
		}
		if ev.Err != nil {
			b.notify(NoticeError, "load configuration", ev.Err)
			return nil
		}
		b.state = simul.Load(ev.Entries)
		b.loaded = true
		b.logger.Infof("loaded %d entries for %s", len(ev.Entries), ev.Ref)

	case GraphLoaded:
		if ref, _ := b.loc.Ref(); ev.Ref != ref {
			return nil
		}
		if ev.Err != nil {
			b.notify(NoticeError, "load results", ev.Err)
			return nil
		}
		b.points = ev.Points
		return b.syncSelection()

	case DetailLoaded:
		if ev.Seq != b.seq {
			b.logger.Debugf("dropping superseded detail for ordinal %d", ev.Ordinal)
			return nil
		}
		if ev.Err != nil {
			b.clearDetail()
			b.notify(NoticeError, fmt.Sprintf("load scenario %d", ev.Ordinal), ev.Err)
			return nil
		}
		d := ev.Detail
		b.detail = &d

	case Submitted:
		if ev.Err != nil {
			b.notify(NoticeError, "apply simulation", ev.Err)
			return nil
		}
		b.notify(NoticeInfo, fmt.Sprintf("simulation applied (%s combinations)", ev.Total), nil)
		if ref, ok := b.loc.Ref(); ok {
			return []Task{b.loadGraph(ref)}
		}

	case GroupAdded:
		flag := groupFlag(ev.EntryID)
		if ev.Err != nil {
			delete(b.pending, flag)
			b.notify(NoticeError, "add scenario", ev.Err)
			return nil
		}
		b.notify(NoticeInfo, "scenario added", nil)
		return b.reloadHolding(flag)

	case ScopeAttached:
		flag := scopeFlag(ev.Key)
		if ev.Err != nil {
			delete(b.pending, flag)
			b.notify(NoticeError, "attach scope", ev.Err)
			return nil
		}
		b.notify(NoticeInfo, "scope attached", nil)
		return b.reloadHolding(flag)

	case GroupRenamed:
		if ev.Err != nil {
			b.notify(NoticeError, "rename group", ev.Err)
			return nil
		}
		b.commit(b.state.SetGroupLabel(ev.Key, ev.Label))

	case GroupDescribed:
		if ev.Err != nil {
			b.notify(NoticeError, "update description", ev.Err)
			return nil
		}
		b.commit(b.state.SetGroupDescription(ev.Key, ev.Description))

	case EntryPathSaved:
		if ev.Err != nil {
			b.notify(NoticeError, "save element path", ev.Err)
			return nil
		}
		b.commit(b.state.SetEntryPath(ev.EntryID, ev.Path))

	case ChoiceSettingLoaded:
		if ev.Err != nil {
			b.setting = nil
			b.notify(NoticeError, "load configuration data", ev.Err)
			return nil
		}
		loaded := ev
		b.setting = &loaded

	case ChoiceSettingSaved:
		if ev.Err != nil {
			b.notify(NoticeError, "save configuration", ev.Err)
			return nil
		}
		if b.commit(b.state.SetChoiceLabel(ev.Key, ev.Level, ev.Label)) == nil {
			b.notify(NoticeInfo, "configuration saved", nil)
		}

	case Notice:
		b.dispatcher.Publish(ev)
	}
	return nil
}

// syncSelection fetches the detail of the selected ordinal when everything
// needed is known, and clears it otherwise.
func (b *Bridge) syncSelection() []Task {
	k, selected := b.loc.Ordinal()
	ref, hasRef := b.loc.Ref()
	b.clearDetail()
	if !selected || !hasRef || !b.sessionValid() || len(b.points) == 0 {
		return nil
	}

	b.seq++
	seq := b.seq
	maxOrdinal := len(b.points)
	backend := b.backend
	return []Task{func(ctx context.Context) Event {
		detail, err := correlate.Lookup(ctx, backend, ref, k, maxOrdinal)
		return DetailLoaded{Seq: seq, Ordinal: k, Detail: detail, Err: err}
	}}
}

// clearDetail drops the shown detail and invalidates in-flight lookups.
func (b *Bridge) clearDetail() {
	b.detail = nil
	b.seq++
}

func (b *Bridge) sessionValid() bool {
	if b.tokens == nil {
		return false
	}
	tok, err := b.tokens.Token()
	return err == nil && tok.Valid()
}

func (b *Bridge) loadSnapshot(ref, release string) Task {
	backend := b.backend
	return func(ctx context.Context) Event {
		entries, err := backend.Snapshot(ctx, ref)
		return SnapshotLoaded{Ref: ref, Entries: entries, Err: err, Release: release}
	}
}

func (b *Bridge) loadGraph(ref string) Task {
	backend := b.backend
	return func(ctx context.Context) Event {
		points, err := backend.Graph(ctx, ref)
		return GraphLoaded{Ref: ref, Points: points, Err: err}
	}
}

// notify publishes a notice. With an error the notice is an error notice
// naming the action.
func (b *Bridge) notify(level NoticeLevel, action string, err error) {
	n := Notice{Level: level, Message: action, Err: err}
	if err != nil {
		n.Level = NoticeError
		n.Message = fmt.Sprintf("failed to %s: %v", action, err)
		b.logger.Warnf("%s", n.Message)
	}
	b.dispatcher.Publish(n)
}

// commit installs a new state, or reports the error of building it. Failed
// transitions leave the previous state in place.
func (b *Bridge) commit(next simul.State, err error) error {
	if err != nil {
		b.notify(NoticeError, "update", err)
		return err
	}
	b.state = next
	return nil
}

// State returns the current editor state.
func (b *Bridge) State() simul.State { return b.state }

// Loaded reports whether a snapshot has been applied.
func (b *Bridge) Loaded() bool { return b.loaded }

// Location returns the navigable state.
func (b *Bridge) Location() Location { return b.loc }

// Ref returns the current project reference.
func (b *Bridge) Ref() (string, bool) { return b.loc.Ref() }

// ReadOnly reports whether a recorded scenario is selected.
func (b *Bridge) ReadOnly() bool {
	_, ok := b.loc.Ordinal()
	return ok
}

// Selected returns the selected ordinal.
func (b *Bridge) Selected() (int, bool) { return b.loc.Ordinal() }

// Detail returns the recorded data of the selected ordinal, once loaded.
func (b *Bridge) Detail() (domain.ScenarioDetail, bool) {
	if b.detail == nil {
		return domain.ScenarioDetail{}, false
	}
	return *b.detail, true
}

// Points returns the generated scenarios.
func (b *Bridge) Points() []domain.GraphPoint { return b.points }

// MaxOrdinal is the number of generated scenarios.
func (b *Bridge) MaxOrdinal() int { return len(b.points) }

// Cards returns the current cards in enumeration order.
func (b *Bridge) Cards() []correlate.Card { return correlate.Cards(b.state.Entries()) }

// Total is the current combination count.
func (b *Bridge) Total() decimal.Decimal { return b.state.Total() }

// Limit is the largest total Submit accepts.
func (b *Bridge) Limit() int64 { return b.limit }

// AddingGroup reports whether a group creation is pending for an entry.
func (b *Bridge) AddingGroup(entryID string) bool { return b.pending[groupFlag(entryID)] }

// AttachingScope reports whether a scope attachment is pending for a group.
func (b *Bridge) AttachingScope(key domain.Key) bool { return b.pending[scopeFlag(key)] }

// Highlight returns the level the selected scenario recorded for a card.
func (b *Bridge) Highlight(key domain.Key) (domain.Level, bool) {
	if b.detail == nil {
		return 0, false
	}
	idx, ok := correlate.CardIndex(b.state.Entries(), key)
	if !ok {
		return 0, false
	}
	return correlate.Highlight(*b.detail, idx)
}

// StepInfo returns the recorded inputs of one card of the selected scenario.
func (b *Bridge) StepInfo(key domain.Key) (correlate.StepInfo, error) {
	if b.detail == nil {
		return correlate.StepInfo{}, correlate.ErrNoSelection
	}
	level, _ := b.Highlight(key)
	return correlate.CardInputs(*b.detail, b.state.Entries(), key, level)
}

// ShareLink is the URL of the current project and selection.
func (b *Bridge) ShareLink() string { return b.loc.String() }

// ChoiceSetting returns the last loaded choice setting.
func (b *Bridge) ChoiceSetting() (ChoiceSettingLoaded, bool) {
	if b.setting == nil {
		return ChoiceSettingLoaded{}, false
	}
	return *b.setting, true
}

func groupFlag(entryID string) string { return "group:" + entryID }

func scopeFlag(key domain.Key) string { return "scope:" + key.String() }
