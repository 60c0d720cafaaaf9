package bridge

import (
	"context"
	"sync"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// Event is anything delivered to Bridge.Apply or published on a Dispatcher.
type Event interface {
	event()
}

// Task is a backend call. Front ends run tasks off the event loop and feed the
// returned event back through Apply on the loop.
type Task func(ctx context.Context) Event

// SelectionChanged is published by a visualization when a point is picked.
type SelectionChanged struct {
	Ordinal int
}

// SelectionCleared drops the selected ordinal.
type SelectionCleared struct{}

// SnapshotLoaded carries the result of a simul_init fetch.
type SnapshotLoaded struct {
	Ref     string
	Entries []domain.Entry
	Err     error
	// Release names the in-flight flag held until this reload lands.
	Release string
}

// GraphLoaded carries the generated scenarios of a project.
type GraphLoaded struct {
	Ref    string
	Points []domain.GraphPoint
	Err    error
}

// DetailLoaded carries the recorded data of one ordinal. Seq identifies the
// request; only the most recent one is applied.
type DetailLoaded struct {
	Seq     uint64
	Ordinal int
	Detail  domain.ScenarioDetail
	Err     error
}

// Submitted reports the end of a submission.
type Submitted struct {
	Total string
	Err   error
}

// GroupAdded reports a simul_group_init call.
type GroupAdded struct {
	EntryID string
	Err     error
}

// ScopeAttached reports a simul_scope_init call.
type ScopeAttached struct {
	Key domain.Key
	Err error
}

// GroupRenamed reports a label change accepted (or not) by the backend.
type GroupRenamed struct {
	Key   domain.Key
	Label string
	Err   error
}

// GroupDescribed reports a description change.
type GroupDescribed struct {
	Key         domain.Key
	Description string
	Err         error
}

// EntryPathSaved reports an element path change.
type EntryPathSaved struct {
	EntryID string
	Path    string
	Err     error
}

// ChoiceSettingLoaded carries the modifier rule behind a choice.
type ChoiceSettingLoaded struct {
	Key     domain.Key
	Level   domain.Level
	Setting domain.ChoiceSetting
	Err     error
}

// ChoiceSettingSaved reports a choice setting save.
type ChoiceSettingSaved struct {
	Key   domain.Key
	Level domain.Level
	Label string
	Err   error
}

// NoticeLevel grades a Notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarn:
		return "warn"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is the user-facing message of an action. Every failed action
// publishes exactly one error notice.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

func (SelectionChanged) event()    {}
func (SelectionCleared) event()    {}
func (SnapshotLoaded) event()      {}
func (GraphLoaded) event()         {}
func (DetailLoaded) event()        {}
func (Submitted) event()           {}
func (GroupAdded) event()          {}
func (ScopeAttached) event()       {}
func (GroupRenamed) event()        {}
func (GroupDescribed) event()      {}
func (EntryPathSaved) event()      {}
func (ChoiceSettingLoaded) event() {}
func (ChoiceSettingSaved) event()  {}
func (Notice) event()              {}

// Dispatcher is an explicit observer. Handlers run synchronously on the
// publisher's goroutine, in subscription order.
type Dispatcher struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(Event)
	order    []int
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (d *Dispatcher) Subscribe(fn func(Event)) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.next
	d.next++
	d.handlers[id] = fn
	d.order = append(d.order, id)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers, id)
		for i, x := range d.order {
			if x == id {
				d.order = append(d.order[:i:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers e to every handler. A nil Dispatcher drops events.
func (d *Dispatcher) Publish(e Event) {
	if d == nil {
		return
	}
	d.mu.Lock()
	handlers := make([]func(Event), 0, len(d.order))
	for _, id := range d.order {
		handlers = append(handlers, d.handlers[id])
	}
	d.mu.Unlock()
	for _, h := range handlers {
		h(e)
	}
}
