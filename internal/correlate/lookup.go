package correlate

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

var (
	// ErrNoSelection is returned when there is no recorded scenario to look up.
	ErrNoSelection = errors.New("no scenario selected")
	// ErrNoInputs is returned when a recorded scenario carries no inputs.
	ErrNoInputs = errors.New("scenario has no inputs")
	// ErrCardInactive is returned when a card is not part of the current
	// enumeration.
	ErrCardInactive = errors.New("group is not an active card")
)

// DetailFetcher loads the recorded configuration of one ordinal.
type DetailFetcher interface {
	ScenarioDetail(ctx context.Context, ref string, ordinal, maxOrdinal int) (domain.ScenarioDetail, error)
}

// Lookup fetches the recorded scenario for ordinal k. maxOrdinal is the number
// of recorded scenarios (the length of the graph data).
func Lookup(ctx context.Context, f DetailFetcher, ref string, k, maxOrdinal int) (domain.ScenarioDetail, error) {
	if maxOrdinal <= 0 {
		return domain.ScenarioDetail{}, fmt.Errorf("lookup %d: %w", k, ErrNoSelection)
	}
	if k < 0 || k >= maxOrdinal {
		return domain.ScenarioDetail{}, fmt.Errorf("lookup %d of %d: %w", k, maxOrdinal, ErrOrdinalRange)
	}
	detail, err := f.ScenarioDetail(ctx, ref, k, maxOrdinal)
	if err != nil {
		return domain.ScenarioDetail{}, fmt.Errorf("lookup %d: %w", k, err)
	}
	return detail, nil
}

// Highlight returns the level recorded for the card at index, i.e. the
// checkbox to outline.
func Highlight(detail domain.ScenarioDetail, index int) (domain.Level, bool) {
	if index < 0 || index >= len(detail.Choices) {
		return 0, false
	}
	l := domain.Level(detail.Choices[index])
	return l, l.Valid()
}

// StepInfo is what a detail panel shows for one card of a recorded scenario.
type StepInfo struct {
	Key       domain.Key
	CardIndex int
	Level     domain.Level
	Inputs    any
	AllInputs any
	Choices   []int
}

// CardInputs extracts the recorded inputs of the card at key. Keys namespaced
// under the entry path are stripped of that prefix.
func CardInputs(detail domain.ScenarioDetail, entries []domain.Entry, key domain.Key, level domain.Level) (StepInfo, error) {
	if detail.Inputs == nil {
		return StepInfo{}, ErrNoInputs
	}
	idx, ok := CardIndex(entries, key)
	if !ok {
		return StepInfo{}, fmt.Errorf("%s: %w", key, ErrCardInactive)
	}

	var inputs any
	if list, isList := detail.Inputs.([]any); isList {
		if idx < len(list) && list[idx] != nil {
			inputs = list[idx]
		} else {
			inputs = map[string]any{}
		}
	} else {
		inputs = detail.Inputs
	}

	path := "/config/" + key.EntryID
	if e, ok := domain.FindEntry(entries, key.EntryID); ok && e.Path != "" {
		path = e.Path
	}

	return StepInfo{
		Key:       key,
		CardIndex: idx,
		Level:     level,
		Inputs:    StripPathPrefix(inputs, path),
		AllInputs: detail.Inputs,
		Choices:   append([]int(nil), detail.Choices...),
	}, nil
}
