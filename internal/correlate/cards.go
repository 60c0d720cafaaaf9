// Package correlate maps a generated scenario's ordinal back to the cards on
// screen and to the inputs and outputs the backend recorded for it.
//
// Card order is the single source of truth for indexing: entries in load
// order, and within each entry only its active group. Rendering, the backend's
// per-scenario inputs array and the combination product all use this order.
package correlate

import (
	"github.com/rgehrsitz/dpesim/internal/domain"
)

// Card is the UI unit for one (entry, active group) pair.
type Card struct {
	Index int
	Key   domain.Key
	Entry domain.Entry
	Group domain.SimulationGroup
}

// Cards lists the cards of a configuration in enumeration order.
func Cards(entries []domain.Entry) []Card {
	var cards []Card
	for _, e := range entries {
		g, ok := e.ActiveGroup()
		if !ok {
			continue
		}
		cards = append(cards, Card{
			Index: len(cards),
			Key:   e.Key(g),
			Entry: e,
			Group: g,
		})
	}
	return cards
}

// CardIndex returns the position of key among the current cards. Inactive
// groups have no position.
func CardIndex(entries []domain.Entry, key domain.Key) (int, bool) {
	for _, c := range Cards(entries) {
		if c.Key == key {
			return c.Index, true
		}
	}
	return -1, false
}

// CardKeys returns the keys of the current cards in order.
func CardKeys(entries []domain.Entry) []domain.Key {
	cards := Cards(entries)
	keys := make([]domain.Key, len(cards))
	for i, c := range cards {
		keys[i] = c.Key
	}
	return keys
}
