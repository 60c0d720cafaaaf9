package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// DefaultCombinationLimit is the largest total the interactive layer lets a
// user commit. The counter itself is unbounded.
const DefaultCombinationLimit = 10000

// LevelSource resolves the enabled levels of an (entry, group) pair.
type LevelSource interface {
	Levels(key domain.Key) domain.LevelSet
}

// LevelMap adapts a plain map to LevelSource. Missing pairs have only the
// baseline.
type LevelMap map[domain.Key]domain.LevelSet

// Levels implements LevelSource.
func (m LevelMap) Levels(key domain.Key) domain.LevelSet {
	if set, ok := m[key]; ok {
		return set
	}
	return domain.NewLevelSet(domain.LevelBaseline)
}

// EntryFactor is an entry's contribution to the combination count: the size
// of its active group's enabled-level set, or 1 when no group is active.
func EntryFactor(e domain.Entry, levels LevelSource) int {
	g, ok := e.ActiveGroup()
	if !ok {
		return 1
	}
	// Never 0 while the rules hold; a 0 here surfaces a caller that removed
	// the baseline.
	return levels.Levels(e.Key(g)).Len()
}

// TotalCombinations multiplies every entry's factor, in entry order. Entries
// without an active group are excluded (factor 1), never zeroed.
func TotalCombinations(entries []domain.Entry, levels LevelSource) decimal.Decimal {
	total := decimal.NewFromInt(1)
	for _, e := range entries {
		total = total.Mul(decimal.NewFromInt(int64(EntryFactor(e, levels))))
	}
	return total
}

// ExceedsLimit reports whether total is above the commit gate. A limit of 0
// or less disables the gate.
func ExceedsLimit(total decimal.Decimal, limit int64) bool {
	if limit <= 0 {
		return false
	}
	return total.GreaterThan(decimal.NewFromInt(limit))
}

// Factor describes one card's contribution.
type Factor struct {
	Key    domain.Key
	Entry  string
	Group  string
	Levels domain.LevelSet
	Factor int
}

// Breakdown lists the factor of every card (entry with an active group) in
// card order, the same order used to multiply.
func Breakdown(entries []domain.Entry, levels LevelSource) []Factor {
	var out []Factor
	for _, e := range entries {
		g, ok := e.ActiveGroup()
		if !ok {
			continue
		}
		key := e.Key(g)
		out = append(out, Factor{
			Key:    key,
			Entry:  e.Label,
			Group:  g.Label,
			Levels: levels.Levels(key),
			Factor: EntryFactor(e, levels),
		})
	}
	return out
}
