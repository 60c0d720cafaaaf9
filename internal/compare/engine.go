// Package compare measures the generated scenarios of a project against its
// all-baseline scenario.
package compare

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/dpesim/internal/correlate"
	"github.com/rgehrsitz/dpesim/internal/domain"
)

// ErrNoPoints is returned when a project has no generated scenarios yet.
var ErrNoPoints = errors.New("no generated scenarios")

// SortBy orders the alternatives of a comparison
type SortBy string

const (
	SortOrdinal  SortBy = "ordinal"
	SortEPConso  SortBy = "ep"
	SortEmission SortBy = "ges"
)

// Options configures a comparison
type Options struct {
	// Enumeration annotates each point with its card levels. It is ignored
	// when its size does not match the number of points (the configuration
	// changed since the last submission).
	Enumeration *correlate.Enumeration
	SortBy      SortBy
	// Top keeps only the first n alternatives after sorting; 0 keeps all.
	Top int
}

// Compare builds the comparison set of a project's graph points. Ordinal 0 is
// the baseline.
func Compare(ref string, points []domain.GraphPoint, opts Options) (*ComparisonSet, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("compare %s: %w", ref, ErrNoPoints)
	}

	en := opts.Enumeration
	if en != nil {
		if size, ok := en.Size(); !ok || size != len(points) {
			en = nil
		}
	}

	results := make([]PointResult, len(points))
	for k, p := range points {
		results[k] = pointResult(k, p)
		if en != nil {
			levels, err := en.LevelsAt(k)
			if err != nil {
				return nil, fmt.Errorf("compare %s: %w", ref, err)
			}
			results[k].Levels = levels
		}
	}

	base := results[0]
	alternatives := make([]PointResult, 0, len(results)-1)
	for _, r := range results[1:] {
		alternatives = append(alternatives, withDeltas(r, base))
	}
	sortResults(alternatives, opts.SortBy)
	if opts.Top > 0 && opts.Top < len(alternatives) {
		alternatives = alternatives[:opts.Top]
	}

	cs := &ComparisonSet{
		Ref:          ref,
		Baseline:     &base,
		Alternatives: alternatives,
	}
	if en != nil {
		cs.Keys = en.Keys()
	}
	cs.Recommendations = GenerateRecommendations(cs)
	return cs, nil
}

// ParseSortBy validates a sort key.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "", SortOrdinal:
		return SortOrdinal, nil
	case SortEPConso, SortEmission:
		return SortBy(s), nil
	default:
		return "", fmt.Errorf("unknown sort %q (expected ordinal, ep or ges)", s)
	}
}

func sortResults(results []PointResult, by SortBy) {
	switch by {
	case SortEPConso:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].EPConso.LessThan(results[j].EPConso)
		})
	case SortEmission:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Emission.LessThan(results[j].Emission)
		})
	}
}
