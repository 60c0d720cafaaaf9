package compare

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// PointResult is one generated scenario with its deltas from the baseline
type PointResult struct {
	Ordinal int            `json:"ordinal"`
	ID      string         `json:"id,omitempty"`
	Levels  []domain.Level `json:"levels,omitempty"`

	// Outputs per m2
	EPConso  decimal.Decimal `json:"epConso"`
	Emission decimal.Decimal `json:"emission"`

	// Comparison to baseline
	EPDiff       decimal.Decimal `json:"epDiff"`
	EPPct        decimal.Decimal `json:"epPct"`
	EmissionDiff decimal.Decimal `json:"emissionDiff"`
	EmissionPct  decimal.Decimal `json:"emissionPct"`
}

// Label names the scenario for display: its levels when known, otherwise its
// ordinal.
func (r PointResult) Label() string {
	if len(r.Levels) == 0 {
		return fmt.Sprintf("#%d", r.Ordinal)
	}
	ints := make([]int, len(r.Levels))
	for i, l := range r.Levels {
		ints[i] = int(l)
	}
	return fmt.Sprintf("#%d %v", r.Ordinal, ints)
}

// ComparisonSet is every generated scenario of a project measured against the
// all-baseline scenario
type ComparisonSet struct {
	Ref             string        `json:"ref"`
	Keys            []domain.Key  `json:"-"`
	Baseline        *PointResult  `json:"baseline"`
	Alternatives    []PointResult `json:"alternatives"`
	Recommendations []string      `json:"recommendations"`
}

// CardLabels renders Keys for headers.
func (cs *ComparisonSet) CardLabels() []string {
	out := make([]string, len(cs.Keys))
	for i, k := range cs.Keys {
		out[i] = k.String()
	}
	return out
}

// pointResult converts a graph point
func pointResult(ordinal int, p domain.GraphPoint) PointResult {
	return PointResult{
		Ordinal:  ordinal,
		ID:       p.ID,
		EPConso:  decimal.NewFromFloat(p.Result.EPConso5UsagesM2),
		Emission: decimal.NewFromFloat(p.Result.EmissionGES5UsagesM2),
	}
}

// withDeltas fills the comparison fields of r against base
func withDeltas(r, base PointResult) PointResult {
	hundred := decimal.NewFromInt(100)

	r.EPDiff = r.EPConso.Sub(base.EPConso)
	if !base.EPConso.IsZero() {
		r.EPPct = r.EPDiff.Div(base.EPConso).Mul(hundred)
	}

	r.EmissionDiff = r.Emission.Sub(base.Emission)
	if !base.Emission.IsZero() {
		r.EmissionPct = r.EmissionDiff.Div(base.Emission).Mul(hundred)
	}
	return r
}

// GenerateRecommendations points out the scenarios with the largest savings
func GenerateRecommendations(cs *ComparisonSet) []string {
	recommendations := []string{}
	if cs.Baseline == nil || len(cs.Alternatives) == 0 {
		return recommendations
	}

	bestEP := cs.Baseline
	for i := range cs.Alternatives {
		if cs.Alternatives[i].EPConso.LessThan(bestEP.EPConso) {
			bestEP = &cs.Alternatives[i]
		}
	}
	if bestEP != cs.Baseline {
		recommendations = append(recommendations,
			"Lowest consumption: "+bestEP.Label()+" saves "+bestEP.EPDiff.Abs().StringFixed(1)+
				" kWh/m2 ("+bestEP.EPPct.StringFixed(1)+"%)")
	}

	bestGES := cs.Baseline
	for i := range cs.Alternatives {
		if cs.Alternatives[i].Emission.LessThan(bestGES.Emission) {
			bestGES = &cs.Alternatives[i]
		}
	}
	if bestGES != cs.Baseline {
		recommendations = append(recommendations,
			"Lowest emissions: "+bestGES.Label()+" saves "+bestGES.EmissionDiff.Abs().StringFixed(1)+
				" kgCO2/m2 ("+bestGES.EmissionPct.StringFixed(1)+"%)")
	}

	worse := 0
	for _, alt := range cs.Alternatives {
		if alt.EPDiff.IsPositive() {
			worse++
		}
	}
	if worse > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d scenario(s) consume more than the baseline", worse))
	}

	return recommendations
}
