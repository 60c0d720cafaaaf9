package compare

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/dpesim/internal/calculation"
	"github.com/rgehrsitz/dpesim/internal/correlate"
	"github.com/rgehrsitz/dpesim/internal/domain"
)

func point(ep, ges float64) domain.GraphPoint {
	return domain.GraphPoint{Result: domain.GraphResult{EPConso5UsagesM2: ep, EmissionGES5UsagesM2: ges}}
}

func samplePoints() []domain.GraphPoint {
	return []domain.GraphPoint{
		point(200, 40),
		point(180, 36),
		point(150, 30),
		point(210, 44),
	}
}

func sampleEnumeration() *correlate.Enumeration {
	entries := []domain.Entry{
		{ID: "wall", Groups: []domain.SimulationGroup{{ID: "ite", Active: true, Choices: []domain.Choice{{ID: "a"}}}}},
		{ID: "roof", Groups: []domain.SimulationGroup{{ID: "isol", Active: true, Choices: []domain.Choice{{ID: "b"}}}}},
	}
	levels := calculation.LevelMap{
		{EntryID: "wall", GroupID: "ite"}:  domain.NewLevelSet(0, 1),
		{EntryID: "roof", GroupID: "isol"}: domain.NewLevelSet(0, 1),
	}
	en := correlate.Enumerate(entries, levels)
	return &en
}

func TestCompare(t *testing.T) {
	cs, err := Compare("2287E1043883T", samplePoints(), Options{Enumeration: sampleEnumeration()})
	require.NoError(t, err)

	require.NotNil(t, cs.Baseline)
	assert.Equal(t, 0, cs.Baseline.Ordinal)
	assert.Equal(t, []domain.Level{0, 0}, cs.Baseline.Levels)
	require.Len(t, cs.Alternatives, 3)

	best := cs.Alternatives[1]
	assert.Equal(t, 2, best.Ordinal)
	assert.Equal(t, []domain.Level{1, 0}, best.Levels)
	assert.Equal(t, "-50", best.EPDiff.String())
	assert.Equal(t, "-25", best.EPPct.String())
	assert.Equal(t, "-10", best.EmissionDiff.String())

	require.Len(t, cs.Recommendations, 3)
	assert.Contains(t, cs.Recommendations[0], "#2 [1 0]")
	assert.Equal(t, "1 scenario(s) consume more than the baseline", cs.Recommendations[2])
}

func TestCompareIgnoresStaleEnumeration(t *testing.T) {
	cs, err := Compare("2287E1043883T", samplePoints()[:3], Options{Enumeration: sampleEnumeration()})
	require.NoError(t, err)
	assert.Nil(t, cs.Baseline.Levels)
	assert.Empty(t, cs.Keys)
	assert.Equal(t, "#1", cs.Alternatives[0].Label())
}

func TestCompareSortAndTop(t *testing.T) {
	cs, err := Compare("2287E1043883T", samplePoints(), Options{SortBy: SortEPConso, Top: 2})
	require.NoError(t, err)
	require.Len(t, cs.Alternatives, 2)
	assert.Equal(t, 2, cs.Alternatives[0].Ordinal)
	assert.Equal(t, 1, cs.Alternatives[1].Ordinal)
}

func TestCompareNoPoints(t *testing.T) {
	_, err := Compare("2287E1043883T", nil, Options{})
	assert.True(t, errors.Is(err, ErrNoPoints))
}

func TestParseSortBy(t *testing.T) {
	for in, want := range map[string]SortBy{"": SortOrdinal, "ordinal": SortOrdinal, "ep": SortEPConso, "ges": SortEmission} {
		got, err := ParseSortBy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSortBy("cost")
	assert.Error(t, err)
}

func TestTableFormatter_Format(t *testing.T) {
	cs, err := Compare("2287E1043883T", samplePoints(), Options{Enumeration: sampleEnumeration()})
	require.NoError(t, err)

	result := (&TableFormatter{}).Format(cs)

	if !strings.Contains(result, "SCENARIO COMPARISON") {
		t.Error("Expected header in output")
	}
	if !strings.Contains(result, "Project: 2287E1043883T") {
		t.Error("Expected project reference in output")
	}
	if !strings.Contains(result, "wall_ite, roof_isol") {
		t.Error("Expected card labels in output")
	}
	if !strings.Contains(result, "(base)") {
		t.Error("Expected baseline row")
	}
	if !strings.Contains(result, "-50.0 (-25%)") {
		t.Error("Expected delta of the best scenario")
	}
	if !strings.Contains(result, "HIGHLIGHTS") {
		t.Error("Expected highlights section")
	}
}

func TestTableFormatter_FormatCompact(t *testing.T) {
	cs, err := Compare("2287E1043883T", samplePoints()[:2], Options{})
	require.NoError(t, err)
	assert.Equal(t, "Base: 200.0 kWh/m2 | #1: -20.0 (-10%)", (&TableFormatter{}).FormatCompact(cs))
}

func TestCSVFormatter_Format(t *testing.T) {
	cs, err := Compare("2287E1043883T", samplePoints(), Options{Enumeration: sampleEnumeration()})
	require.NoError(t, err)

	out, err := (&CSVFormatter{}).Format(cs)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "Ordinal,Type,Levels"))
	assert.Equal(t, "0,baseline,0 0,200.00,40.00,0.00,0.00,0.00,0.00", lines[1])
	assert.Equal(t, "2,alternative,1 0,150.00,30.00,-50.00,-25.00,-10.00,-25.00", lines[3])
}

func TestJSONFormatter_Format(t *testing.T) {
	cs, err := Compare("2287E1043883T", samplePoints(), Options{Enumeration: sampleEnumeration()})
	require.NoError(t, err)

	for _, pretty := range []bool{false, true} {
		out, err := (&JSONFormatter{Pretty: pretty}).Format(cs)
		require.NoError(t, err)

		var decoded struct {
			Ref          string   `json:"ref"`
			Cards        []string `json:"cards"`
			Alternatives []struct {
				Ordinal int    `json:"ordinal"`
				EPDiff  string `json:"epDiff"`
			} `json:"alternatives"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "2287E1043883T", decoded.Ref)
		assert.Equal(t, []string{"wall_ite", "roof_isol"}, decoded.Cards)
		require.Len(t, decoded.Alternatives, 3)
		assert.Equal(t, "-50", decoded.Alternatives[1].EPDiff)
	}
}
