package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/dpesim/internal/correlate"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

func testState() simul.State {
	return simul.Load([]domain.Entry{
		{
			ID:       "wall",
			Label:    "Murs",
			Category: "enveloppe",
			Groups: []domain.SimulationGroup{{
				ID:     "wall_ite",
				Active: true,
				Label:  "ITE",
				Choices: []domain.Choice{
					{ID: "r4", Label: "R=4", PresetChecked: true},
					{ID: "r6", Label: "R=6"},
				},
				Scope: []domain.ScopeItem{{ID: "north", Selected: true}, {ID: "south"}},
			}},
		},
		{
			ID:    "window",
			Label: "Fenêtres",
			Groups: []domain.SimulationGroup{{ID: "window_dv", Label: "Double vitrage"}},
		},
	})
}

func TestBuildCardsView(t *testing.T) {
	detail := &domain.ScenarioDetail{Choices: []int{1}}
	v := BuildCardsView("2287E1043883T", testState(), 1, detail)

	require.Len(t, v.Cards, 1)
	c := v.Cards[0]
	assert.Equal(t, "wall_wall_ite", c.Key)
	assert.Equal(t, []int{0, 1}, c.Levels)
	assert.Equal(t, []string{"R=4", "R=6"}, c.Choices)
	assert.Equal(t, 2, c.Factor)
	assert.Equal(t, "1/2", c.Scope)
	assert.Equal(t, 1, c.Recorded)

	assert.Equal(t, []string{"Fenêtres"}, v.Inactive)
	assert.Equal(t, "2", v.Total.String())
	assert.True(t, v.Exceeds)
}

func TestTableCards(t *testing.T) {
	v := BuildCardsView("2287E1043883T", testState(), 100, nil)
	out, err := TableFormatter{}.Cards(v)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "Project 2287E1043883T")
	assert.Contains(t, s, "[0 1 .]")
	assert.Contains(t, s, "Inactive: Fenêtres")
	assert.Contains(t, s, "Combinations: 2 (limit 100)")
	assert.NotContains(t, s, "TOO MANY")
}

func TestLevelMarksRecorded(t *testing.T) {
	c := CardRow{Levels: []int{0, 2}, Choices: []string{"a", "b"}, Recorded: 2}
	assert.Equal(t, "[0 . *2*]", levelMarks(c))
}

func TestGraphFormats(t *testing.T) {
	v := GraphView{Ref: "2287E1043883T", Points: []domain.GraphPoint{
		{ID: "a", Result: domain.GraphResult{EPConso5UsagesM2: 210.5, EmissionGES5UsagesM2: 41}},
		{ID: "b", Result: domain.GraphResult{EPConso5UsagesM2: 180, EmissionGES5UsagesM2: 35.25}},
	}}

	out, err := CSVFormatter{}.Graph(v)
	require.NoError(t, err)
	assert.Equal(t, "Ordinal,ID,EPConso5UsagesM2,EmissionGES5UsagesM2\n0,a,210.5,41\n1,b,180,35.25\n", string(out))

	out, err = TableFormatter{}.Graph(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), "2 scenario(s)")
	assert.Contains(t, string(out), "210.5")

	out, err = JSONFormatter{}.Graph(v)
	require.NoError(t, err)
	var decoded GraphView
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, v, decoded)
}

func TestStepFormats(t *testing.T) {
	info := correlate.StepInfo{
		Key:       domain.Key{EntryID: "wall", GroupID: "wall_ite"},
		CardIndex: 0,
		Level:     domain.LevelChoice1,
		Inputs:    map[string]any{"r": 4.0, "layers": []any{map[string]any{"mat": "laine"}}},
		Choices:   []int{1, 0},
	}
	v := BuildStepView(3, info)
	assert.Equal(t, "wall_wall_ite", v.Key)

	out, err := TableFormatter{}.Step(v)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "Scenario 3, card 0 (wall_wall_ite), level 1")
	assert.True(t, strings.Index(s, "layers.0.mat") < strings.Index(s, "r "))

	out, err = CSVFormatter{}.Step(v)
	require.NoError(t, err)
	assert.Equal(t, "Input,Value\nlayers.0.mat,laine\nr,4\n", string(out))

	out, err = YAMLFormatter{}.Step(v)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, 3, decoded["ordinal"])
	assert.Equal(t, "wall_wall_ite", decoded["key"])
}

func TestEmptyStepInputs(t *testing.T) {
	out, err := TableFormatter{}.Step(StepView{Inputs: map[string]any{}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "(no recorded inputs)")
}

func TestNewFormatter(t *testing.T) {
	for in, want := range map[string]string{"": "table", "console": "table", "CSV": "csv", "json": "json", "yml": "yaml"} {
		f, err := NewFormatter(in)
		require.NoError(t, err)
		assert.Equal(t, want, f.Name())
	}
	_, err := NewFormatter("html")
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, func() ([]byte, error) { return []byte("ok"), nil }))
	assert.Equal(t, "ok", buf.String())

	assert.Error(t, Write(failingWriter{}, func() ([]byte, error) { return []byte("ok"), nil }))
	assert.Error(t, Write(&buf, func() ([]byte, error) { return nil, errors.New("render") }))
}
