package simul

import "github.com/rgehrsitz/dpesim/internal/domain"

var (
	wallInsulation = domain.Key{EntryID: "wall", GroupID: "wall_ite"}
	wallAlt        = domain.Key{EntryID: "wall", GroupID: "wall_iti"}
	floorLow       = domain.Key{EntryID: "floor_low", GroupID: "floor_low_isol"}
)

func desc(s string) *string { return &s }

// sampleEntries is a wall with two groups (first active, both choices
// pre-checked) and a low floor with one active group and one pre-checked
// choice: 3 x 2 = 6 combinations.
func sampleEntries() []domain.Entry {
	return []domain.Entry{
		{
			ID:       "wall",
			Label:    "Murs",
			Category: "enveloppe",
			Path:     "/config/wall",
			Groups: []domain.SimulationGroup{
				{
					ID:          "wall_ite",
					Active:      true,
					Label:       "Isolation par l'extérieur",
					Description: desc("ITE"),
					Path:        "/config/wall/ite",
					Choices: []domain.Choice{
						{ID: "ite_r4", Label: "R=4", PresetChecked: true},
						{ID: "ite_r6", Label: "R=6", PresetChecked: true},
					},
					Scope: []domain.ScopeItem{
						{ID: "north", Label: "Nord"},
						{Label: "Sud"},
						{ID: "east"},
					},
				},
				{
					ID:    "wall_iti",
					Label: "Isolation par l'intérieur",
					Choices: []domain.Choice{
						{ID: "iti_r3", Label: "R=3"},
					},
				},
			},
		},
		{
			ID:       "floor_low",
			Label:    "Plancher bas",
			Category: "Enveloppe",
			Groups: []domain.SimulationGroup{
				{
					ID:     "floor_low_isol",
					Active: true,
					Label:  "Isolation",
					Choices: []domain.Choice{
						{ID: "fl_r3", Label: "R=3", PresetChecked: true},
						{ID: "fl_r5", Label: "R=5"},
					},
				},
			},
		},
		{
			ID:       "window",
			Label:    "Fenêtres",
			Category: "Baies",
			Path:     "/config/window",
			Groups: []domain.SimulationGroup{
				{ID: "window_dv", Label: "Double vitrage"},
			},
		},
	}
}
