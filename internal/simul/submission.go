package simul

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/dpesim/internal/calculation"
	"github.com/rgehrsitz/dpesim/internal/domain"
)

// Submission is the body of POST simul_init: the full edited configuration
// that triggers backend scenario generation.
type Submission struct {
	RefAdeme          string           `json:"ref_ademe"`
	Entries           []SubmittedEntry `json:"entries"`
	TotalCombinations json.Number      `json:"totalCombinations"`
	CheckboxStates    map[string][]int `json:"checkboxStates"`
	Timestamp         time.Time        `json:"timestamp"`
}

// SubmittedEntry mirrors domain.Entry with choice checks taken from the
// enabled-level map instead of the backend presets.
type SubmittedEntry struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Category string           `json:"category"`
	Path     string           `json:"path"`
	Groups   []SubmittedGroup `json:"simul"`
}

// SubmittedGroup is one group of a submitted entry.
type SubmittedGroup struct {
	ID          string             `json:"id"`
	Active      bool               `json:"active"`
	Label       string             `json:"label"`
	Description *string            `json:"description"`
	Path        string             `json:"path"`
	Scope       []domain.ScopeItem `json:"scope"`
	Choices     []SubmittedChoice  `json:"choices"`
}

// SubmittedChoice is one choice with its current checked state.
type SubmittedChoice struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Checked     bool   `json:"checked"`
}

// Total is the current number of scenario combinations.
func (s State) Total() decimal.Decimal {
	return calculation.TotalCombinations(s.entries, s)
}

// Submission builds the submit payload for project ref at time now.
func (s State) Submission(ref string, now time.Time) Submission {
	sub := Submission{
		RefAdeme:          ref,
		Entries:           make([]SubmittedEntry, 0, len(s.entries)),
		TotalCombinations: json.Number(s.Total().String()),
		CheckboxStates:    make(map[string][]int, len(s.levels)),
		Timestamp:         now.UTC(),
	}
	for k, set := range s.levels {
		sub.CheckboxStates[k.String()] = set.Ints()
	}

	for _, e := range s.entries {
		se := SubmittedEntry{
			ID:       e.ID,
			Label:    e.Label,
			Category: e.Category,
			Path:     e.Path,
			Groups:   make([]SubmittedGroup, 0, len(e.Groups)),
		}
		for _, g := range e.Groups {
			set := s.Levels(e.Key(g))
			sg := SubmittedGroup{
				ID:          g.ID,
				Active:      g.Active,
				Label:       g.Label,
				Description: g.Description,
				Path:        g.Path,
				Scope:       append([]domain.ScopeItem{}, g.Scope...),
				Choices:     make([]SubmittedChoice, 0, len(g.Choices)),
			}
			for i, c := range g.Choices {
				sg.Choices = append(sg.Choices, SubmittedChoice{
					ID:          c.ID,
					Label:       c.Label,
					Description: c.Description,
					Checked:     set.Has(domain.LevelFromChoice(i)),
				})
			}
			se.Groups = append(se.Groups, sg)
		}
		sub.Entries = append(sub.Entries, se)
	}
	return sub
}
