// Package output renders configurations, generated scenarios and recorded
// scenario inputs for the command line.
package output

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/dpesim/internal/calculation"
	"github.com/rgehrsitz/dpesim/internal/correlate"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

// CardRow is one card of a configuration.
type CardRow struct {
	Index    int    `json:"index" yaml:"index"`
	Key      string `json:"key" yaml:"key"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Entry    string `json:"entry" yaml:"entry"`
	Group    string `json:"group" yaml:"group"`
	// Levels are the enabled levels, Choices the labels of levels 1 and 2.
	Levels  []int    `json:"levels" yaml:"levels"`
	Choices []string `json:"choices" yaml:"choices"`
	Factor  int      `json:"factor" yaml:"factor"`
	Scope   string   `json:"scope,omitempty" yaml:"scope,omitempty"`
	// Recorded is the level of the selected scenario, -1 when none.
	Recorded int `json:"recorded" yaml:"recorded"`
}

// CardsView is the configuration summary: every card and the resulting count.
type CardsView struct {
	Ref      string          `json:"ref" yaml:"ref"`
	Cards    []CardRow       `json:"cards" yaml:"cards"`
	Inactive []string        `json:"inactive,omitempty" yaml:"inactive,omitempty"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
	Limit    int64           `json:"limit" yaml:"limit"`
	Exceeds  bool            `json:"exceeds" yaml:"exceeds"`
}

// BuildCardsView summarizes a state. detail, when not nil, marks the levels a
// recorded scenario used.
func BuildCardsView(ref string, s simul.State, limit int64, detail *domain.ScenarioDetail) CardsView {
	entries := s.Entries()
	total := s.Total()
	v := CardsView{
		Ref:     ref,
		Total:   total,
		Limit:   limit,
		Exceeds: calculation.ExceedsLimit(total, limit),
	}

	factors := calculation.Breakdown(entries, s)
	for i, c := range correlate.Cards(entries) {
		row := CardRow{
			Index:    c.Index,
			Key:      c.Key.String(),
			Category: c.Entry.Category,
			Entry:    c.Entry.Label,
			Group:    c.Group.Label,
			Levels:   s.Levels(c.Key).Ints(),
			Factor:   factors[i].Factor,
			Scope:    scopeSummary(c.Group.Scope),
			Recorded: -1,
		}
		for _, ch := range c.Group.Choices {
			row.Choices = append(row.Choices, ch.Label)
		}
		if detail != nil {
			if l, ok := correlate.Highlight(*detail, c.Index); ok {
				row.Recorded = int(l)
			}
		}
		v.Cards = append(v.Cards, row)
	}

	for _, e := range entries {
		if _, ok := e.ActiveGroup(); !ok {
			v.Inactive = append(v.Inactive, e.Label)
		}
	}
	return v
}

func scopeSummary(items []domain.ScopeItem) string {
	if len(items) == 0 {
		return ""
	}
	selected := 0
	for _, it := range items {
		if it.Selected {
			selected++
		}
	}
	return fmt.Sprintf("%d/%d", selected, len(items))
}

// GraphView lists the generated scenarios of a project.
type GraphView struct {
	Ref    string              `json:"ref" yaml:"ref"`
	Points []domain.GraphPoint `json:"points" yaml:"points"`
}

// StepView is the recorded inputs of one card of a selected scenario.
type StepView struct {
	Ordinal   int    `json:"ordinal" yaml:"ordinal"`
	Key       string `json:"key" yaml:"key"`
	CardIndex int    `json:"cardIndex" yaml:"cardIndex"`
	Level     int    `json:"level" yaml:"level"`
	Inputs    any    `json:"inputs" yaml:"inputs"`
	Choices   []int  `json:"choices" yaml:"choices"`
}

// BuildStepView flattens a StepInfo.
func BuildStepView(ordinal int, info correlate.StepInfo) StepView {
	return StepView{
		Ordinal:   ordinal,
		Key:       info.Key.String(),
		CardIndex: info.CardIndex,
		Level:     int(info.Level),
		Inputs:    info.Inputs,
		Choices:   info.Choices,
	}
}
