package domain

import (
	"regexp"
	"time"
)

// GraphResult holds the two outputs plotted for every generated scenario.
type GraphResult struct {
	EPConso5UsagesM2     float64 `json:"ep_conso_5_usages_m2" yaml:"ep_conso_5_usages_m2"`
	EmissionGES5UsagesM2 float64 `json:"emission_ges_5_usages_m2" yaml:"emission_ges_5_usages_m2"`
}

// GraphPoint is one recorded scenario as returned by simul_graph. Its position
// in the returned slice is its ordinal.
type GraphPoint struct {
	ID     string      `json:"id" yaml:"id"`
	Inputs any         `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Result GraphResult `json:"result" yaml:"result"`
}

// ScenarioDetail is the recorded configuration and results of one ordinal.
// Choices holds the level chosen for each card, in card order.
type ScenarioDetail struct {
	Status  string         `json:"status"`
	Choices []int          `json:"choices"`
	Inputs  any            `json:"inputs"`
	Outputs map[string]any `json:"outputs"`
}

// Project is one simulation project known to the backend.
type Project struct {
	ID       int    `json:"id"`
	RefAdeme string `json:"ref_ademe"`
	Status   string `json:"status"`
}

// ChoiceSetting is the editable modifier rule behind a choice.
type ChoiceSetting struct {
	Label         string         `json:"label,omitempty"`
	HumanReadable string         `json:"human_readable,omitempty"`
	JSONAction    map[string]any `json:"json_action,omitempty"`
}

var refPattern = regexp.MustCompile(`^[A-Z0-9]{13}$`)

// ValidRef reports whether s looks like a DPE reference (13 upper-case
// alphanumerics).
func ValidRef(s string) bool {
	return refPattern.MatchString(s)
}

// Session is the authenticated user's credential. It is passed explicitly to
// whoever needs it; nothing in the core reads it from ambient storage.
type Session struct {
	AccessToken string         `json:"accessToken"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	UserInfo    map[string]any `json:"userInfo,omitempty"`
}

// Valid reports whether the session carries a token that has not expired.
func (s Session) Valid(now time.Time) bool {
	if s.AccessToken == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}
