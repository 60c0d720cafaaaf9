package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

// ErrInvalidRef is returned for project references that are not 13
// upper-case alphanumerics.
var ErrInvalidRef = errors.New("reference must be 13 upper-case letters or digits")

// elementNumbers maps the built-in entry ids to the numeric element ids
// simul_setting_edit expects on PATCH.
var elementNumbers = map[string]int{
	"wall":           1,
	"floor_low":      2,
	"floor_high":     3,
	"baie_vitree":    4,
	"porte":          5,
	"ets":            6,
	"pont_thermique": 7,
}

// ElementNumber returns the numeric element id of an entry, or 0 for custom
// entries.
func ElementNumber(entryID string) int {
	return elementNumbers[entryID]
}

// Snapshot loads the editable configuration of a project.
func (c *Client) Snapshot(ctx context.Context, ref string) ([]domain.Entry, error) {
	data, err := c.send(ctx, request{
		method:   http.MethodGet,
		endpoint: "simul_init",
		query:    url.Values{"ref_ademe": {ref}},
	})
	if err != nil {
		return nil, err
	}
	entries, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("simul_init: %w", err)
	}
	return entries, nil
}

// Submit posts the edited configuration and starts scenario generation.
func (c *Client) Submit(ctx context.Context, sub simul.Submission) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "simul_init",
		body:     sub,
	}, nil)
}

// Graph returns the generated scenarios of a project. The position of each
// point is its ordinal.
func (c *Client) Graph(ctx context.Context, ref string) ([]domain.GraphPoint, error) {
	var resp struct {
		Data *[]domain.GraphPoint `json:"data"`
	}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "simul_graph",
		query:    url.Values{"dpe_id": {ref}},
		auth:     authOptional,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("simul_graph: %w: missing data", ErrMalformed)
	}
	return *resp.Data, nil
}

// ScenarioDetail returns the recorded choices, inputs and outputs of one
// ordinal. maxOrdinal is omitted from the query when not positive.
func (c *Client) ScenarioDetail(ctx context.Context, ref string, ordinal, maxOrdinal int) (domain.ScenarioDetail, error) {
	q := url.Values{
		"ref_ademe": {ref},
		"simul_id":  {strconv.Itoa(ordinal)},
	}
	if maxOrdinal > 0 {
		q.Set("simul_max_id", strconv.Itoa(maxOrdinal))
	}
	var resp struct {
		Status string `json:"status"`
		Data   *struct {
			Choices []int          `json:"choices"`
			Inputs  any            `json:"inputs"`
			Outputs map[string]any `json:"outputs"`
		} `json:"data"`
	}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "simul_simul",
		query:    q,
	}, &resp); err != nil {
		return domain.ScenarioDetail{}, err
	}
	if resp.Data == nil {
		return domain.ScenarioDetail{}, fmt.Errorf("simul_simul: %w: missing data", ErrMalformed)
	}
	return domain.ScenarioDetail{
		Status:  resp.Status,
		Choices: resp.Data.Choices,
		Inputs:  resp.Data.Inputs,
		Outputs: resp.Data.Outputs,
	}, nil
}

// ChoiceSetting loads the modifier rule behind a choice.
func (c *Client) ChoiceSetting(ctx context.Context, entryID, choiceID string) (domain.ChoiceSetting, error) {
	var out domain.ChoiceSetting
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "simul_setting_edit",
		query:    url.Values{"element": {entryID}, "alt": {choiceID}},
	}, &out)
	return out, err
}

// ChoiceSettingUpdate is the body of a choice setting save.
type ChoiceSettingUpdate struct {
	Label        string         `json:"label"`
	Description  string         `json:"description"`
	ModifierRule map[string]any `json:"modifier_rule"`
	Level        domain.Level   `json:"level"`
}

// SaveChoiceSetting stores a choice's label, description and modifier rule.
func (c *Client) SaveChoiceSetting(ctx context.Context, ref, entryID, choiceID string, upd ChoiceSettingUpdate) error {
	if upd.ModifierRule == nil {
		upd.ModifierRule = map[string]any{}
	}
	return c.do(ctx, request{
		method:   http.MethodPatch,
		endpoint: "simul_setting_edit",
		query: url.Values{
			"ref_ademe": {ref},
			"element":   {strconv.Itoa(ElementNumber(entryID))},
			"alt":       {choiceID},
		},
		body: upd,
	}, nil)
}

// GroupSetting is the label, path and rule of a whole group.
type GroupSetting struct {
	Label      string         `json:"label,omitempty"`
	Path       string         `json:"path,omitempty"`
	JSONAction map[string]any `json:"json_action,omitempty"`
}

// GroupSetting loads a group's setting.
func (c *Client) GroupSetting(ctx context.Context, key domain.Key) (GroupSetting, error) {
	var out GroupSetting
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "simul_setting_edit",
		query:    url.Values{"entry": {key.EntryID}, "simulation": {key.GroupID}},
	}, &out)
	return out, err
}

// SaveGroupSetting stores a group's label, path and rule.
func (c *Client) SaveGroupSetting(ctx context.Context, key domain.Key, s GroupSetting) error {
	if strings.TrimSpace(s.Label) == "" {
		return simul.ErrEmptyLabel
	}
	body := struct {
		Entry      string         `json:"entry"`
		Simulation string         `json:"simulation"`
		Label      string         `json:"label"`
		Path       string         `json:"path"`
		JSONAction map[string]any `json:"json_action"`
	}{key.EntryID, key.GroupID, strings.TrimSpace(s.Label), strings.TrimSpace(s.Path), s.JSONAction}
	return c.do(ctx, request{
		method:   http.MethodPatch,
		endpoint: "simul_setting_edit",
		body:     body,
	}, nil)
}

// SaveEntryPath changes the element path of an entry.
func (c *Client) SaveEntryPath(ctx context.Context, entryID, path string) error {
	return c.do(ctx, request{
		method:   http.MethodPatch,
		endpoint: "simul_setting_edit",
		body: map[string]string{
			"entry": entryID,
			"path":  strings.TrimSpace(path),
		},
	}, nil)
}

type descriptionEdit struct {
	Entry       string  `json:"entry"`
	Group       string  `json:"group"`
	Description *string `json:"description"`
}

// RenameGroup changes a group's label.
func (c *Client) RenameGroup(ctx context.Context, key domain.Key, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return simul.ErrEmptyLabel
	}
	body := struct {
		Entry string `json:"entry"`
		Group string `json:"group"`
		Label string `json:"label"`
	}{key.EntryID, key.GroupID, label}
	return c.do(ctx, request{
		method:   http.MethodPatch,
		endpoint: "simul_group_edit",
		body:     body,
	}, nil)
}

// DescribeGroup changes a group's description. A blank description is sent
// as null.
func (c *Client) DescribeGroup(ctx context.Context, key domain.Key, description string) error {
	body := descriptionEdit{Entry: key.EntryID, Group: key.GroupID}
	if d := strings.TrimSpace(description); d != "" {
		body.Description = &d
	}
	return c.do(ctx, request{
		method:   http.MethodPatch,
		endpoint: "simul_group_edit",
		body:     body,
	}, nil)
}

// AddGroup creates a default group under an entry.
func (c *Client) AddGroup(ctx context.Context, entryID string) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "simul_group_init",
		body:     map[string]string{"entry": entryID},
	}, nil)
}

// AttachScope attaches the default scope set to a group.
func (c *Client) AttachScope(ctx context.Context, ref string, key domain.Key) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "simul_scope_init",
		body: map[string]string{
			"ref_ademe": ref,
			"group_id":  key.GroupID,
			"element":   key.EntryID,
		},
	}, nil)
}

// Projects lists every simulation project. No session is needed.
func (c *Client) Projects(ctx context.Context) ([]domain.Project, error) {
	var resp struct {
		Status string            `json:"status"`
		Data   *[]domain.Project `json:"data"`
	}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "simul_list",
		auth:     authNone,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Data == nil {
		return nil, fmt.Errorf("simul_list: %w: status %q", ErrMalformed, resp.Status)
	}
	return *resp.Data, nil
}

// CreateProject registers a new project for a DPE reference.
func (c *Client) CreateProject(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if !domain.ValidRef(ref) {
		return fmt.Errorf("%q: %w", ref, ErrInvalidRef)
	}
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "simul_new",
		body:     map[string]string{"ref_ademe": ref},
		auth:     authNone,
	}, nil)
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, ref string) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "simul_delete",
		body:     map[string]string{"ref_ademe": ref},
		auth:     authNone,
	}, nil)
}

// Settings returns the user's backoffice settings. The backend flags an
// outdated front end with lastversion=false.
func (c *Client) Settings(ctx context.Context, frontendVersion string) (map[string]any, error) {
	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "settings",
		query:    url.Values{"frontend_version": {frontendVersion}},
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = map[string]any{}
	}
	return resp.Data, nil
}

// SaveSettings replaces the user's backoffice settings.
func (c *Client) SaveSettings(ctx context.Context, settings map[string]any) error {
	return c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "settings",
		body:     settings,
	}, nil)
}
