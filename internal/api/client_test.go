package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/simul"
)

type recorded struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   map[string]any
}

func newTestClient(t *testing.T, tokens oauth2.TokenSource, handler func(w http.ResponseWriter, r recorded)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Auth:   r.Header.Get("Authorization"),
		}
		for k := range r.URL.Query() {
			rec.Query[k] = r.URL.Query().Get(k)
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			if err := json.Unmarshal(data, &rec.Body); err != nil {
				t.Errorf("request body is not a JSON object: %v", err)
			}
		}
		calls = append(calls, rec)
		handler(w, rec)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/backoffice", tokens)
	require.NoError(t, err)
	return c, &calls
}

func token(s string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s, Expiry: time.Now().Add(time.Hour)})
}

func TestSnapshot_KeepsKeyOrder(t *testing.T) {
	c, calls := newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `{
			"wall": {"label":"Murs","category":"enveloppe","simul":[{"id":"g1","active":true,"label":"ITE","description":null,"choices":[],"scope":[]}]},
			"floor_low": {"label":"Plancher bas","path":"/config/floor_low","simul":[]},
			"baie_vitree": {"label":"Fenêtres","simul":null}
		}`)
	})

	entries, err := c.Snapshot(context.Background(), "2287E1043883T")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "wall", entries[0].ID)
	assert.Equal(t, "floor_low", entries[1].ID)
	assert.Equal(t, "baie_vitree", entries[2].ID)
	assert.Nil(t, entries[0].Groups[0].Description)

	got := (*calls)[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/backoffice/simul_init", got.Path)
	assert.Equal(t, "2287E1043883T", got.Query["ref_ademe"])
	assert.Equal(t, "Bearer tok", got.Auth)
}

func TestSnapshot_Malformed(t *testing.T) {
	c, _ := newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `[1,2]`)
	})
	_, err := c.Snapshot(context.Background(), "REF")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRequiresSession(t *testing.T) {
	c, calls := newTestClient(t, nil, func(w http.ResponseWriter, _ recorded) {})
	_, err := c.Snapshot(context.Background(), "REF")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, *calls, "no request without a session")

	failing := oauth2.TokenSource(failingSource{})
	c, _ = newTestClient(t, failing, func(w http.ResponseWriter, _ recorded) {})
	_, err = c.ScenarioDetail(context.Background(), "REF", 1, 2)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("signed out") }

func TestStatusError(t *testing.T) {
	c, _ := newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "token expired")
	})
	_, err := c.Graph(context.Background(), "REF")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "simul_graph", se.Endpoint)
	assert.Equal(t, "token expired", se.Body)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	c, _ = newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err = c.AddGroup(context.Background(), "wall")
	require.True(t, errors.As(err, &se))
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}

func TestGraph(t *testing.T) {
	c, calls := newTestClient(t, nil, func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `{"data":[
			{"id":"s0","result":{"ep_conso_5_usages_m2":250.5,"emission_ges_5_usages_m2":40}},
			{"id":"s1","result":{"ep_conso_5_usages_m2":180,"emission_ges_5_usages_m2":31.2}}
		]}`)
	})

	points, err := c.Graph(context.Background(), "2287E1043883T")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 250.5, points[0].Result.EPConso5UsagesM2)
	assert.Equal(t, 31.2, points[1].Result.EmissionGES5UsagesM2)
	assert.Equal(t, "2287E1043883T", (*calls)[0].Query["dpe_id"])
	assert.Empty(t, (*calls)[0].Auth)

	c, _ = newTestClient(t, nil, func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `{"status":"error"}`)
	})
	_, err = c.Graph(context.Background(), "REF")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestScenarioDetail(t *testing.T) {
	c, calls := newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `{"status":"ok","data":{"choices":[1,0],"inputs":[{"a":1},{"b":2}],"outputs":{"ep":120}}}`)
	})

	detail, err := c.ScenarioDetail(context.Background(), "REF", 3, 6)
	require.NoError(t, err)
	assert.Equal(t, "ok", detail.Status)
	assert.Equal(t, []int{1, 0}, detail.Choices)
	assert.Len(t, detail.Inputs, 2)
	assert.Equal(t, float64(120), detail.Outputs["ep"])

	q := (*calls)[0].Query
	assert.Equal(t, "3", q["simul_id"])
	assert.Equal(t, "6", q["simul_max_id"])

	_, err = c.ScenarioDetail(context.Background(), "REF", 3, 0)
	require.NoError(t, err)
	_, hasMax := (*calls)[1].Query["simul_max_id"]
	assert.False(t, hasMax)
}

func TestScenarioDetail_MissingData(t *testing.T) {
	c, _ := newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `{"status":"error"}`)
	})
	_, err := c.ScenarioDetail(context.Background(), "REF", 0, 1)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSubmit(t *testing.T) {
	c, calls := newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `{"status":"success"}`)
	})
	sub := simul.Submission{
		RefAdeme:          "REF",
		TotalCombinations: "6",
		CheckboxStates:    map[string][]int{"wall_g1": {0, 1}},
	}
	require.NoError(t, c.Submit(context.Background(), sub))

	got := (*calls)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/backoffice/simul_init", got.Path)
	assert.Equal(t, "REF", got.Body["ref_ademe"])
	assert.Equal(t, float64(6), got.Body["totalCombinations"])
}

func TestGroupEdits(t *testing.T) {
	c, calls := newTestClient(t, token("tok"), func(w http.ResponseWriter, _ recorded) {
		io.WriteString(w, `{}`)
	})
	key := domain.Key{EntryID: "wall", GroupID: "g1"}
	ctx := context.Background()

	require.NoError(t, c.RenameGroup(ctx, key, "  ITE  "))
	require.NoError(t, c.DescribeGroup(ctx, key, "   "))
	require.NoError(t, c.AddGroup(ctx, "wall"))
	require.NoError(t, c.AttachScope(ctx, "REF", key))
	assert.ErrorIs(t, c.RenameGroup(ctx, key, " "), simul.ErrEmptyLabel)

	rename := (*calls)[0]
	assert.Equal(t, http.MethodPatch, rename.Method)
	assert.Equal(t, "/backoffice/simul_group_edit", rename.Path)
	assert.Equal(t, map[string]any{"entry": "wall", "group": "g1", "label": "ITE"}, rename.Body)

	describe := (*calls)[1]
	assert.Contains(t, describe.Body, "description")
	assert.Nil(t, describe.Body["description"])

	assert.Equal(t, map[string]any{"entry": "wall"}, (*calls)[2].Body)
	assert.Equal(t, "/backoffice/simul_group_init", (*calls)[2].Path)

	scope := (*calls)[3]
	assert.Equal(t, "/backoffice/simul_scope_init", scope.Path)
	assert.Equal(t, map[string]any{"ref_ademe": "REF", "group_id": "g1", "element": "wall"}, scope.Body)
	assert.Len(t, *calls, 4)
}

func TestChoiceSettings(t *testing.T) {
	c, calls := newTestClient(t, token("tok"), func(w http.ResponseWriter, r recorded) {
		if r.Method == http.MethodGet {
			io.WriteString(w, `{"json_action":{"set":{"u":0.2}},"human_readable":"U=0.2"}`)
			return
		}
		io.WriteString(w, `{}`)
	})
	ctx := context.Background()

	s, err := c.ChoiceSetting(ctx, "wall", "ite_r4")
	require.NoError(t, err)
	assert.Equal(t, "U=0.2", s.HumanReadable)
	assert.Contains(t, s.JSONAction, "set")
	assert.Equal(t, map[string]string{"element": "wall", "alt": "ite_r4"}, (*calls)[0].Query)

	require.NoError(t, c.SaveChoiceSetting(ctx, "REF", "floor_low", "fl_r3", ChoiceSettingUpdate{
		Label: "R=3", Description: "U=0.3", Level: domain.LevelChoice1,
	}))
	save := (*calls)[1]
	assert.Equal(t, http.MethodPatch, save.Method)
	assert.Equal(t, "2", save.Query["element"])
	assert.Equal(t, "REF", save.Query["ref_ademe"])
	assert.Equal(t, float64(1), save.Body["level"])
	assert.Equal(t, map[string]any{}, save.Body["modifier_rule"])

	assert.Equal(t, 0, ElementNumber("custom"))
}

func TestGroupSetting(t *testing.T) {
	c, calls := newTestClient(t, token("tok"), func(w http.ResponseWriter, r recorded) {
		if r.Method == http.MethodGet {
			io.WriteString(w, `{"label":"ITE","path":"/config/wall","json_action":{"set":{"u":0.3}}}`)
			return
		}
		io.WriteString(w, `{}`)
	})
	ctx := context.Background()
	key := domain.Key{EntryID: "wall", GroupID: "ite"}

	s, err := c.GroupSetting(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "ITE", s.Label)
	assert.Equal(t, "/config/wall", s.Path)
	assert.Equal(t, map[string]string{"entry": "wall", "simulation": "ite"}, (*calls)[0].Query)

	s.Label = "  ITE R4 "
	require.NoError(t, c.SaveGroupSetting(ctx, key, s))
	save := (*calls)[1]
	assert.Equal(t, http.MethodPatch, save.Method)
	assert.Equal(t, "ITE R4", save.Body["label"])
	assert.Equal(t, "ite", save.Body["simulation"])

	s.Label = " "
	assert.Error(t, c.SaveGroupSetting(ctx, key, s))
	assert.Len(t, *calls, 2, "an empty label is refused before any request")
}

func TestProjects(t *testing.T) {
	c, calls := newTestClient(t, token("tok"), func(w http.ResponseWriter, r recorded) {
		if r.Path == "/backoffice/simul_list" {
			io.WriteString(w, `{"status":"success","data":[{"id":1,"ref_ademe":"2287E1043883T","status":"done"}]}`)
			return
		}
		io.WriteString(w, `{}`)
	})
	ctx := context.Background()

	projects, err := c.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "2287E1043883T", projects[0].RefAdeme)
	assert.Empty(t, (*calls)[0].Auth, "project list is unauthenticated")

	assert.ErrorIs(t, c.CreateProject(ctx, "bad"), ErrInvalidRef)
	require.NoError(t, c.CreateProject(ctx, " 2287E1043883T "))
	require.NoError(t, c.DeleteProject(ctx, "2287E1043883T"))

	require.Len(t, *calls, 3)
	assert.Equal(t, map[string]any{"ref_ademe": "2287E1043883T"}, (*calls)[1].Body)
	assert.Equal(t, "/backoffice/simul_delete", (*calls)[2].Path)
}
