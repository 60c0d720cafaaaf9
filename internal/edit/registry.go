package edit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// Registry creates edits from string parameters, for command line use.
type Registry struct {
	factories map[string]Factory
}

// Factory builds an edit from its parameters.
type Factory func(params map[string]string) (Edit, error)

// NewRegistry returns a registry with every built-in edit.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register("toggle_entry", createToggleEntry)
	r.Register("toggle_group", createToggleGroup)
	r.Register("toggle_level", createToggleLevel)
	r.Register("set_levels", createSetLevels)
	r.Register("toggle_scope", createToggleScope)
	r.Register("scope_all", createSetAllScope)
	r.Register("group_path", createGroupPath)
	r.Register("add_entry", createAddEntry)
	r.Register("remove_group", createRemoveGroup)
	r.Register("reset", func(map[string]string) (Edit, error) { return Reset{}, nil })

	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Create builds the named edit.
func (r *Registry) Create(name string, params map[string]string) (Edit, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown edit: %s", name)
	}
	return factory(params)
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse parses "name:key=value,key=value". The parameter part may be omitted
// for edits without parameters ("reset").
func (r *Registry) Parse(spec string) (Edit, error) {
	name, paramsStr, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("invalid edit %q, expected 'name:params'", spec)
	}

	params := make(map[string]string)
	if paramsStr = strings.TrimSpace(paramsStr); paramsStr != "" {
		for _, pair := range strings.Split(paramsStr, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid parameter %q, expected 'key=value'", pair)
			}
			params[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return r.Create(name, params)
}

// ParseAll parses every spec in order.
func (r *Registry) ParseAll(specs []string) ([]Edit, error) {
	edits := make([]Edit, 0, len(specs))
	for _, s := range specs {
		e, err := r.Parse(s)
		if err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}
	return edits, nil
}

func needParams(name string, params map[string]string, keys ...string) error {
	for _, k := range keys {
		if params[k] == "" {
			return fmt.Errorf("%s requires '%s' parameter", name, k)
		}
	}
	return nil
}

func keyParam(name string, params map[string]string) (domain.Key, error) {
	if err := needParams(name, params, "entry", "group"); err != nil {
		return domain.Key{}, err
	}
	return domain.Key{EntryID: params["entry"], GroupID: params["group"]}, nil
}

func createToggleEntry(params map[string]string) (Edit, error) {
	if err := needParams("toggle_entry", params, "entry"); err != nil {
		return nil, err
	}
	return ToggleEntry{EntryID: params["entry"]}, nil
}

func createToggleGroup(params map[string]string) (Edit, error) {
	key, err := keyParam("toggle_group", params)
	if err != nil {
		return nil, err
	}
	return ToggleGroup{Key: key}, nil
}

func createToggleLevel(params map[string]string) (Edit, error) {
	key, err := keyParam("toggle_level", params)
	if err != nil {
		return nil, err
	}
	if err := needParams("toggle_level", params, "level"); err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(params["level"])
	level := domain.Level(n)
	if err != nil || !level.Valid() {
		return nil, &domain.LevelError{Input: params["level"]}
	}
	return ToggleLevel{Key: key, Level: level}, nil
}

func createSetLevels(params map[string]string) (Edit, error) {
	key, err := keyParam("set_levels", params)
	if err != nil {
		return nil, err
	}
	if err := needParams("set_levels", params, "levels"); err != nil {
		return nil, err
	}
	// ',' separates parameters, so levels are written "0+2"
	set, err := domain.ParseLevelSet(params["levels"])
	if err != nil {
		return nil, err
	}
	return SetLevels{Key: key, Levels: set}, nil
}

func createToggleScope(params map[string]string) (Edit, error) {
	key, err := keyParam("toggle_scope", params)
	if err != nil {
		return nil, err
	}
	if err := needParams("toggle_scope", params, "item"); err != nil {
		return nil, err
	}
	return ToggleScope{Key: key, ItemID: params["item"]}, nil
}

func createSetAllScope(params map[string]string) (Edit, error) {
	key, err := keyParam("scope_all", params)
	if err != nil {
		return nil, err
	}
	selected := true
	if raw, ok := params["selected"]; ok {
		selected, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid selected value: %w", err)
		}
	}
	return SetAllScope{Key: key, Selected: selected}, nil
}

func createGroupPath(params map[string]string) (Edit, error) {
	key, err := keyParam("group_path", params)
	if err != nil {
		return nil, err
	}
	if err := needParams("group_path", params, "path"); err != nil {
		return nil, err
	}
	return GroupPath{Key: key, Path: params["path"]}, nil
}

func createAddEntry(params map[string]string) (Edit, error) {
	if err := needParams("add_entry", params, "label"); err != nil {
		return nil, err
	}
	return AddEntry{Label: params["label"]}, nil
}

func createRemoveGroup(params map[string]string) (Edit, error) {
	key, err := keyParam("remove_group", params)
	if err != nil {
		return nil, err
	}
	return RemoveGroup{Key: key}, nil
}
