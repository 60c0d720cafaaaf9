package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// LoadSnapshot reads an entry snapshot from a YAML (or JSON) fixture, for
// working offline. Both a list of entries and a mapping of entry id to entry
// are accepted; mapping order is kept, and a missing id is taken from the key.
func (ip *InputParser) LoadSnapshot(filename string) ([]domain.Entry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("snapshot %s is empty", filename)
	}
	root := doc.Content[0]

	var entries []domain.Entry
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			var e domain.Entry
			if err := root.Content[i+1].Decode(&e); err != nil {
				return nil, fmt.Errorf("decode entry %s: %w", root.Content[i].Value, err)
			}
			if e.ID == "" {
				e.ID = root.Content[i].Value
			}
			entries = append(entries, e)
		}
	default:
		return nil, fmt.Errorf("snapshot %s: expected a list or a mapping of entries", filename)
	}

	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("snapshot entry %d has no id", i)
		}
	}
	return entries, nil
}
