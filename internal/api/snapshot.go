package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// decodeSnapshot reads the simul_init object, keyed by entry id, keeping the
// key order of the document. Entry order fixes card order, so a plain map
// cannot be used here.
func decodeSnapshot(data []byte) ([]domain.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: snapshot is not an object", ErrMalformed)
	}

	entries := []domain.Entry{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrMalformed, keyTok)
		}
		var e domain.Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrMalformed, key, err)
		}
		e.ID = key
		entries = append(entries, e)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return entries, nil
}
