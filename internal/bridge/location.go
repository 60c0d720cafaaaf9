package bridge

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// OrdinalParam is the query parameter holding the selected scenario.
const OrdinalParam = "simul_id"

// Location is the navigable state of the editor: the project reference in the
// path and the selected ordinal in the query. It is a value; the With methods
// return modified copies.
type Location struct {
	u url.URL
}

// ParseLocation parses an app URL such as https://host/2287E1043883T?simul_id=3.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse location: %w", err)
	}
	return Location{u: *u}, nil
}

// NewLocation builds the location of a project under appURL.
func NewLocation(appURL, ref string) (Location, error) {
	loc, err := ParseLocation(appURL)
	if err != nil {
		return Location{}, err
	}
	return loc.WithRef(ref), nil
}

// Ref returns the project reference: the last path segment, when it looks
// like one.
func (l Location) Ref() (string, bool) {
	segments := strings.Split(l.u.Path, "/")
	last := segments[len(segments)-1]
	if domain.ValidRef(last) {
		return last, true
	}
	return "", false
}

// Ordinal returns the selected scenario ordinal.
func (l Location) Ordinal() (int, bool) {
	raw := l.u.Query().Get(OrdinalParam)
	if raw == "" {
		return 0, false
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 0 {
		return 0, false
	}
	return k, true
}

// WithRef replaces the last path segment with ref (appending one when the
// path does not end with a reference) and drops the selection.
func (l Location) WithRef(ref string) Location {
	out := l.WithoutOrdinal()
	path := out.u.Path
	if _, ok := l.Ref(); ok {
		path = path[:strings.LastIndex(path, "/")]
	}
	out.u.Path = strings.TrimRight(path, "/") + "/" + ref
	out.u.RawPath = ""
	return out
}

// WithOrdinal selects scenario k.
func (l Location) WithOrdinal(k int) Location {
	return l.withQuery(func(q url.Values) { q.Set(OrdinalParam, strconv.Itoa(k)) })
}

// WithoutOrdinal clears the selection.
func (l Location) WithoutOrdinal() Location {
	return l.withQuery(func(q url.Values) { q.Del(OrdinalParam) })
}

func (l Location) withQuery(fn func(url.Values)) Location {
	out := l
	q := out.u.Query()
	fn(q)
	out.u.RawQuery = q.Encode()
	return out
}

// String renders the location as a shareable link.
func (l Location) String() string {
	return l.u.String()
}
