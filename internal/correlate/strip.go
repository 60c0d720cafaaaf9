package correlate

import "strings"

// StripPathPrefix removes a leading path+"." from every map key, recursing
// through nested maps and slices. Keys that merely start with path (without
// the dot) are left alone. The input is not modified.
func StripPathPrefix(v any, path string) any {
	prefix := path + "."
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[strings.TrimPrefix(k, prefix)] = StripPathPrefix(val, path)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = StripPathPrefix(val, path)
		}
		return out
	default:
		return v
	}
}
