package template

import (
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/tidwall/gjson"
)

// ParseBody parses a JSON response body into generic Go values
// (map[string]any, []any, string, float64, bool, nil).
// Returns ok=false for bodies that are not valid JSON.
func ParseBody(body []byte) (any, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	return gjson.ParseBytes(body).Value(), true
}

// Extract applies extraction rules to a parsed document. Rules map output key
// to a source path: a dot-separated traversal by default, or a JSONPath
// expression when prefixed with "$" (e.g. "$.items[0].id").
//
// Extraction is fail-soft: a rule that does not resolve, or resolves to null,
// contributes nothing; the remaining rules still run. Extract never fails.
func Extract(doc any, rules map[string]string) map[string]any {
	if len(rules) == 0 {
		return nil
	}

	out := make(map[string]any, len(rules))
	for key, path := range rules {
		var (
			val any
			ok  bool
		)
		if strings.HasPrefix(path, "$") {
			val, ok = resolveJSONPath(doc, path)
		} else {
			val, ok = Resolve(doc, path)
		}
		if ok && val != nil {
			out[key] = val
		}
	}
	return out
}

// Resolve walks a dot-separated path through nested mappings. Each segment
// tries an exact key match first, then a case-insensitive fallback. The
// terminal value is returned as-is, including nested containers. A path with
// no dots is a single-segment traversal under the same rules.
func Resolve(doc any, path string) (any, bool) {
	current := doc
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		if v, ok := m[segment]; ok {
			current = v
			continue
		}

		lowered := strings.ToLower(segment)
		found := false
		for k, v := range m {
			if strings.ToLower(k) == lowered {
				current = v
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return current, true
}

func resolveJSONPath(doc any, expr string) (any, bool) {
	val, err := jsonpath.Get(expr, doc)
	if err != nil || val == nil {
		return nil, false
	}
	return val, true
}
