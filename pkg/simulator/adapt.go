package simulator

import (
	"encoding/json"
	"sort"
	"strings"
)

// probePaths are the fixed, ordered JSON paths an agent reply is checked
// against before falling back to a generic leaf search.
var probePaths = [][]string{
	{"content"},
	{"message"},
	{"payload", "message"},
	{"choices", "0", "message", "content"},
	{"output", "text"},
	{"response", "content"},
	{"data", "0", "text"},
}

// adaptResponse normalizes a raw agent HTTP response body to a single
// plain-text reply via the probe-path / leaf-search / raw-text fallback
// chain.
func adaptResponse(body []byte) string {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body))
	}

	for _, path := range probePaths {
		if val, ok := lookup(parsed, path); ok {
			if s, ok := val.(string); ok && s != "" {
				return s
			}
		}
	}

	if leaf, ok := firstNonEmptyStringLeaf(parsed); ok {
		return leaf
	}

	canonical, err := json.Marshal(parsed)
	if err != nil {
		return strings.TrimSpace(string(body))
	}
	return string(canonical)
}

// lookup walks v along path, treating numeric segments as array indices.
func lookup(v any, path []string) (any, bool) {
	cur := v
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, ok := parseIndex(seg)
			if !ok || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// firstNonEmptyStringLeaf does a deterministic depth-first search (map keys
// sorted for reproducibility) for the first non-empty string value.
func firstNonEmptyStringLeaf(v any) (string, bool) {
	switch node := v.(type) {
	case string:
		if node != "" {
			return node, true
		}
		return "", false
	case map[string]any:
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if leaf, ok := firstNonEmptyStringLeaf(node[k]); ok {
				return leaf, true
			}
		}
	case []any:
		for _, item := range node {
			if leaf, ok := firstNonEmptyStringLeaf(item); ok {
				return leaf, true
			}
		}
	}
	return "", false
}
