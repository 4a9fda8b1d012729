package judge

import (
	"encoding/json"
	"regexp"
)

// braceBlock matches the first {...} substring, greedily, across lines —
// the fallback extraction used when a judge's raw text isn't itself valid
// JSON (e.g. wrapped in markdown fences or prose).
var braceBlock = regexp.MustCompile(`(?s)\{.*\}`)

// ParseJSONOutput attempts json.Unmarshal on raw directly; on failure it
// extracts the first {...} substring and retries; on a second failure it
// returns an error-marker map with key "error".
func ParseJSONOutput(raw string) map[string]any {
	if m, ok := tryUnmarshal(raw); ok {
		return m
	}

	if match := braceBlock.FindString(raw); match != "" {
		if m, ok := tryUnmarshal(match); ok {
			return m
		}
	}

	return map[string]any{"error": "Invalid JSON output"}
}

func tryUnmarshal(raw string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, false
	}
	return m, true
}
