package judge

import "testing"

func TestParseJSONOutputDirect(t *testing.T) {
	m := ParseJSONOutput(`{"match_level": 5, "justification": "exact"}`)
	if m["match_level"] != float64(5) {
		t.Fatalf("expected match_level 5, got %v", m["match_level"])
	}
}

func TestParseJSONOutputEmbedded(t *testing.T) {
	raw := "Sure, here you go:\n```json\n{\"match_level\": 4, \"justification\": \"good\"}\n```\nLet me know if you need more."
	m := ParseJSONOutput(raw)
	if m["match_level"] != float64(4) {
		t.Fatalf("expected match_level 4, got %v", m)
	}
}

func TestParseJSONOutputInvalid(t *testing.T) {
	m := ParseJSONOutput("not json at all")
	if m["error"] != "Invalid JSON output" {
		t.Fatalf("expected error marker, got %v", m)
	}
}
