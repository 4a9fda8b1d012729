package simulator

import "testing"

func TestAdaptResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"content field", `{"content": "hi"}`, "hi"},
		{"message field", `{"message": "hi"}`, "hi"},
		{"nested payload.message", `{"payload": {"message": "hi"}}`, "hi"},
		{"openai choices shape", `{"choices": [{"message": {"content": "hi"}}]}`, "hi"},
		{"output.text shape", `{"output": {"text": "hi"}}`, "hi"},
		{"response.content shape", `{"response": {"content": "hi"}}`, "hi"},
		{"data array shape", `{"data": [{"text": "hi"}]}`, "hi"},
		{"plain text body", "just text", "just text"},
		{"unrecognized json falls back to a leaf", `{"foo": {"bar": "leaf value"}}`, "leaf value"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := adaptResponse([]byte(tc.body))
			if got != tc.want {
				t.Errorf("adaptResponse(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestAdaptResponseFallsBackToCanonicalJSON(t *testing.T) {
	got := adaptResponse([]byte(`{"num": 1, "flag": true}`))
	if got == "" {
		t.Error("expected a non-empty canonical fallback")
	}
}

func TestBuildPayloadDefault(t *testing.T) {
	payload := buildPayload(nil, map[string]string{"user_message": "hi"})
	if payload["prompt"] != "hi" {
		t.Errorf("expected default prompt payload, got %v", payload)
	}
}

func TestBuildPayloadTemplateSubstitution(t *testing.T) {
	template := map[string]any{
		"text":  "Q: ${user_message}",
		"extra": map[string]any{"nested": "${user_message}!"},
	}
	payload := buildPayload(template, map[string]string{"user_message": "hi"})

	if payload["text"] != "Q: hi" {
		t.Errorf("text = %v", payload["text"])
	}
	nested := payload["extra"].(map[string]any)
	if nested["nested"] != "hi!" {
		t.Errorf("nested = %v", nested["nested"])
	}
}
