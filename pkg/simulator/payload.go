package simulator

import "strings"

// buildPayload renders the configured request payload for one turn. With no
// template, the default is {"prompt": "<user_message>"}; with a template,
// every string leaf undergoes "${var}" substitution against vars.
func buildPayload(template map[string]any, vars map[string]string) map[string]any {
	if template == nil {
		return map[string]any{"prompt": vars["user_message"]}
	}
	return substituteTree(template, vars).(map[string]any)
}

func substituteTree(v any, vars map[string]string) any {
	switch t := v.(type) {
	case string:
		return substituteString(t, vars)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = substituteTree(val, vars)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = substituteTree(val, vars)
		}
		return out
	default:
		return v
	}
}

// substituteString replaces every "${name}" occurrence with vars["name"];
// unknown variables are left as an empty string.
func substituteString(s string, vars map[string]string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start == -1 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start:], "}")
		if end == -1 {
			b.WriteString(s)
			break
		}
		end += start

		b.WriteString(s[:start])
		name := s[start+2 : end]
		b.WriteString(vars[name])
		s = s[end+1:]
	}
	return b.String()
}
