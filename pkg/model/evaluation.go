package model

// EvaluationConfig configures a single judge provider. Fields left zero
// valued are treated as absent by the provider implementation.
type EvaluationConfig struct {
	APIURL    string         `json:"api_url,omitempty"`
	APIKey    string         `json:"api_key,omitempty"`
	ModelID   string         `json:"model_id,omitempty"`
	LLMConfig map[string]any `json:"llm_config,omitempty"`
}

// EvaluationResult is the canonical form of a judge's verdict.
// MatchLevel=0 is the sentinel for "evaluation failed or no match".
type EvaluationResult struct {
	MatchLevel    int            `json:"match_level"`
	Justification string         `json:"justification"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// NewFailedResult builds the EvaluationResult emitted when a judge call
// could not be completed: match_level 0 plus metadata.error.
func NewFailedResult(reason string) EvaluationResult {
	return EvaluationResult{
		MatchLevel:    0,
		Justification: "evaluation failed",
		Metadata:      map[string]any{"error": reason},
	}
}
