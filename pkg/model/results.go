package model

import "time"

// InteractionResult captures everything produced by processing one
// Interaction: the agent exchange plus every configured judge's verdict.
type InteractionResult struct {
	UserMessage       string                      `json:"user_message"`
	AgentReply        string                      `json:"agent_reply"`
	ReferenceReply    string                      `json:"reference_reply"`
	ReferenceMetadata map[string]any              `json:"reference_metadata,omitempty"`
	GeneratedMetadata map[string]any              `json:"generated_metadata,omitempty"`
	EvaluationResults map[string]EvaluationResult `json:"evaluation_results"`
}

// ScenarioAttemptResult is one sequential sub-run of a scenario.
type ScenarioAttemptResult struct {
	AttemptID          string               `json:"attempt_id"`
	ConversationID     string               `json:"conversation_id"`
	Interactions       []InteractionResult  `json:"interactions"`
	AverageScores      map[string]float64   `json:"average_scores"`
	ExecutionTimeSeconds float64            `json:"execution_time_seconds"`
}

// ScenarioResult aggregates all attempts run for one BasicConversation.
type ScenarioResult struct {
	ConversationID string                  `json:"conversation_id"`
	Description    string                  `json:"description"`
	Attempts       []ScenarioAttemptResult `json:"attempts"`
	AverageScores  map[string]float64      `json:"average_scores"`
}

// BatchResult is the envelope returned by run_batch.
type BatchResult struct {
	Scenarios              []ScenarioResult      `json:"scenarios"`
	AverageScores          map[string]float64    `json:"average_scores"`
	GlobalJustifications   map[string][]string   `json:"global_justifications"`
	StartedAt              time.Time             `json:"started_at"`
	FinishedAt             time.Time             `json:"finished_at"`
	TotalDurationSeconds   float64               `json:"total_duration_seconds"`
	AverageExecutionTime   float64               `json:"average_execution_time"`
}
