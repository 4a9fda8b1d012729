package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/norma-dev/levelapp/pkg/model"
)

// InteractionLine is one flattened line of a JSONL sink's output: a single
// turn, its agent reply, and every judge's verdict, plus enough scenario
// context to regroup lines downstream. Grounded on pkg/results.AttemptResult's
// flattened per-turn line shape.
type InteractionLine struct {
	ConversationID string                             `json:"conversation_id"`
	AttemptID      string                             `json:"attempt_id"`
	UserMessage    string                             `json:"user_message"`
	AgentReply     string                             `json:"agent_reply"`
	ReferenceReply string                             `json:"reference_reply,omitempty"`
	Evaluations    map[string]model.EvaluationResult `json:"evaluation_results"`
}

// JSONLSink writes a BatchResult to a JSON-Lines file, one line per
// interaction. Grounded on pkg/results.WriteJSONL: os.Create, then one
// json.Encoder.Encode call per flattened record.
type JSONLSink struct {
	Path string
}

// NewJSONLSink constructs a JSONLSink writing to path.
func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{Path: path}
}

func (s *JSONLSink) Persist(ctx context.Context, result *model.BatchResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, scenario := range result.Scenarios {
		for _, attempt := range scenario.Attempts {
			for _, interaction := range attempt.Interactions {
				line := InteractionLine{
					ConversationID: attempt.ConversationID,
					AttemptID:      attempt.AttemptID,
					UserMessage:    interaction.UserMessage,
					AgentReply:     interaction.AgentReply,
					ReferenceReply: interaction.ReferenceReply,
					Evaluations:    interaction.EvaluationResults,
				}
				if err := encoder.Encode(line); err != nil {
					return fmt.Errorf("failed to encode interaction line: %w", err)
				}
			}
		}
	}

	return nil
}
