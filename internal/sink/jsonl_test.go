package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/norma-dev/levelapp/pkg/model"
)

func sampleBatchResult() *model.BatchResult {
	return &model.BatchResult{
		Scenarios: []model.ScenarioResult{
			{
				ConversationID: "conv-1",
				Description:    "greeting then follow-up",
				Attempts: []model.ScenarioAttemptResult{
					{
						AttemptID:      "attempt-1",
						ConversationID: "conv-1",
						Interactions: []model.InteractionResult{
							{
								UserMessage:    "hello",
								AgentReply:     "hi there",
								ReferenceReply: "hi there",
								EvaluationResults: map[string]model.EvaluationResult{
									"openai": {MatchLevel: 5, Justification: "exact match"},
								},
							},
							{
								UserMessage: "what is your name",
								AgentReply:  "I am an assistant",
								EvaluationResults: map[string]model.EvaluationResult{
									"openai": {MatchLevel: 4, Justification: "close enough"},
								},
							},
						},
						AverageScores:        map[string]float64{"openai": 4.5},
						ExecutionTimeSeconds: 1.2,
					},
				},
				AverageScores: map[string]float64{"openai": 4.5},
			},
		},
		AverageScores:        map[string]float64{"openai": 4.5},
		GlobalJustifications: map[string][]string{"openai": {"exact match"}},
		StartedAt:            time.Now(),
		FinishedAt:           time.Now().Add(time.Second),
		TotalDurationSeconds: 1.2,
		AverageExecutionTime: 1.2,
	}
}

func TestJSONLSink_Persist(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "results.jsonl")

	s := NewJSONLSink(outputPath)
	if err := s.Persist(context.Background(), sampleBatchResult()); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	file, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("failed to open output file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
		var line InteractionLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("failed to parse JSONL line %d: %v", lineCount, err)
		}
		if line.ConversationID == "" {
			t.Errorf("line %d: conversation_id is empty", lineCount)
		}
		if line.UserMessage == "" {
			t.Errorf("line %d: user_message is empty", lineCount)
		}
		if len(line.Evaluations) == 0 {
			t.Errorf("line %d: evaluation_results is empty", lineCount)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error reading file: %v", err)
	}

	if lineCount != 2 {
		t.Errorf("expected 2 interaction lines, got %d", lineCount)
	}
}

func TestJSONLSink_Persist_EmptyScenarios(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty.jsonl")

	s := NewJSONLSink(outputPath)
	if err := s.Persist(context.Background(), &model.BatchResult{}); err != nil {
		t.Fatalf("Persist failed with empty batch: %v", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatalf("output file not created: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got size %d", info.Size())
	}
}

func TestJSONLSink_Persist_InvalidPath(t *testing.T) {
	s := NewJSONLSink("/nonexistent/directory/results.jsonl")
	if err := s.Persist(context.Background(), sampleBatchResult()); err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestJSONLSink_Persist_CanceledContext(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "canceled.jsonl")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewJSONLSink(outputPath)
	if err := s.Persist(ctx, sampleBatchResult()); err == nil {
		t.Error("expected error for canceled context, got nil")
	}
}
