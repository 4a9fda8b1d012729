package rag

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

// GenerationProvider produces free-form text completions, distinct from
// judge.Judge's scoring contract. Grounded on
// original_source/level_core/generators/service.py's GenerationService
// (a sibling of EvaluationService referenced throughout rag_evaluator.py).
type GenerationProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, error)
}

// OpenAIGenerator is the default GenerationProvider, grounded on the same
// go-openai client used by internal/judges/openai.
type OpenAIGenerator struct {
	client *goopenai.Client
}

// NewOpenAIGenerator constructs a generator over the OpenAI chat
// completions API.
func NewOpenAIGenerator(apiKey string) *OpenAIGenerator {
	return &OpenAIGenerator{client: goopenai.NewClient(apiKey)}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("rag: generation call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("rag: generation call returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
