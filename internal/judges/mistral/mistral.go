// Package mistral implements a mistral-family judge over Mistral's
// OpenAI-compatible chat completions API, grounded on
// internal/generators/mistral (same go-openai client pointed at Mistral's
// base URL).
package mistral

import (
	"context"
	"fmt"

	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
	goopenai "github.com/sashabaranov/go-openai"
)

func init() {
	judge.Register("mistral", New)
}

const defaultBaseURL = "https://api.mistral.ai/v1"

const systemPrompt = `Score the chatbot reply against the expected reply on a 0-5 rubric ` +
	`(5 Perfect .. 0 No match / failure). Respond with a JSON object of exactly the keys ` +
	`match_level (integer 0-5), justification (string), metadata (object). Output only the JSON object.`

// Judge wraps Mistral's chat completions API as an evaluation judge.
type Judge struct {
	client *goopenai.Client
	model  string
}

// New constructs the mistral-family judge from an EvaluationConfig.
func New(cfg model.EvaluationConfig) (judge.Judge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral judge requires api_key")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	clientCfg.BaseURL = baseURL

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "mistral-large-latest"
	}

	return &Judge{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  modelID,
	}, nil
}

// BuildPrompt assembles the user-turn message carrying the comparison.
func (j *Judge) BuildPrompt(userMessage, generatedText, expectedText string) string {
	return fmt.Sprintf(
		"User message:\n%s\n\nExpected reply:\n%s\n\nGenerated reply:\n%s\n",
		userMessage, expectedText, generatedText,
	)
}

// CallLLM performs one chat-completion request and returns the parsed verdict.
func (j *Judge) CallLLM(ctx context.Context, prompt string) (map[string]any, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       j.model,
		Temperature: 0,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := j.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return map[string]any{"error": "empty completion"}, nil
	}

	parsed := judge.ParseJSONOutput(resp.Choices[0].Message.Content)
	meta, ok := parsed["metadata"].(map[string]any)
	if !ok {
		meta = make(map[string]any)
		parsed["metadata"] = meta
	}
	meta["input_tokens"] = resp.Usage.PromptTokens
	meta["output_tokens"] = resp.Usage.CompletionTokens

	return parsed, nil
}
