// Package openai implements the openai-family judge: a chat-completion
// call with a system+user message pair, JSON output, temperature 0.
package openai

import (
	"context"
	"fmt"

	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
	goopenai "github.com/sashabaranov/go-openai"
)

func init() {
	judge.Register("openai", New)
}

const systemPrompt = `You are an expert evaluator of conversational AI systems. Score the chatbot's ` +
	`response against the expected reply on a 0-5 rubric (5 Perfect, 4 Excellent, 3 Good, ` +
	`2 Moderate, 1 Poor, 0 No match / failure). Respond with a JSON object of exactly the ` +
	`keys match_level (integer 0-5), justification (string), metadata (object). Output only the JSON object.`

// Judge wraps OpenAI's chat completions API as an evaluation judge.
type Judge struct {
	client  *goopenai.Client
	model   string
	llmConf map[string]any
}

// New constructs the openai-family judge from an EvaluationConfig.
func New(cfg model.EvaluationConfig) (judge.Judge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai judge requires api_key")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientCfg.BaseURL = cfg.APIURL
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "gpt-4o-mini"
	}

	return &Judge{
		client:  goopenai.NewClientWithConfig(clientCfg),
		model:   modelID,
		llmConf: cfg.LLMConfig,
	}, nil
}

// BuildPrompt assembles the user-turn message carrying the comparison.
func (j *Judge) BuildPrompt(userMessage, generatedText, expectedText string) string {
	return fmt.Sprintf(
		"User message:\n%s\n\nExpected reply:\n%s\n\nGenerated reply:\n%s\n",
		userMessage, expectedText, generatedText,
	)
}

// CallLLM performs one chat-completion request and returns the parsed
// JSON verdict, or an error-marker map when the completion is empty or
// unparseable. A failed API call is returned as a Go error.
func (j *Judge) CallLLM(ctx context.Context, prompt string) (map[string]any, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       j.model,
		Temperature: 0,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	applyLLMConfig(&req, j.llmConf)

	resp, err := j.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return map[string]any{"error": "empty completion"}, nil
	}

	parsed := judge.ParseJSONOutput(resp.Choices[0].Message.Content)
	attachUsage(parsed, resp.Usage)
	return parsed, nil
}

func applyLLMConfig(req *goopenai.ChatCompletionRequest, llmConf map[string]any) {
	if llmConf == nil {
		return
	}
	if maxTokens, ok := llmConf["max_tokens"].(float64); ok {
		req.MaxTokens = int(maxTokens)
	}
	if topP, ok := llmConf["top_p"].(float64); ok {
		req.TopP = float32(topP)
	}
}

func attachUsage(parsed map[string]any, usage goopenai.Usage) {
	meta, ok := parsed["metadata"].(map[string]any)
	if !ok {
		meta = make(map[string]any)
		parsed["metadata"] = meta
	}
	meta["input_tokens"] = usage.PromptTokens
	meta["output_tokens"] = usage.CompletionTokens
}
