// Package claude implements a claude-family judge over Anthropic's
// Messages API, following the raw-HTTP calling convention of
// internal/generators/anthropic (no pack file exercises the
// anthropic-sdk-go client's call surface, so that SDK isn't grounded here).
package claude

import (
	"context"
	"fmt"

	"github.com/norma-dev/levelapp/pkg/httpclient"
	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
)

func init() {
	judge.Register("claude", New)
}

const (
	defaultBaseURL    = "https://api.anthropic.com/v1"
	defaultAPIVersion = "2023-06-01"
	defaultMaxTokens  = 300
)

const systemPrompt = `Score the chatbot reply against the expected reply on a 0-5 rubric ` +
	`(5 Perfect, 4 Excellent, 3 Good, 2 Moderate, 1 Poor, 0 No match / failure). ` +
	`Respond with a JSON object of exactly the keys match_level (integer 0-5), ` +
	`justification (string), metadata (object). Output only the JSON object.`

// Judge wraps Anthropic's Messages API as an evaluation judge.
type Judge struct {
	client    *httpclient.Client
	baseURL   string
	model     string
	maxTokens int
}

// New constructs the claude-family judge from an EvaluationConfig.
func New(cfg model.EvaluationConfig) (judge.Judge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude judge requires api_key")
	}

	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "claude-3-5-haiku-20241022"
	}
	maxTokens := defaultMaxTokens
	if mt, ok := cfg.LLMConfig["max_tokens"].(float64); ok {
		maxTokens = int(mt)
	}

	client := httpclient.New(cfg.APIKey)
	if limiter := httpclient.LimiterFromConfig(cfg.LLMConfig); limiter != nil {
		client.SetLimiter(limiter)
	}

	return &Judge{
		client:    client,
		baseURL:   baseURL,
		model:     modelID,
		maxTokens: maxTokens,
	}, nil
}

// BuildPrompt assembles the user-turn message carrying the comparison.
func (j *Judge) BuildPrompt(userMessage, generatedText, expectedText string) string {
	return fmt.Sprintf(
		"User message:\n%s\n\nExpected reply:\n%s\n\nGenerated reply:\n%s\n",
		userMessage, expectedText, generatedText,
	)
}

type messageRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []anthropicMsg `json:"messages"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallLLM performs one Messages API request and returns the parsed verdict.
func (j *Judge) CallLLM(ctx context.Context, prompt string) (map[string]any, error) {
	req := messageRequest{
		Model:     j.model,
		MaxTokens: j.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropicMsg{{Role: "user", Content: prompt}},
	}

	headers := map[string]string{
		"x-api-key":         j.client.APIKey(),
		"anthropic-version": defaultAPIVersion,
	}

	var resp messageResponse
	if err := j.client.PostJSONWithHeaders(ctx, j.baseURL+"/messages", headers, req, &resp); err != nil {
		return nil, err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	parsed := judge.ParseJSONOutput(text)
	meta, ok := parsed["metadata"].(map[string]any)
	if !ok {
		meta = make(map[string]any)
		parsed["metadata"] = meta
	}
	meta["input_tokens"] = resp.Usage.InputTokens
	meta["output_tokens"] = resp.Usage.OutputTokens

	return parsed, nil
}
