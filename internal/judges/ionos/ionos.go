// Package ionos implements the ionos-family judge: a single-prompt
// prediction endpoint at <api_url>/<model_id>/predictions.
package ionos

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/norma-dev/levelapp/pkg/httpclient"
	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
)

func init() {
	judge.Register("ionos", New)
}

// Judge wraps IONOS's single-prompt prediction endpoint.
type Judge struct {
	client  *httpclient.Client
	apiURL  string
	modelID string
	llmConf map[string]any
}

// New constructs the ionos-family judge from an EvaluationConfig.
func New(cfg model.EvaluationConfig) (judge.Judge, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("ionos judge requires api_url")
	}
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("ionos judge requires model_id")
	}

	client := httpclient.New(cfg.APIKey)
	if limiter := httpclient.LimiterFromConfig(cfg.LLMConfig); limiter != nil {
		client.SetLimiter(limiter)
	}

	return &Judge{
		client:  client,
		apiURL:  cfg.APIURL,
		modelID: cfg.ModelID,
		llmConf: cfg.LLMConfig,
	}, nil
}

// BuildPrompt assembles a single-prompt rubric request.
func (j *Judge) BuildPrompt(userMessage, generatedText, expectedText string) string {
	return fmt.Sprintf(
		"Score the chatbot reply against the expected reply on a 0-5 rubric "+
			"(5 Perfect .. 0 No match). Return only JSON {match_level, justification, metadata}.\n"+
			"User message: %s\nExpected reply: %s\nGenerated reply: %s\n",
		userMessage, expectedText, generatedText,
	)
}

// ionosRequest is the IONOS predictions-endpoint payload shape.
type ionosRequest struct {
	Properties ionosProperties `json:"properties"`
	Option     map[string]any  `json:"option"`
}

type ionosProperties struct {
	Input string `json:"input"`
}

// ionosResponse is the subset of the predictions response this judge reads.
type ionosResponse struct {
	Properties struct {
		Output string `json:"output"`
	} `json:"properties"`
	Metadata struct {
		InputTokens  int `json:"inputTokens"`
		OutputTokens int `json:"outputTokens"`
	} `json:"metadata"`
}

// CallLLM posts the prediction request and returns the parsed JSON verdict.
func (j *Judge) CallLLM(ctx context.Context, prompt string) (map[string]any, error) {
	option := map[string]any{"seed": rand.Intn(1 << 16)}
	for k, v := range j.llmConf {
		option[k] = v
	}

	req := ionosRequest{
		Properties: ionosProperties{Input: prompt},
		Option:     option,
	}

	url := fmt.Sprintf("%s/%s/predictions", j.apiURL, j.modelID)

	var resp ionosResponse
	if err := j.client.PostJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	parsed := judge.ParseJSONOutput(resp.Properties.Output)
	meta, ok := parsed["metadata"].(map[string]any)
	if !ok {
		meta = make(map[string]any)
		parsed["metadata"] = meta
	}
	meta["input_tokens"] = resp.Metadata.InputTokens
	meta["output_tokens"] = resp.Metadata.OutputTokens

	return parsed, nil
}
