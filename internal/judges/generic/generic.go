// Package generic implements a user-pluggable REST judge, grounded on
// internal/generators/rest: a configurable endpoint receiving
// {"prompt": "<prompt>"} and returning free-form text or JSON.
//
// It also accommodates a legacy 0-3 rubric: a generic endpoint cannot be
// assumed to speak the 0-5 rubric, so when its output carries
// rubric_scale=3 this judge tags metadata.rubric="legacy_0_3" rather than
// silently rescaling the reported match_level.
package generic

import (
	"context"
	"fmt"

	"github.com/norma-dev/levelapp/pkg/httpclient"
	"github.com/norma-dev/levelapp/pkg/judge"
	"github.com/norma-dev/levelapp/pkg/model"
)

func init() {
	judge.Register("generic", New)
}

// Judge wraps an arbitrary REST endpoint as an evaluation judge.
type Judge struct {
	client *httpclient.Client
	url    string
}

// New constructs the generic REST judge. cfg.APIURL is the full request URL.
func New(cfg model.EvaluationConfig) (judge.Judge, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("generic judge requires api_url")
	}
	client := httpclient.New(cfg.APIKey)
	if limiter := httpclient.LimiterFromConfig(cfg.LLMConfig); limiter != nil {
		client.SetLimiter(limiter)
	}

	return &Judge{client: client, url: cfg.APIURL}, nil
}

// BuildPrompt assembles a rubric request with an explicit legacy-0-3 escape
// hatch: a responder may set "rubric_scale": 3 in its JSON reply.
func (j *Judge) BuildPrompt(userMessage, generatedText, expectedText string) string {
	return fmt.Sprintf(
		"Score the chatbot reply against the expected reply. Prefer a 0-5 rubric "+
			"(5 Perfect .. 0 No match); if your deployment only supports a 0-3 rubric, "+
			"include \"rubric_scale\": 3 in your JSON response. Return only JSON with keys "+
			"match_level, justification, metadata, and optionally rubric_scale.\n"+
			"User message: %s\nExpected reply: %s\nGenerated reply: %s\n",
		userMessage, expectedText, generatedText,
	)
}

// CallLLM posts the prompt and returns the parsed verdict.
func (j *Judge) CallLLM(ctx context.Context, prompt string) (map[string]any, error) {
	var raw map[string]any
	if err := j.client.PostJSON(ctx, j.url, map[string]string{"prompt": prompt}, &raw); err != nil {
		return nil, err
	}

	if scale, ok := raw["rubric_scale"]; ok {
		if scaleNum, ok := scale.(float64); ok && scaleNum == 3 {
			meta, ok := raw["metadata"].(map[string]any)
			if !ok {
				meta = make(map[string]any)
				raw["metadata"] = meta
			}
			meta["rubric"] = "legacy_0_3"
		}
	}

	return raw, nil
}
