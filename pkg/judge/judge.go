// Package judge implements the Evaluation Service: a provider registry of
// LLM-backed judges, a uniform retry/parse policy, and deterministic
// post-processing of every judge verdict.
package judge

import (
	"context"

	"github.com/norma-dev/levelapp/pkg/model"
	"github.com/norma-dev/levelapp/pkg/registry"
)

// Judge is the two-operation capability every provider implements.
type Judge interface {
	// BuildPrompt produces the prompt asking the model to emit
	// {match_level, justification, metadata} against the fixed 0-5 rubric.
	BuildPrompt(userMessage, generatedText, expectedText string) string

	// CallLLM performs one HTTP call to the provider. It returns a parsed
	// mapping on success, or an error-marker mapping (key "error") when the
	// model output cannot be used. A failed HTTP exchange is returned as a
	// Go error, which the Service's retry policy inspects.
	CallLLM(ctx context.Context, prompt string) (map[string]any, error)
}

// Factory builds a Judge from a provider's EvaluationConfig.
type Factory func(model.EvaluationConfig) (Judge, error)

// Registry is the global judge registry. Providers self-register via
// init() functions, the same factory-registration idiom the generator
// packages use.
var Registry = registry.New[Judge]("judges")

// Register adds a judge factory under a provider name (e.g. "openai").
func Register(name string, factory Factory) {
	Registry.Register(name, func(cfg registry.Config) (Judge, error) {
		return factory(configFromMap(cfg))
	})
}

// configFromMap adapts registry.Config (map[string]any) to a typed
// model.EvaluationConfig, the same FromMap bridging pattern used to keep
// typed constructors usable from loosely typed configuration.
func configFromMap(m registry.Config) model.EvaluationConfig {
	cfg := model.EvaluationConfig{
		APIURL:  registry.GetString(m, "api_url", ""),
		APIKey:  registry.GetString(m, "api_key", ""),
		ModelID: registry.GetString(m, "model_id", ""),
	}
	if llmCfg, ok := m["llm_config"].(map[string]any); ok {
		cfg.LLMConfig = llmCfg
	}
	return cfg
}

// configToMap is the inverse of configFromMap, used by Service.SetConfig to
// drive Registry.Create with the registry's generic Config map shape.
func configToMap(cfg model.EvaluationConfig) registry.Config {
	m := registry.Config{
		"api_url":  cfg.APIURL,
		"api_key":  cfg.APIKey,
		"model_id": cfg.ModelID,
	}
	if cfg.LLMConfig != nil {
		m["llm_config"] = cfg.LLMConfig
	}
	return m
}
