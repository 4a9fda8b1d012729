package config

import (
	"fmt"
	"strings"
)

// Config is the complete levelapp configuration: the top-level
// "providers"/"database" keys, plus the orchestrator tunables normally
// supplied via environment variables.
type Config struct {
	Providers    map[string]ProviderConfig `yaml:"providers" koanf:"providers"`
	Database     DatabaseConfig            `yaml:"database" koanf:"database"`
	Orchestrator OrchestratorConfig        `yaml:"orchestrator,omitempty" koanf:"orchestrator"`
}

// ProviderConfig is one named judge/generation provider's connection and
// model settings: api_url, api_key, model_id, llm_config.
type ProviderConfig struct {
	APIURL    string         `yaml:"api_url,omitempty" koanf:"api_url"`
	APIKey    string         `yaml:"api_key,omitempty" koanf:"api_key"`
	ModelID   string         `yaml:"model_id" koanf:"model_id" validate:"required"`
	LLMConfig map[string]any `yaml:"llm_config,omitempty" koanf:"llm_config"`
}

// DatabaseConfig is the persistence backend selection.
type DatabaseConfig struct {
	Type            string `yaml:"type" koanf:"type" validate:"required"`
	ProjectID       string `yaml:"project_id,omitempty" koanf:"project_id"`
	CredentialsPath string `yaml:"credentials_path,omitempty" koanf:"credentials_path"`
}

// OrchestratorConfig holds the orchestrator tunables. These bind from
// flat environment variables (ORCH_RATE_LIMIT_PER_MIN, ORCH_SESSION_TTL_MIN,
// ORCHESTRATOR_JWT_SECRET, LEVELAPP_EXPECTED_MODEL, LEVELAPP_JUDGE_PROVIDER)
// rather than the nested LEVELAPP_ prefix used for providers/database.
type OrchestratorConfig struct {
	RateLimitPerMin int    `yaml:"rate_limit_per_min,omitempty" koanf:"rate_limit_per_min"`
	SessionTTLMin   int    `yaml:"session_ttl_min,omitempty" koanf:"session_ttl_min"`
	JWTSecret       string `yaml:"jwt_secret,omitempty" koanf:"jwt_secret"`
	ExpectedModel   string `yaml:"expected_model,omitempty" koanf:"expected_model"`
	JudgeProvider   string `yaml:"judge_provider,omitempty" koanf:"judge_provider"`
}

const (
	defaultRateLimitPerMin = 10
	defaultSessionTTLMin   = 15
)

// Validate checks cross-field invariants the validator struct tags alone
// can't express.
func (c *Config) Validate() error {
	for name, p := range c.Providers {
		if p.ModelID == "" {
			return fmt.Errorf("providers.%s.model_id must not be empty", name)
		}
	}

	if c.Database.Type == "" {
		return fmt.Errorf("database.type must not be empty")
	}

	if c.Orchestrator.RateLimitPerMin < 0 {
		return fmt.Errorf("orchestrator.rate_limit_per_min must be non-negative, got: %d", c.Orchestrator.RateLimitPerMin)
	}
	if c.Orchestrator.SessionTTLMin < 0 {
		return fmt.Errorf("orchestrator.session_ttl_min must be non-negative, got: %d", c.Orchestrator.SessionTTLMin)
	}

	return nil
}

// applyOrchestratorDefaults fills unset tunables with their defaults
// (rate_limit_per_min=10, session_ttl_min=15).
func (c *Config) applyOrchestratorDefaults() {
	if c.Orchestrator.RateLimitPerMin == 0 {
		c.Orchestrator.RateLimitPerMin = defaultRateLimitPerMin
	}
	if c.Orchestrator.SessionTTLMin == 0 {
		c.Orchestrator.SessionTTLMin = defaultSessionTTLMin
	}
}

// interpolateEnvVars replaces every ${VAR} occurrence in s with the named
// environment variable's value, failing if any referenced variable is
// unset.
func interpolateEnvVars(s string, getenv func(string) (string, bool)) (string, error) {
	result := s
	start := 0
	for {
		idx := strings.Index(result[start:], "${")
		if idx == -1 {
			break
		}
		idx += start

		endIdx := strings.Index(result[idx:], "}")
		if endIdx == -1 {
			return "", fmt.Errorf("unclosed environment variable reference at position %d", idx)
		}
		endIdx += idx

		varName := result[idx+2 : endIdx]
		value, ok := getenv(varName)
		if !ok {
			return "", fmt.Errorf("environment variable %q is not set", varName)
		}

		result = result[:idx] + value + result[endIdx+1:]
		start = idx + len(value)
	}
	return result, nil
}

// interpolateProviders expands ${VAR} references in every provider's
// api_url and api_key.
func interpolateProviders(providers map[string]ProviderConfig, getenv func(string) (string, bool)) error {
	for name, p := range providers {
		if p.APIURL != "" {
			expanded, err := interpolateEnvVars(p.APIURL, getenv)
			if err != nil {
				return fmt.Errorf("providers.%s.api_url: %w", name, err)
			}
			p.APIURL = expanded
		}
		if p.APIKey != "" {
			expanded, err := interpolateEnvVars(p.APIKey, getenv)
			if err != nil {
				return fmt.Errorf("providers.%s.api_key: %w", name, err)
			}
			p.APIKey = expanded
		}
		providers[name] = p
	}
	return nil
}
