package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the nested providers/database keys
// (LEVELAPP_PROVIDERS__OPENAI__MODEL_ID -> providers.openai.model_id).
const envPrefix = "LEVELAPP_"

// Load reads configuration with precedence CLI flags (applied by the
// caller after Load returns) > environment variables > YAML config file >
// defaults. configPath may be empty to skip the file layer entirely.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load YAML config file (lowest priority)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// 2. Load environment variables
	// LEVELAPP_PROVIDERS__OPENAI__MODEL_ID -> providers.openai.model_id
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.Replace(s, "__", ".", -1)
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// 3. Unmarshal to struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	// 3b. Bind the flat orchestrator tunables directly. They don't follow
	// the nested LEVELAPP_ prefix convention used above, so they're read
	// straight from the environment rather than through the env.Provider
	// transform.
	if err := bindOrchestratorEnvVars(&cfg.Orchestrator); err != nil {
		return nil, err
	}

	cfg.applyOrchestratorDefaults()

	// 4. Expand ${VAR} references in provider api_url/api_key.
	getenv := func(key string) (string, bool) {
		val := os.Getenv(key)
		if val == "" {
			return "", false
		}
		return val, true
	}
	if err := interpolateProviders(cfg.Providers, getenv); err != nil {
		return nil, fmt.Errorf("failed to interpolate environment variables: %w", err)
	}

	// 5. Validate using validator library for struct tags
	v := validator.New()
	if err := v.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 6. Validate using custom validation method
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

// bindOrchestratorEnvVars overrides OrchestratorConfig fields from their
// flat environment variables, taking precedence over any value loaded
// from the YAML file.
func bindOrchestratorEnvVars(oc *OrchestratorConfig) error {
	if val, ok := os.LookupEnv("ORCH_RATE_LIMIT_PER_MIN"); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid ORCH_RATE_LIMIT_PER_MIN %q: %w", val, err)
		}
		oc.RateLimitPerMin = n
	}
	if val, ok := os.LookupEnv("ORCH_SESSION_TTL_MIN"); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid ORCH_SESSION_TTL_MIN %q: %w", val, err)
		}
		oc.SessionTTLMin = n
	}
	if val, ok := os.LookupEnv("ORCHESTRATOR_JWT_SECRET"); ok {
		oc.JWTSecret = val
	}
	if val, ok := os.LookupEnv("LEVELAPP_EXPECTED_MODEL"); ok {
		oc.ExpectedModel = val
	}
	if val, ok := os.LookupEnv("LEVELAPP_JUDGE_PROVIDER"); ok {
		oc.JudgeProvider = val
	}
	return nil
}
