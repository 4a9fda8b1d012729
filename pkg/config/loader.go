package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// mergeProviders overlays other's providers onto c's, field by field, with
// other taking precedence.
func (c *Config) mergeProviders(other *Config) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	for name, p := range other.Providers {
		existing := c.Providers[name]
		if p.APIURL != "" {
			existing.APIURL = p.APIURL
		}
		if p.APIKey != "" {
			existing.APIKey = p.APIKey
		}
		if p.ModelID != "" {
			existing.ModelID = p.ModelID
		}
		if p.LLMConfig != nil {
			existing.LLMConfig = p.LLMConfig
		}
		c.Providers[name] = existing
	}

	if other.Database.Type != "" {
		c.Database.Type = other.Database.Type
	}
	if other.Database.ProjectID != "" {
		c.Database.ProjectID = other.Database.ProjectID
	}
	if other.Database.CredentialsPath != "" {
		c.Database.CredentialsPath = other.Database.CredentialsPath
	}
}

// LoadLayered loads and merges YAML configuration files in hierarchical
// order (later files override earlier ones), then applies the same
// environment interpolation and validation as Load.
func LoadLayered(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration files provided")
	}

	var result *Config
	for _, path := range paths {
		cfg, err := loadSingleConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}

		if result == nil {
			result = cfg
		} else {
			result.mergeProviders(cfg)
		}
	}

	getenv := func(key string) (string, bool) {
		val := os.Getenv(key)
		if val == "" {
			return "", false
		}
		return val, true
	}
	if err := interpolateProviders(result.Providers, getenv); err != nil {
		return nil, fmt.Errorf("failed to interpolate environment variables: %w", err)
	}

	result.applyOrchestratorDefaults()
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return result, nil
}

// loadSingleConfig loads a single YAML configuration file.
func loadSingleConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	return &cfg, nil
}
