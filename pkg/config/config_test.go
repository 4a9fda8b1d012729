package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayered_BasicYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
providers:
  openai:
    model_id: gpt-4o-mini
    api_key: test-key

database:
  type: firestore
  project_id: my-project
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadLayered(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "gpt-4o-mini", cfg.Providers["openai"].ModelID)
	assert.Equal(t, "test-key", cfg.Providers["openai"].APIKey)
	assert.Equal(t, "firestore", cfg.Database.Type)
	assert.Equal(t, "my-project", cfg.Database.ProjectID)
	assert.Equal(t, defaultRateLimitPerMin, cfg.Orchestrator.RateLimitPerMin)
	assert.Equal(t, defaultSessionTTLMin, cfg.Orchestrator.SessionTTLMin)
}

func TestLoadLayered_MergesInOrder(t *testing.T) {
	tmpDir := t.TempDir()

	base := filepath.Join(tmpDir, "base.yaml")
	require.NoError(t, os.WriteFile(base, []byte(`
providers:
  openai:
    model_id: gpt-4o
    api_key: base-key

database:
  type: firestore
  project_id: base-project
`), 0644))

	override := filepath.Join(tmpDir, "override.yaml")
	require.NoError(t, os.WriteFile(override, []byte(`
providers:
  openai:
    model_id: gpt-4o-mini
`), 0644))

	cfg, err := LoadLayered(base, override)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.Providers["openai"].ModelID) // overridden
	assert.Equal(t, "base-key", cfg.Providers["openai"].APIKey)     // inherited
	assert.Equal(t, "base-project", cfg.Database.ProjectID)         // inherited
}

func TestLoadLayered_EnvVarInterpolation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	os.Setenv("LEVELAPP_TEST_API_KEY", "interpolated-key")
	defer os.Unsetenv("LEVELAPP_TEST_API_KEY")

	yamlContent := `
providers:
  openai:
    model_id: gpt-4o-mini
    api_key: ${LEVELAPP_TEST_API_KEY}

database:
  type: firestore
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadLayered(configPath)
	require.NoError(t, err)
	assert.Equal(t, "interpolated-key", cfg.Providers["openai"].APIKey)
}

func TestLoadLayered_MissingEnvVarFails(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	os.Unsetenv("LEVELAPP_TEST_MISSING_VAR")

	yamlContent := `
providers:
  openai:
    model_id: gpt-4o-mini
    api_key: ${LEVELAPP_TEST_MISSING_VAR}

database:
  type: firestore
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadLayered(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "LEVELAPP_TEST_MISSING_VAR")
}

func TestLoadLayered_ValidationRejectsMissingDatabaseType(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte(`
providers:
  openai:
    model_id: gpt-4o-mini
`), 0644))

	cfg, err := LoadLayered(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "database.type")
}

func TestLoadLayered_NonexistentFile(t *testing.T) {
	cfg, err := LoadLayered("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadLayered_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte(`
providers:
  openai
    not: valid
`), 0644))

	cfg, err := LoadLayered(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestConfig_ValidateRejectsEmptyModelID(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{"openai": {ModelID: ""}},
		Database:  DatabaseConfig{Type: "firestore"},
	}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model_id")
}

func TestConfig_ValidateRejectsNegativeOrchestratorTunables(t *testing.T) {
	cfg := &Config{
		Database:     DatabaseConfig{Type: "firestore"},
		Orchestrator: OrchestratorConfig{RateLimitPerMin: -1},
	}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_per_min")
}
