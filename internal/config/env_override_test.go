package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY", "MAIA_MODEL", "MAIA_DATA_DIR", "MAIA_MAX_TOOL_ROUNDS"} {
		t.Setenv(name, "")
	}
}

func TestEnvOverrides_APIKey(t *testing.T) {
	t.Run("API_KEY alone", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("API_KEY", "web-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "web-key", cfg.LLM.APIKey)
	})

	t.Run("Precedence: GOOGLE_API_KEY overrides API_KEY", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("API_KEY", "web-key")
		t.Setenv("GOOGLE_API_KEY", "google-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "google-key", cfg.LLM.APIKey)
	})

	t.Run("Precedence: Full Chain", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("API_KEY", "web-key")
		t.Setenv("GOOGLE_API_KEY", "google-key")
		t.Setenv("GEMINI_API_KEY", "gemini-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	})

	t.Run("Empty env keeps file value", func(t *testing.T) {
		clearKeyEnv(t)

		cfg := &Config{LLM: LLMConfig{APIKey: "from-yaml"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "from-yaml", cfg.LLM.APIKey)
	})
}

func TestEnvOverrides_Agent(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("MAIA_MODEL", "gemini-2.5-pro")
	t.Setenv("MAIA_DATA_DIR", "/var/lib/maia")
	t.Setenv("MAIA_MAX_TOOL_ROUNDS", "3")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, "/var/lib/maia", cfg.Storage.DataDir)
	assert.Equal(t, 3, cfg.Agent.MaxToolRounds)
}

func TestEnvOverrides_BadRoundsIgnored(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("MAIA_MAX_TOOL_ROUNDS", "many")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, 8, cfg.Agent.MaxToolRounds)
}

func TestLoadDotEnv(t *testing.T) {
	clearKeyEnv(t)
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("GEMINI_API_KEY=dotenv-key\n"), 0600))

	require.NoError(t, LoadDotEnv(envPath, filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.LLM.APIKey)
	assert.True(t, cfg.HasAPIKey())
}
