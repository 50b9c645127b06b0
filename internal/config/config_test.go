package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maia/internal/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLM.Provider != "gemini" {
		t.Errorf("Expected provider 'gemini', got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("Expected model 'gemini-2.5-flash', got %s", cfg.LLM.Model)
	}
	if cfg.GetMaxToolRounds() != 8 {
		t.Errorf("Expected 8 tool rounds, got %d", cfg.GetMaxToolRounds())
	}
	if cfg.GetLLMTimeout() != 45*time.Second {
		t.Errorf("Expected 45s timeout, got %v", cfg.GetLLMTimeout())
	}
	if cfg.GetDefaultMode() != types.ModeGeneral {
		t.Errorf("Expected general mode, got %s", cfg.GetDefaultMode())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "maia.yaml")

	cfg := DefaultConfig()
	cfg.Agent.DefaultMode = "modeling"
	cfg.Agent.MaxToolRounds = 4
	cfg.Knowledge.Watch = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, types.ModeModeling, loaded.GetDefaultMode())
	assert.Equal(t, 4, loaded.GetMaxToolRounds())
	assert.False(t, loaded.Knowledge.Watch)
	assert.Equal(t, "gemini-2.5-flash", loaded.LLM.Model)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearKeyEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Agent, cfg.Agent)
	assert.False(t, cfg.HasAPIKey())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "maia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  timeout: 10s\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 8, cfg.Agent.MaxToolRounds)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad provider", func(c *Config) { c.LLM.Provider = "openai" }},
		{"bad timeout", func(c *Config) { c.LLM.Timeout = "soon" }},
		{"zero rounds", func(c *Config) { c.Agent.MaxToolRounds = 0 }},
		{"bad mode", func(c *Config) { c.Agent.DefaultMode = "planning" }},
		{"no data dir", func(c *Config) { c.Storage.DataDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPathResolution(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/data"

	assert.Equal(t, filepath.Join("/data", "maia.db"), cfg.ArchivePath())
	assert.Equal(t, filepath.Join("/data", "knowledge"), cfg.KnowledgeDir())

	cfg.Storage.ArchivePath = "/elsewhere/archive.db"
	assert.Equal(t, "/elsewhere/archive.db", cfg.ArchivePath())
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("session"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("session"))

	lc.Categories = map[string]bool{"session": false}
	assert.False(t, lc.IsCategoryEnabled("session"))
	assert.True(t, lc.IsCategoryEnabled("tools"))
}
