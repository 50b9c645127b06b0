package config

import "time"

// LLMConfig configures the language-model endpoint.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // gemini
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"` // Per-round request timeout
	Temperature float32 `yaml:"temperature"`
}

// AgentConfig configures the orchestration loop.
type AgentConfig struct {
	// DefaultMode is the agent mode a new chat starts in.
	DefaultMode string `yaml:"default_mode"`

	// MaxToolRounds caps how many tool-result batches one user turn may send back.
	MaxToolRounds int `yaml:"max_tool_rounds"`
}

const (
	defaultLLMTimeout    = 45 * time.Second
	defaultMaxToolRounds = 8
)

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"gemini"}
