package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"maia/internal/types"
)

// Config holds all MAIA configuration.
type Config struct {
	Name string `yaml:"name"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Orchestration loop
	Agent AgentConfig `yaml:"agent"`

	// Chat archive and workspace persistence
	Storage StorageConfig `yaml:"storage"`

	// Knowledge base
	Knowledge KnowledgeConfig `yaml:"knowledge"`

	// Prometheus metrics
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig configures the SQLite archive.
type StorageConfig struct {
	DataDir     string `yaml:"data_dir"`
	ArchivePath string `yaml:"archive_path"` // Relative paths resolve against DataDir
}

// KnowledgeConfig configures the knowledge base.
type KnowledgeConfig struct {
	// UserDir holds the user's own markdown documents ("Mis archivos").
	UserDir string `yaml:"user_dir"`

	// Watch keeps UserDir in sync while a chat is open.
	Watch bool `yaml:"watch"`

	// SearchLimit is the default number of search hits.
	SearchLimit int `yaml:"search_limit"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "MAIA",

		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			Timeout:     "45s",
			Temperature: 0.4,
		},

		Agent: AgentConfig{
			DefaultMode:   string(types.ModeGeneral),
			MaxToolRounds: defaultMaxToolRounds,
		},

		Storage: StorageConfig{
			DataDir:     ".maia",
			ArchivePath: "maia.db",
		},

		Knowledge: KnowledgeConfig{
			UserDir:     "knowledge",
			Watch:       true,
			SearchLimit: 10,
		},

		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides (including variables from .env files) are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") into the
// process environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// API key, lowest priority first. API_KEY is what the web build reads.
	for _, name := range []string{"API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			c.LLM.APIKey = key
		}
	}

	if model := os.Getenv("MAIA_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if dir := os.Getenv("MAIA_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if v := os.Getenv("MAIA_MAX_TOOL_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Agent.MaxToolRounds = n
		}
	}
}

// HasAPIKey reports whether a model credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.LLM.APIKey != ""
}

// GetLLMTimeout returns the per-round LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return defaultLLMTimeout
	}
	return d
}

// GetMaxToolRounds returns the tool round cap, never below one.
func (c *Config) GetMaxToolRounds() int {
	if c.Agent.MaxToolRounds < 1 {
		return defaultMaxToolRounds
	}
	return c.Agent.MaxToolRounds
}

// GetDefaultMode returns the configured starting agent mode.
func (c *Config) GetDefaultMode() types.AgentMode {
	if m, ok := types.ParseAgentMode(c.Agent.DefaultMode); ok {
		return m
	}
	return types.ModeGeneral
}

// ArchivePath returns the resolved SQLite archive path.
func (c *Config) ArchivePath() string {
	return c.resolve(c.Storage.ArchivePath)
}

// KnowledgeDir returns the resolved user knowledge directory.
func (c *Config) KnowledgeDir() string {
	return c.resolve(c.Knowledge.UserDir)
}

// LogsDir returns the directory for debug logs.
func (c *Config) LogsDir() string {
	return c.resolve("logs")
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Storage.DataDir, p)
}

// Validate validates the configuration. A missing API key is not an error here:
// the chat reports it when a session is first created.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if c.LLM.Timeout != "" {
		if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
			return fmt.Errorf("invalid llm.timeout %q: %w", c.LLM.Timeout, err)
		}
	}

	if c.Agent.MaxToolRounds < 1 {
		return fmt.Errorf("agent.max_tool_rounds must be at least 1, got %d", c.Agent.MaxToolRounds)
	}

	if _, ok := types.ParseAgentMode(c.Agent.DefaultMode); !ok {
		return fmt.Errorf("invalid agent.default_mode: %q", c.Agent.DefaultMode)
	}

	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}

	return nil
}
