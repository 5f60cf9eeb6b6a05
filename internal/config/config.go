package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	scouterr "github.com/abdul-hamid-achik/marketscout/internal/errors"
)

// AgentConfig holds agent loop configuration
type AgentConfig struct {
	MaxIterations int `yaml:"max_iterations"` // Iteration cap for one run (default: 10)
	HistoryLimit  int `yaml:"history_limit"`  // Prior user queries carried into the prompt (default: 5)
}

// RateLimitConfig holds rate limiting configuration for the LLM client
type RateLimitConfig struct {
	MaxRetries         int           `yaml:"max_retries"`          // Maximum retries on 429
	BaseDelay          time.Duration `yaml:"base_delay"`           // Base delay for exponential backoff
	MaxDelay           time.Duration `yaml:"max_delay"`            // Maximum delay between retries
	TokensPerMinute    int           `yaml:"tokens_per_minute"`    // Rate limit (tokens/minute)
	EnableRateLimiting bool          `yaml:"enable_rate_limiting"` // Enable proactive rate limiting
}

// StoreConfig holds result store configuration
type StoreConfig struct {
	TTL time.Duration `yaml:"ttl"` // How long stored tool results stay loadable (default: 30m)
}

// Config holds the application configuration. Credentials come from the
// environment only, are read exactly once here, and are passed down
// explicitly; no other package reads ambient environment state.
type Config struct {
	AnthropicAPIKey string `yaml:"-"`
	FMPAPIKey       string `yaml:"-"` // Financial Modeling Prep (prices, financials)
	AlphaVantageKey string `yaml:"-"` // Alpha Vantage (news)

	Model        string          `yaml:"model"`         // Primary reasoning model
	SummaryModel string          `yaml:"summary_model"` // Small model for per-tool summaries
	MaxTokens    int             `yaml:"max_tokens"`    // Output token cap per model call
	Agent        AgentConfig     `yaml:"agent"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	Store        StoreConfig     `yaml:"store"`

	// Internal: where config was loaded from
	configPath string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model:        "claude-sonnet-4-5-20250929",
		SummaryModel: "claude-haiku-4-5-20251015",
		MaxTokens:    8192,
		Agent: AgentConfig{
			MaxIterations: 10,
			HistoryLimit:  5,
		},
		RateLimit: RateLimitConfig{
			MaxRetries:         5,
			BaseDelay:          1 * time.Second,
			MaxDelay:           60 * time.Second,
			TokensPerMinute:    30000,
			EnableRateLimiting: true,
		},
		Store: StoreConfig{
			TTL: 30 * time.Minute,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, scouterr.ConfigLoadFailed(path, err)
			}
			cfg.configPath = path
			break
		}
	}

	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	if cfg.AnthropicAPIKey == "" {
		return nil, scouterr.MissingAPIKey("anthropic (set ANTHROPIC_API_KEY)")
	}

	// Data source keys are optional; tools without a key simply are not
	// registered.
	cfg.FMPAPIKey = os.Getenv("FMP_API_KEY")
	cfg.AlphaVantageKey = os.Getenv("ALPHAVANTAGE_API_KEY")

	return cfg, nil
}

// getConfigPaths returns config file paths in priority order
func getConfigPaths() []string {
	paths := []string{
		"marketscout.yaml",
		".marketscout/config.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "marketscout", "config.yaml"))
	}

	return paths
}

// loadFromFile loads config from a YAML file
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// ConfigPath returns where the config was loaded from
func (c *Config) ConfigPath() string {
	return c.configPath
}
