// Package config loads server configuration from config.yaml and the
// environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/tablelens-ai/tablelens-engine/pkg/retry"
)

// Config holds all configuration for tablelens-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (API keys, database passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Retry behavior for remote analysis calls
	Retry RetryConfig `yaml:"retry"`

	// Analysis pipeline settings
	Analysis AnalysisConfig `yaml:"analysis"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	// Endpoint is the API base URL. Empty means the provider's default.
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	// APIKey is a secret and must come from the environment.
	APIKey string `yaml:"-" env:"LLM_API_KEY"`
	// CallTimeoutSeconds bounds each individual LLM call (per attempt, not
	// per retried operation). Zero disables the per-call timeout.
	CallTimeoutSeconds int `yaml:"call_timeout_seconds" env:"LLM_CALL_TIMEOUT_SECONDS" env-default:"120"`
}

// RetryConfig holds retry/backoff settings for remote analysis calls.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first call.
	MaxAttempts         int     `yaml:"max_attempts" env:"RETRY_MAX_ATTEMPTS" env-default:"3"`
	InitialDelaySeconds int     `yaml:"initial_delay_seconds" env:"RETRY_INITIAL_DELAY_SECONDS" env-default:"2"`
	MaxDelaySeconds     int     `yaml:"max_delay_seconds" env:"RETRY_MAX_DELAY_SECONDS" env-default:"30"`
	Multiplier          float64 `yaml:"multiplier" env:"RETRY_MULTIPLIER" env-default:"2.0"`
	JitterFactor        float64 `yaml:"jitter_factor" env:"RETRY_JITTER_FACTOR" env-default:"0.25"`
}

// ToRetryConfig converts the settings into the retry package's shape.
func (r *RetryConfig) ToRetryConfig() *retry.Config {
	return &retry.Config{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: time.Duration(r.InitialDelaySeconds) * time.Second,
		MaxDelay:     time.Duration(r.MaxDelaySeconds) * time.Second,
		Multiplier:   r.Multiplier,
		JitterFactor: r.JitterFactor,
	}
}

// AnalysisConfig holds analysis pipeline settings.
type AnalysisConfig struct {
	// MaxConcurrentTables bounds the per-table fan-out.
	MaxConcurrentTables int `yaml:"max_concurrent_tables" env:"ANALYSIS_MAX_CONCURRENT_TABLES" env-default:"8"`
	// IntrospectionSampleRows is how many sample rows the datasource
	// introspectors fetch per table.
	IntrospectionSampleRows int `yaml:"introspection_sample_rows" env:"ANALYSIS_INTROSPECTION_SAMPLE_ROWS" env-default:"10"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The YAML file is optional; without it the environment (and
// defaults) alone drive the config. The version parameter is injected at
// build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported llm provider %q (want openai or anthropic)", c.LLM.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Analysis.MaxConcurrentTables < 1 {
		return fmt.Errorf("analysis max_concurrent_tables must be at least 1, got %d", c.Analysis.MaxConcurrentTables)
	}
	return nil
}

// CallTimeout returns the per-call timeout as a duration.
func (c *LLMConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}
