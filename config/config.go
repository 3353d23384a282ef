// Package config provides configuration loading and management for PageForge.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/pageforge/llm"
	"gopkg.in/yaml.v3"
)

// Config represents the complete PageForge configuration
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Generation GenerationConfig `yaml:"generation"`
	Results    ResultsConfig    `yaml:"results"`
}

// ModelConfig configures the LLM endpoint
type ModelConfig struct {
	// Provider selects the provider adapter (anthropic, openai, ollama)
	Provider string `yaml:"provider"`
	// Endpoint is the API base URL (empty = provider default)
	Endpoint string `yaml:"endpoint"`
	// Name is the model identifier to request from the provider
	Name string `yaml:"name"`
	// Temperature controls randomness (0.0-1.0, default: 0.2)
	Temperature float64 `yaml:"temperature"`
	// MaxTokens limits response length (0 = provider default)
	MaxTokens int `yaml:"max_tokens"`
}

// GenerationConfig configures retry, timeout, and batch behavior
type GenerationConfig struct {
	// MaxAttempts is the maximum number of AI calls per page (>= 1)
	MaxAttempts int `yaml:"max_attempts"`
	// BaseDelay is the backoff before the first retry
	BaseDelay time.Duration `yaml:"base_delay"`
	// MaxDelay caps the backoff duration
	MaxDelay time.Duration `yaml:"max_delay"`
	// PerCallTimeout bounds each individual AI call
	PerCallTimeout time.Duration `yaml:"per_call_timeout"`
	// MaxParallelism bounds concurrent generations in batch mode (>= 1)
	MaxParallelism int `yaml:"max_parallelism"`
}

// ResultsConfig configures generation result storage
type ResultsConfig struct {
	// Backend selects the result repository ("memory" or "nats")
	Backend string `yaml:"backend"`
	// NATSURL is the NATS server URL when backend is "nats"
	NATSURL string `yaml:"nats_url"`
}

// Result storage backends.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Endpoint:    "http://localhost:11434",
			Name:        "qwen2.5-coder:32b",
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		Generation: GenerationConfig{
			MaxAttempts:    3,
			BaseDelay:      2 * time.Second,
			MaxDelay:       30 * time.Second,
			PerCallTimeout: 2 * time.Minute,
			MaxParallelism: 1,
		},
		Results: ResultsConfig{
			Backend: BackendMemory,
		},
	}
}

// Validate checks that the configuration is valid. Out-of-range values are
// rejected here, at startup, not at first use.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "anthropic", "openai", "ollama":
	default:
		return fmt.Errorf("model.provider must be one of anthropic, openai, ollama; got %q", c.Model.Provider)
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("model.max_tokens must not be negative")
	}

	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be >= 1")
	}
	if c.Generation.BaseDelay <= 0 {
		return fmt.Errorf("generation.base_delay must be positive")
	}
	if c.Generation.MaxDelay < c.Generation.BaseDelay {
		return fmt.Errorf("generation.max_delay must be >= generation.base_delay")
	}
	if c.Generation.PerCallTimeout <= 0 {
		return fmt.Errorf("generation.per_call_timeout must be positive")
	}
	if c.Generation.MaxParallelism < 1 {
		return fmt.Errorf("generation.max_parallelism must be >= 1")
	}

	switch c.Results.Backend {
	case BackendMemory:
	case BackendNATS:
		if c.Results.NATSURL == "" {
			return fmt.Errorf("results.nats_url is required when results.backend is %q", BackendNATS)
		}
	default:
		return fmt.Errorf("results.backend must be %q or %q, got %q", BackendMemory, BackendNATS, c.Results.Backend)
	}

	return nil
}

// Endpoint converts the model settings into an llm endpoint config.
func (c *Config) Endpoint() llm.EndpointConfig {
	return llm.EndpointConfig{
		Provider: c.Model.Provider,
		URL:      c.Model.Endpoint,
		Model:    c.Model.Name,
	}
}

// RetryConfig converts the generation settings into an llm retry config.
func (c *Config) RetryConfig() llm.RetryConfig {
	return llm.RetryConfig{
		MaxAttempts:       c.Generation.MaxAttempts,
		BackoffBase:       c.Generation.BaseDelay,
		BackoffMultiplier: 2.0,
		MaxBackoff:        c.Generation.MaxDelay,
		PerCallTimeout:    c.Generation.PerCallTimeout,
	}
}

// LoadFromFile loads configuration from a YAML file. Unknown keys are
// rejected so a typo fails at startup instead of silently using a default.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.MaxTokens != 0 {
		c.Model.MaxTokens = other.Model.MaxTokens
	}

	// Generation
	if other.Generation.MaxAttempts != 0 {
		c.Generation.MaxAttempts = other.Generation.MaxAttempts
	}
	if other.Generation.BaseDelay != 0 {
		c.Generation.BaseDelay = other.Generation.BaseDelay
	}
	if other.Generation.MaxDelay != 0 {
		c.Generation.MaxDelay = other.Generation.MaxDelay
	}
	if other.Generation.PerCallTimeout != 0 {
		c.Generation.PerCallTimeout = other.Generation.PerCallTimeout
	}
	if other.Generation.MaxParallelism != 0 {
		c.Generation.MaxParallelism = other.Generation.MaxParallelism
	}

	// Results
	if other.Results.Backend != "" {
		c.Results.Backend = other.Results.Backend
	}
	if other.Results.NATSURL != "" {
		c.Results.NATSURL = other.Results.NATSURL
	}
}
