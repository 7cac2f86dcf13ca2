// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"time"
)

// Config represents the full application configuration.
type Config struct {
	GitHub        GitHubConfig        `yaml:"github"`
	Provider      ProviderConfig      `yaml:"provider"`
	HTTP          HTTPConfig          `yaml:"http"`
	Review        ReviewConfig        `yaml:"review"`
	Redaction     RedactionConfig     `yaml:"redaction"`
	Git           GitConfig           `yaml:"git"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GitHubConfig configures access to the GitHub API.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// ProviderConfig configures the model provider.
type ProviderConfig struct {
	// Name selects the provider implementation: "openai" (any
	// OpenAI-compatible endpoint) or "static" (offline).
	Name    string `yaml:"name"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseURL"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// ReviewConfig configures the review pipeline.
type ReviewConfig struct {
	// ExcludeGlobs is a comma-separated list of path patterns excluded
	// from review, e.g. "**/*.md,vendor/**,go.sum".
	ExcludeGlobs string `yaml:"excludeGlobs"`

	// MaxPromptTokens bounds the prompt; files past the budget are dropped.
	MaxPromptTokens int `yaml:"maxPromptTokens"`
}

// RedactionConfig configures secret scrubbing of prompt text.
type RedactionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GitConfig configures local mode.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // auto, json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// ParseTimeout returns the HTTP timeout as a duration.
func (h HTTPConfig) ParseTimeout() (time.Duration, error) {
	return parseDuration("http.timeout", h.Timeout)
}

// ParseInitialBackoff returns the initial retry backoff as a duration.
func (h HTTPConfig) ParseInitialBackoff() (time.Duration, error) {
	return parseDuration("http.initialBackoff", h.InitialBackoff)
}

// ParseMaxBackoff returns the backoff ceiling as a duration.
func (h HTTPConfig) ParseMaxBackoff() (time.Duration, error) {
	return parseDuration("http.maxBackoff", h.MaxBackoff)
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}

// Validate checks the parts of the configuration that cannot fail later
// with a clearer message.
func (c Config) Validate() error {
	switch c.Provider.Name {
	case "openai", "static":
	case "":
		return fmt.Errorf("provider.name is required")
	default:
		return fmt.Errorf("unknown provider %q (expected openai or static)", c.Provider.Name)
	}

	if c.Provider.Name == "openai" && c.Provider.APIKey == "" {
		return fmt.Errorf("provider.apiKey is required for the openai provider")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("provider.model is required")
	}

	if _, err := c.HTTP.ParseTimeout(); err != nil {
		return err
	}
	if _, err := c.HTTP.ParseInitialBackoff(); err != nil {
		return err
	}
	if _, err := c.HTTP.ParseMaxBackoff(); err != nil {
		return err
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.maxRetries must not be negative")
	}

	switch c.Observability.Logging.Level {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("unknown logging level %q", c.Observability.Logging.Level)
	}
	switch c.Observability.Logging.Format {
	case "auto", "human", "json":
	default:
		return fmt.Errorf("unknown logging format %q", c.Observability.Logging.Format)
	}

	return nil
}
