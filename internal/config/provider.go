package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/scorecard/internal/providers"
)

const (
	EnvProviderName        = "SCORECARD_PROVIDER"
	EnvProviderModel       = "SCORECARD_PROVIDER_MODEL"
	EnvProviderAPIKey      = "SCORECARD_PROVIDER_API_KEY"
	EnvProviderBaseURL     = "SCORECARD_PROVIDER_BASE_URL"
	EnvProviderTemperature = "SCORECARD_PROVIDER_TEMPERATURE"
	EnvProviderMaxTokens   = "SCORECARD_PROVIDER_MAX_TOKENS"
)

// ProviderConfig holds the default AI provider parameters. Requests can
// override these per grading run.
type ProviderConfig struct {
	Name        string  `toml:"name"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// Provider converts the configuration into a provider construction
// config.
func (c *ProviderConfig) Provider() providers.Config {
	return providers.Config{
		Provider:    c.Name,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ProviderConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ProviderConfig) Merge(overlay *ProviderConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
}

func (c *ProviderConfig) loadDefaults() {
	if c.Name == "" {
		c.Name = providers.ProviderOllama
	}
	if c.Model == "" {
		c.Model = "llama3.1"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4000
	}
}

func (c *ProviderConfig) loadEnv() {
	if v := os.Getenv(EnvProviderName); v != "" {
		c.Name = v
	}
	if v := os.Getenv(EnvProviderModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvProviderAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvProviderBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvProviderTemperature); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.Temperature = t
		}
	}
	if v := os.Getenv(EnvProviderMaxTokens); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
}

func (c *ProviderConfig) validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("invalid temperature: %g", c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("invalid max_tokens: %d", c.MaxTokens)
	}
	return nil
}
