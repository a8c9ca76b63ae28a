// Package providers constructs text generation clients for the grading
// pipeline. Every supported backend is driven through the langchaingo
// model abstraction, so the orchestrator sees one Generator contract
// regardless of which service actually answers.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Supported provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderLMStudio  = "lmstudio"
	ProviderGeneric   = "generic"
)

// Default endpoints for local backends.
const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultLMStudioURL = "http://localhost:1234/v1"
)

// Generator produces a completion for a system and user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Config selects and parameterizes a provider.
type Config struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Client adapts a langchaingo model to the Generator contract.
type Client struct {
	name        string
	model       llms.Model
	temperature float64
	maxTokens   int
}

// New constructs a Generator for the configured provider.
func New(ctx context.Context, cfg Config) (*Client, error) {
	model, err := buildModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		name:        fmt.Sprintf("%s/%s", cfg.Provider, cfg.Model),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func buildModel(ctx context.Context, cfg Config) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, cfg.Provider)
		}
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, cfg.Provider)
		}
		return anthropic.New(
			anthropic.WithModel(cfg.Model),
			anthropic.WithToken(cfg.APIKey),
		)

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, cfg.Provider)
		}
		return googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)

	case ProviderOllama:
		url := cfg.BaseURL
		if url == "" {
			url = defaultOllamaURL
		}
		return ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(url),
		)

	case ProviderLMStudio:
		url := cfg.BaseURL
		if url == "" {
			url = defaultLMStudioURL
		}
		return openaiCompatible(cfg, url)

	case ProviderGeneric:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingBaseURL, cfg.Provider)
		}
		return openaiCompatible(cfg, cfg.BaseURL)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// openaiCompatible builds a client for any backend speaking the OpenAI
// chat completion protocol. Servers that ignore authentication still
// require a non-empty token on the client side.
func openaiCompatible(cfg Config, url string) (llms.Model, error) {
	token := cfg.APIKey
	if token == "" {
		token = "not-needed"
	}
	return openai.New(
		openai.WithModel(cfg.Model),
		openai.WithToken(token),
		openai.WithBaseURL(url),
	)
}

// Name identifies the provider and model, e.g. "openai/gpt-4o".
func (c *Client) Name() string {
	return c.name
}

// Generate runs one completion and returns the first choice's text.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}

	resp, err := c.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrGeneration, c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: empty response", ErrGeneration, c.name)
	}

	return resp.Choices[0].Content, nil
}

// TestConnection issues a minimal completion to verify the provider is
// reachable and the credentials work.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.Generate(ctx, "You are a connectivity check.", "Reply with OK.")
	return err
}
