package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider performs a single model completion turn.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Config selects and configures a model provider.
type Config struct {
	Provider string
	Model    string

	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GeminiAPIKey    string
}

// NewProvider builds the configured provider. It returns ErrNotConfigured
// when the selected provider has no credentials, so callers can refuse
// requests before any model work starts.
func NewProvider(cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = detectProvider(cfg)
	}

	switch name {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%w: anthropic API key missing", ErrNotConfigured)
		}
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.Model), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: openai API key missing", ErrNotConfigured)
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: gemini API key missing", ErrNotConfigured)
		}
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.Model), nil
	case "":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func detectProvider(cfg Config) string {
	switch {
	case cfg.AnthropicAPIKey != "":
		return "anthropic"
	case cfg.OpenAIAPIKey != "":
		return "openai"
	case cfg.GeminiAPIKey != "":
		return "gemini"
	}
	return ""
}
