package llmclient

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderFake   = "fake"
)

// Config selects and parameterises a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

// New builds a client for cfg. An empty provider resolves to gemini when an
// API key is present and to the offline fake otherwise.
func New(ctx context.Context, cfg Config, mws ...Middleware) (LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderFake
		if strings.TrimSpace(cfg.APIKey) != "" {
			provider = ProviderGemini
		}
	}
	var inner LLMClient
	switch provider {
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		inner = g
	case ProviderFake:
		inner = NewFakeClient()
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	return Wrap(inner, mws...), nil
}
