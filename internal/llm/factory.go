package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and, when eventRepo is non-nil,
// logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	logger = nopIfNil(logger)
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic, logger)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI, logger)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter, logger)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini, logger)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	if eventRepo != nil {
		base = WithLogging(base, cfg.Provider, eventRepo, logger)
	}
	return WithRetry(base, cfg.Retry, logger), nil
}
