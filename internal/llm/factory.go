package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/quizbank/internal/logger"
	"github.com/abhisek/quizbank/internal/store"
)

// NewProvider builds the configured provider wrapped as
// caller → retry → logging → base. It returns ErrNoProvider when the
// configuration selects none, so callers can run template-only.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderNone:
		return nil, ErrNoProvider
	case ProviderMock:
		return NewMockProvider(), nil
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, events, log)
	return WithRetry(logged, cfg.Retry), nil
}
