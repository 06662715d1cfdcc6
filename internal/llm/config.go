package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	ProviderNone       = "none"
)

// Config selects and configures the question-generation model.
type Config struct {
	// Provider is one of the Provider* constants. Empty means "discover from
	// the standard API key variables".
	Provider string

	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig drives WithRetry. MaxAttempts counts the first call.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns model defaults with no provider selected.
func DefaultConfig() Config {
	return Config{
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o-mini"},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv reads QUIZBANK_* overrides and then, if no provider was named,
// falls back to the conventional OPENAI_API_KEY / ANTHROPIC_API_KEY /
// GEMINI_API_KEY / OPENROUTER_API_KEY variables in that order. With nothing
// found the provider is ProviderNone.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Provider = strings.ToLower(strings.TrimSpace(os.Getenv("QUIZBANK_LLM_PROVIDER")))

	cfg.OpenAI.APIKey = firstEnv("QUIZBANK_OPENAI_API_KEY", "OPENAI_API_KEY")
	cfg.Anthropic.APIKey = firstEnv("QUIZBANK_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	cfg.Gemini.APIKey = firstEnv("QUIZBANK_GEMINI_API_KEY", "GEMINI_API_KEY")
	cfg.OpenRouter.APIKey = firstEnv("QUIZBANK_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")

	if m := os.Getenv("QUIZBANK_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("QUIZBANK_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	if m := os.Getenv("QUIZBANK_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}
	if m := os.Getenv("QUIZBANK_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}
	if m := os.Getenv("QUIZBANK_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	if cfg.Provider == "" {
		cfg.Provider = cfg.discover()
	}
	return cfg
}

// discover picks the first provider whose key is present.
func (c Config) discover() string {
	switch {
	case c.OpenAI.APIKey != "":
		return ProviderOpenAI
	case c.Anthropic.APIKey != "":
		return ProviderAnthropic
	case c.Gemini.APIKey != "":
		return ProviderGemini
	case c.OpenRouter.APIKey != "":
		return ProviderOpenRouter
	}
	return ProviderNone
}

// Validate checks that the selected provider has a credential.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for the openai provider", ErrMissingAPIKey)
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY is required for the anthropic provider", ErrMissingAPIKey)
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for the gemini provider", ErrMissingAPIKey)
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("%w: OPENROUTER_API_KEY is required for the openrouter provider", ErrMissingAPIKey)
		}
	case ProviderMock, ProviderNone:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
