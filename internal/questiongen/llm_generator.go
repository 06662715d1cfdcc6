package questiongen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/quizbank/internal/llm"
)

// Config controls the LLM generator.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the recommended generation settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2000,
		Temperature: 0.7,
	}
}

// LLMGenerator produces question sets with a language model.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// NewLLMGenerator returns a generator backed by provider.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

type questionSet struct {
	Questions []RawQuestion `json:"questions"`
}

func (g *LLMGenerator) Generate(ctx context.Context, in Input) ([]RawQuestion, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(in, uuid.NewString())},
		},
		Schema:      QuestionSetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, &ErrGeneration{Err: err}
	}

	var set questionSet
	if err := json.Unmarshal(resp.Content, &set); err != nil {
		return nil, &ErrMalformedOutput{Index: -1, Reason: fmt.Sprintf("decode: %v", err)}
	}
	if err := CheckStructure(set.Questions); err != nil {
		return nil, err
	}
	if len(set.Questions) > in.Count {
		set.Questions = set.Questions[:in.Count]
	}
	return set.Questions, nil
}
