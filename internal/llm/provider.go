package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single seam between quizbank and a hosted language model.
// Callers describe the exchange with a Request and receive JSON back.
type Provider interface {
	// Generate performs one completion. When req.Schema is set the returned
	// Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the configured model identifier.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	// System sets the model's role, e.g. "assessment designer" or "tutor".
	System string

	// Messages holds the conversation. Question generation sends a single
	// user turn; the study tutor replays recent history.
	Messages []Message

	// Schema, when non-nil, asks the provider for structured JSON output.
	Schema *Schema

	MaxTokens int

	// Temperature in [0,1]; zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "quiz-question-set". Anthropic and OpenAI use
	// it as the tool/format name; it is also the validation cache key.
	Name string

	Description string

	Definition map[string]any
}

// Response is a completed generation.
type Response struct {
	// Content is validated JSON when a Schema was requested, otherwise the
	// raw model text.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the call.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage is the token accounting for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
