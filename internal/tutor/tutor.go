// Package tutor runs the conversational study mode: a short teaching reply
// for each student message about one learning objective.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizbank/internal/llm"
	"github.com/abhisek/quizbank/internal/logger"
)

// DefaultTimeout bounds one model call.
const DefaultTimeout = 30 * time.Second

// historyWindow is how many past messages are replayed to the model.
const historyWindow = 6

// Speaker identifies who wrote a history message.
type Speaker string

const (
	SpeakerStudent Speaker = "student"
	SpeakerTutor   Speaker = "tutor"
)

// Message is one line of the study conversation.
type Message struct {
	Speaker Speaker
	Content string
}

// Turn is one student message in context.
type Turn struct {
	ObjectiveText  string
	StudentMessage string
	History        []Message
}

// Source says whether a reply came from the model or the built-in fallback.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Reply is the tutor's answer to a Turn.
type Reply struct {
	Message        string
	Technique      Technique
	Comprehension  float64
	NextSuggestion string
	Source         Source
}

// Tutor answers study turns with a language model, falling back to a
// canned contextual reply when no model is configured or the call fails.
type Tutor struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logger.Logger
}

// New creates a Tutor. provider may be nil for offline use.
func New(provider llm.Provider, timeout time.Duration, log *logger.Logger) *Tutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Tutor{provider: provider, timeout: timeout, log: log}
}

// Respond never fails; every error path ends in the fallback reply.
func (t *Tutor) Respond(ctx context.Context, turn Turn) Reply {
	if t.provider == nil {
		return Fallback(turn)
	}
	r, err := t.ask(ctx, turn)
	if err != nil {
		t.log.Warn("tutor model failed, using fallback", "objective", turn.ObjectiveText, "error", err)
		return Fallback(turn)
	}
	return r
}

type modelReply struct {
	Message            string  `json:"message"`
	Technique          string  `json:"technique"`
	ComprehensionLevel float64 `json:"comprehension_level"`
	NextSuggestion     string  `json:"next_suggestion"`
}

func (t *Tutor) ask(ctx context.Context, turn Turn) (Reply, error) {
	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, llm.PurposeTutor), t.timeout)
	defer cancel()

	resp, err := t.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildPrompt(turn)}},
		Schema:      ReplySchema,
		MaxTokens:   800,
		Temperature: 0.7,
	})
	if err != nil {
		return Reply{}, err
	}

	var mr modelReply
	if err := json.Unmarshal(resp.Content, &mr); err != nil {
		return Reply{}, fmt.Errorf("decode tutor reply: %w", err)
	}
	if strings.TrimSpace(mr.Message) == "" {
		return Reply{}, errors.New("tutor reply has an empty message")
	}

	tech := Technique(mr.Technique)
	if !tech.Valid() {
		tech = DetectTechnique(mr.Message)
	}
	return Reply{
		Message:        strings.TrimSpace(mr.Message),
		Technique:      tech,
		Comprehension:  clamp01(mr.ComprehensionLevel),
		NextSuggestion: mr.NextSuggestion,
		Source:         SourceAI,
	}, nil
}

// Fallback builds the offline reply for a turn.
func Fallback(turn Turn) Reply {
	obj := turn.ObjectiveText
	var msg string
	switch {
	case len(turn.History) == 0:
		msg = fmt.Sprintf("Let's dive into %q! Here's something fascinating about this topic that will get us started...", obj)
	case strings.Contains(strings.ToLower(turn.StudentMessage), "help"):
		msg = fmt.Sprintf("I'm here to help you understand %q. Let me break this down into simpler parts for you.", obj)
	default:
		msg = fmt.Sprintf("That's a great response! Let's continue exploring %q together.", obj)
	}
	return Reply{
		Message:        msg,
		Technique:      TechniqueFallback,
		Comprehension:  Assess(turn.StudentMessage, len(turn.History)),
		NextSuggestion: "Tell me what you're thinking about this.",
		Source:         SourceFallback,
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
