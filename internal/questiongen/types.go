package questiongen

import (
	"context"

	"github.com/abhisek/quizbank/internal/store"
)

// RawQuestion is one multiple-choice item as a generator produces it,
// before options are shuffled into lettered slots.
type RawQuestion struct {
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer"`
	Distractors   []string `json:"distractors"`
	Explanation   string   `json:"explanation"`
}

// Input is the generation request for one bank.
type Input struct {
	// ObjectiveText is the learning objective the questions assess.
	ObjectiveText string

	// Difficulty in [0,1].
	Difficulty float64

	// Count is the number of questions wanted. Generators may return fewer.
	Count int
}

// Generator produces raw questions for an objective.
type Generator interface {
	Generate(ctx context.Context, in Input) ([]RawQuestion, error)
}

// Result is what the fallback chain hands to the allocator.
type Result struct {
	Questions []RawQuestion

	// Source records which path produced Questions.
	Source store.GenerationSource

	// FallbackReason is the primary generator's failure when Source is
	// template because of an error; nil otherwise.
	FallbackReason error
}

// Level maps a difficulty scalar to the label used in prompts.
func Level(difficulty float64) string {
	switch {
	case difficulty < 0.4:
		return "beginner"
	case difficulty < 0.7:
		return "intermediate"
	default:
		return "advanced"
	}
}
