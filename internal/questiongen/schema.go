package questiongen

import "github.com/abhisek/quizbank/internal/llm"

// QuestionSetSchema is the structured output requested from the model.
var QuestionSetSchema = &llm.Schema{
	Name:        "quiz-question-set",
	Description: "A set of multiple-choice questions for one learning objective",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question stem, self-contained",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "Text of the single correct option",
						},
						"distractors": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    3,
							"maxItems":    3,
							"description": "Exactly three plausible but wrong options",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct answer is right",
						},
					},
					"required":             []any{"question", "correct_answer", "distractors", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
