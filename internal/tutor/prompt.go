package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizbank/internal/llm"
)

const systemPrompt = `You are an expert tutor for students aged 12 and up. You actively teach toward mastery of one learning objective.

Principles:
- Take initiative. Open with an engaging hook, a surprising fact or a short scenario.
- Use Socratic questioning, scaffolding and concrete examples.
- Judge comprehension from the student's replies and adapt.
- Be encouraging but keep the student challenged.

Style:
- Plain words a 12 year old reads easily.
- At most 2-3 short sentences per reply.
- Explain any technical term you cannot avoid.`

// ReplySchema is the structured output requested from the model.
var ReplySchema = &llm.Schema{
	Name:        "tutor-reply",
	Description: "One short teaching reply with an assessment of the student",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "The reply to show the student, 2-3 sentences",
			},
			"technique": map[string]any{
				"type": "string",
				"enum": techniqueNames(),
			},
			"comprehension_level": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"next_suggestion": map[string]any{
				"type":        "string",
				"description": "What the student should do next",
			},
		},
		"required":             []any{"message", "technique", "comprehension_level", "next_suggestion"},
		"additionalProperties": false,
	},
}

func techniqueNames() []any {
	out := make([]any, len(Techniques))
	for i, t := range Techniques {
		out[i] = string(t)
	}
	return out
}

func buildPrompt(turn Turn) string {
	history := turn.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Learning objective: %q\n\n", turn.ObjectiveText)

	msg := turn.StudentMessage
	if strings.TrimSpace(msg) == "" {
		msg = "[starting new session]"
	}
	fmt.Fprintf(&b, "Student message: %q\n\n", msg)

	b.WriteString("Conversation so far:\n")
	if len(history) == 0 {
		b.WriteString("This is the start of a new study session.\n")
	}
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Speaker, m.Content)
	}
	b.WriteString("\n")

	if len(turn.History) == 0 {
		fmt.Fprintf(&b, "Start teaching now with one simple, fascinating fact or example about %q.", turn.ObjectiveText)
	} else {
		b.WriteString("Read the student's reply, adapt your teaching and keep guiding them toward the objective.")
	}
	return b.String()
}
