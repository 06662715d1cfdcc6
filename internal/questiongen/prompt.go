package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert educational assessment designer. You write high-quality, pedagogically sound multiple-choice questions.

Rules:
- Each question tests understanding, not just recall.
- Give exactly one correct answer and exactly three distractors. All four options must be different.
- Distractors must be believable but clearly wrong to someone who understands the concept. Prefer common misconceptions.
- Include a brief explanation of why the correct answer is right.
- Match the requested difficulty level.
- Every question in the set must be different, and the set must differ from previous generations.
- Do not label options with letters; they are shuffled after generation.`

// buildUserMessage renders the request. generationID makes repeated calls
// for the same objective produce different sets.
func buildUserMessage(in Input, generationID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learning objective: %q\n", in.ObjectiveText)
	fmt.Fprintf(&b, "Difficulty: %s (%.2f on a 0-1 scale)\n", Level(in.Difficulty), in.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", in.Count)
	fmt.Fprintf(&b, "Generation ID: %s\n", generationID)
	return b.String()
}
