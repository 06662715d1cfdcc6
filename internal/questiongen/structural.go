package questiongen

import (
	"strings"
	"unicode/utf8"
)

const (
	maxQuestionLen    = 600
	maxOptionLen      = 300
	maxExplanationLen = 1200
)

// CheckStructure verifies every item has non-empty text, exactly three
// distractors and four mutually distinct options.
func CheckStructure(qs []RawQuestion) error {
	if len(qs) == 0 {
		return &ErrMalformedOutput{Index: -1, Reason: "no questions"}
	}
	for i, q := range qs {
		if err := checkQuestion(q); err != "" {
			return &ErrMalformedOutput{Index: i, Reason: err}
		}
	}
	return nil
}

func checkQuestion(q RawQuestion) string {
	switch {
	case strings.TrimSpace(q.Question) == "":
		return "question is empty"
	case utf8.RuneCountInString(q.Question) > maxQuestionLen:
		return "question is too long"
	case strings.TrimSpace(q.CorrectAnswer) == "":
		return "correct_answer is empty"
	case strings.TrimSpace(q.Explanation) == "":
		return "explanation is empty"
	case utf8.RuneCountInString(q.Explanation) > maxExplanationLen:
		return "explanation is too long"
	case len(q.Distractors) != 3:
		return "want exactly 3 distractors"
	}

	seen := map[string]bool{normalize(q.CorrectAnswer): true}
	for _, d := range q.Distractors {
		key := normalize(d)
		if key == "" {
			return "distractor is empty"
		}
		if utf8.RuneCountInString(d) > maxOptionLen {
			return "option is too long"
		}
		if seen[key] {
			return "options are not distinct"
		}
		seen[key] = true
	}
	if utf8.RuneCountInString(q.CorrectAnswer) > maxOptionLen {
		return "option is too long"
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
