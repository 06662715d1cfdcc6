package quizbank

import "github.com/abhisek/quizbank/internal/store"

// Score is the outcome of grading one quiz.
type Score struct {
	Correct    int
	Total      int
	Percentage float64
}

// Grade scores answers (question id to chosen slot) against questions.
// Unanswered questions count as wrong.
func Grade(questions []store.Question, answers map[int]store.Option) Score {
	s := Score{Total: len(questions)}
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok && a == q.Correct {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Percentage = float64(s.Correct) * 100 / float64(s.Total)
	}
	return s
}

// AdaptiveDifficulty picks a quiz difficulty slightly above the student's
// current mastery, kept within [0.1, 0.9].
func AdaptiveDifficulty(mastery float64) float64 {
	return min(max(mastery+0.2, 0.1), 0.9)
}

// MasteryChange estimates how much a quiz moves a student's mastery, given
// the mastery before the quiz, the score percentage and the bank difficulty.
// Results are kept within [-0.3, 0.3].
func MasteryChange(current, scorePercent, difficulty float64) float64 {
	change := (scorePercent/100-current)*0.3 + difficulty*0.1
	return min(max(change, -0.3), 0.3)
}

// ImprovementMessage is the encouragement shown for a mastery change.
func ImprovementMessage(change float64) string {
	switch {
	case change > 0.1:
		return "Excellent progress! Your understanding has improved significantly."
	case change > 0.05:
		return "Good work! You're making steady progress."
	case change > 0:
		return "Nice job! Small improvements add up over time."
	case change > -0.05:
		return "Keep practicing! Every attempt helps you learn."
	default:
		return "Don't worry! This topic needs more study time. Try reviewing the material again."
	}
}
