package tutor

import "strings"

// Technique names the teaching move a reply uses.
type Technique string

const (
	TechniqueIntroduction  Technique = "proactive_introduction"
	TechniqueSocratic      Technique = "socratic_questioning"
	TechniqueScaffolding   Technique = "scaffolding"
	TechniqueExample       Technique = "example_driven"
	TechniqueChallenge     Technique = "challenge_extension"
	TechniqueClarification Technique = "confusion_clarification"
	TechniqueReinforcement Technique = "positive_reinforcement"
	TechniqueExplanation   Technique = "explanation"
	TechniqueFallback      Technique = "simple_fallback"
)

// Techniques the model may choose from.
var Techniques = []Technique{
	TechniqueIntroduction,
	TechniqueSocratic,
	TechniqueScaffolding,
	TechniqueExample,
	TechniqueChallenge,
	TechniqueClarification,
}

func (t Technique) Valid() bool {
	for _, v := range Techniques {
		if v == t {
			return true
		}
	}
	return false
}

// DetectTechnique guesses the technique from reply text.
func DetectTechnique(reply string) Technique {
	text := strings.ToLower(reply)
	switch {
	case strings.Contains(text, "?") && (strings.Contains(text, "what do you think") || strings.Contains(text, "can you")):
		return TechniqueSocratic
	case containsAny(text, "example", "imagine", "like"):
		return TechniqueExample
	case containsAny(text, "step", "first", "then"):
		return TechniqueScaffolding
	case containsAny(text, "great", "excellent", "correct"):
		return TechniqueReinforcement
	default:
		return TechniqueExplanation
	}
}

var (
	confidentPhrases = []string{"i understand", "i think", "i believe", "makes sense", "i see", "so it means"}
	confusedPhrases  = []string{"confused", "don't understand", "don't get", "what does", "what is", "help", "explain"}
	engagedPhrases   = []string{"interesting", "cool", "wow", "really", "tell me more"}
)

// Assess scores how well a student seems to follow, in [0.1, 1], from
// phrasing cues in their message and how long the conversation has run.
func Assess(studentMessage string, historyLen int) float64 {
	msg := strings.ToLower(studentMessage)
	confident := containsAny(msg, confidentPhrases...)
	confused := containsAny(msg, confusedPhrases...)
	engaged := containsAny(msg, engagedPhrases...) || historyLen > 3
	question := strings.Contains(msg, "?") ||
		strings.HasPrefix(msg, "what") || strings.HasPrefix(msg, "how") || strings.HasPrefix(msg, "why")

	score := 0.5
	switch {
	case confident:
		score += 0.3
	case confused:
		score -= 0.2
	}
	if confused {
		score -= 0.3
	}
	if engaged {
		score += 0.1
	}
	if question {
		if confused {
			score -= 0.1
		} else {
			score += 0.1
		}
	}
	return min(max(score, 0.1), 1)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
