package quizbank

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/quizbank/internal/questiongen"
	"github.com/abhisek/quizbank/internal/store"
)

// Shuffler permutes answer options. Safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a Shuffler drawing from src. A nil src seeds a PCG
// from the clock.
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	return &Shuffler{rng: rand.New(src)}
}

// Options places the correct answer and the three distractors into a
// uniformly random order and reports the slot now holding the answer.
func (s *Shuffler) Options(q questiongen.RawQuestion) ([4]string, store.Option) {
	opts := [4]string{q.CorrectAnswer}
	copy(opts[1:], q.Distractors)
	correct := 0

	s.mu.Lock()
	s.rng.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
	})
	s.mu.Unlock()

	return opts, store.Options[correct]
}

// CognitiveLevel derives the Bloom level from difficulty.
func CognitiveLevel(difficulty float64) store.CognitiveLevel {
	switch {
	case difficulty < 0.4:
		return store.CognitiveRemember
	case difficulty < 0.7:
		return store.CognitiveUnderstand
	default:
		return store.CognitiveApply
	}
}

// prepare shuffles raw questions into their persisted form.
func (s *Shuffler) prepare(raw []questiongen.RawQuestion, difficulty float64) []store.NewQuestion {
	level := CognitiveLevel(difficulty)
	out := make([]store.NewQuestion, len(raw))
	for i, q := range raw {
		opts, correct := s.Options(q)
		out[i] = store.NewQuestion{
			Text:        q.Question,
			Options:     opts,
			Correct:     correct,
			Explanation: q.Explanation,
			Cognitive:   level,
		}
	}
	return out
}
