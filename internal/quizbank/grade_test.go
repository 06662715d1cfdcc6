package quizbank

import (
	"math"
	"testing"

	"github.com/abhisek/quizbank/internal/store"
)

func TestGrade(t *testing.T) {
	qs := []store.Question{
		{ID: 1, Correct: store.OptionA},
		{ID: 2, Correct: store.OptionC},
		{ID: 3, Correct: store.OptionD},
		{ID: 4, Correct: store.OptionB},
	}

	tests := []struct {
		name    string
		answers map[int]store.Option
		correct int
		pct     float64
	}{
		{"all right", map[int]store.Option{1: "A", 2: "C", 3: "D", 4: "B"}, 4, 100},
		{"half", map[int]store.Option{1: "A", 2: "C", 3: "A", 4: "A"}, 2, 50},
		{"unanswered count as wrong", map[int]store.Option{1: "A"}, 1, 25},
		{"none", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Grade(qs, tt.answers)
			if s.Correct != tt.correct || s.Total != 4 || s.Percentage != tt.pct {
				t.Fatalf("Grade = %+v, want %d/4 (%v%%)", s, tt.correct, tt.pct)
			}
		})
	}

	if s := Grade(nil, nil); s.Percentage != 0 || s.Total != 0 {
		t.Fatalf("empty quiz = %+v, want zero score", s)
	}
}

func TestAdaptiveDifficulty(t *testing.T) {
	tests := []struct{ mastery, want float64 }{
		{0, 0.2},
		{0.3, 0.5},
		{0.8, 0.9},
		{-0.5, 0.1},
	}
	for _, tt := range tests {
		if got := AdaptiveDifficulty(tt.mastery); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AdaptiveDifficulty(%v) = %v, want %v", tt.mastery, got, tt.want)
		}
	}
}

func TestMasteryChange(t *testing.T) {
	tests := []struct {
		name                 string
		current, score, diff float64
		want                 float64
	}{
		{"perfect from zero is capped", 0, 100, 0.5, 0.3},
		{"matches current", 0.5, 50, 0.5, 0.05},
		{"poor score", 0.8, 0, 0.2, -0.22},
		{"floor", 1, 0, 0, -0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MasteryChange(tt.current, tt.score, tt.diff); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MasteryChange = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImprovementMessage(t *testing.T) {
	if ImprovementMessage(0.2) == ImprovementMessage(-0.2) {
		t.Error("positive and negative changes should read differently")
	}
	if got := ImprovementMessage(0.07); got != "Good work! You're making steady progress." {
		t.Errorf("ImprovementMessage(0.07) = %q", got)
	}
}
