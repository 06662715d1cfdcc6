package questiongen

import (
	"errors"
	"testing"
)

func validQuestion() RawQuestion {
	return RawQuestion{
		Question:      "What is 2 + 2?",
		CorrectAnswer: "4",
		Distractors:   []string{"3", "5", "22"},
		Explanation:   "Two plus two is four.",
	}
}

func TestCheckStructure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawQuestion)
		ok     bool
	}{
		{"valid", func(*RawQuestion) {}, true},
		{"empty question", func(q *RawQuestion) { q.Question = "  " }, false},
		{"empty answer", func(q *RawQuestion) { q.CorrectAnswer = "" }, false},
		{"empty explanation", func(q *RawQuestion) { q.Explanation = "" }, false},
		{"two distractors", func(q *RawQuestion) { q.Distractors = q.Distractors[:2] }, false},
		{"four distractors", func(q *RawQuestion) { q.Distractors = append(q.Distractors, "6") }, false},
		{"distractor equals answer", func(q *RawQuestion) { q.Distractors[1] = " 4 " }, false},
		{"duplicate distractors", func(q *RawQuestion) { q.Distractors[2] = "3" }, false},
		{"case-only duplicate", func(q *RawQuestion) {
			q.CorrectAnswer, q.Distractors = "Yes", []string{"yes", "no", "maybe"}
		}, false},
		{"empty distractor", func(q *RawQuestion) { q.Distractors[0] = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			err := CheckStructure([]RawQuestion{validQuestion(), q})
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var bad *ErrMalformedOutput
			if !errors.As(err, &bad) {
				t.Fatalf("err = %v, want ErrMalformedOutput", err)
			}
			if bad.Index != 1 {
				t.Errorf("Index = %d, want 1", bad.Index)
			}
		})
	}
}

func TestCheckStructure_Empty(t *testing.T) {
	var bad *ErrMalformedOutput
	if err := CheckStructure(nil); !errors.As(err, &bad) || bad.Index != -1 {
		t.Fatalf("err = %v, want batch-level ErrMalformedOutput", err)
	}
}
