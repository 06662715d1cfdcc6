package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizbank/internal/store"
)

func testQuestion() store.Question {
	return store.Question{
		ID:      1,
		Text:    "Which is a variable?",
		Options: [4]string{"x", "3", "+", "="},
		Correct: store.OptionA,
	}
}

func TestMultiChoice_ArrowsAndEnter(t *testing.T) {
	m := NewMultiChoice(testQuestion())
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.Submitted || m.Chosen != store.OptionB {
		t.Errorf("Submitted=%v Chosen=%q", m.Submitted, m.Chosen)
	}
	if m.IsCorrect() {
		t.Error("B should be wrong")
	}
}

func TestMultiChoice_LetterKey(t *testing.T) {
	m := NewMultiChoice(testQuestion())
	m, _ = m.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if !m.IsCorrect() {
		t.Errorf("pressing a should submit the correct answer, got %q", m.Chosen)
	}

	// Input after submission is ignored.
	m, _ = m.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	if m.Chosen != store.OptionA {
		t.Errorf("Chosen changed after submit: %q", m.Chosen)
	}
}

func TestMultiChoice_SelectionStaysInRange(t *testing.T) {
	m := NewMultiChoice(testQuestion())
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 0 {
		t.Errorf("Selected = %d after up at top", m.Selected)
	}
	for range 6 {
		m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	if m.Selected != 3 {
		t.Errorf("Selected = %d after many downs", m.Selected)
	}
}

func TestMultiChoice_View(t *testing.T) {
	view := NewMultiChoice(testQuestion()).View()
	for _, want := range []string{"Which is a variable?", "A)", "D)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 10, 0},
		{5, 10, 0.5},
		{12, 10, 1},
		{3, 0, 0},
	}
	for _, tt := range tests {
		p := NewProgressBar(tt.done, tt.total, 40)
		if got := p.Fraction(); got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
	if !strings.Contains(NewProgressBar(2, 5, 40).View(), "2/5") {
		t.Error("expected the count label in the bar")
	}
}

func TestTextInput_Value(t *testing.T) {
	ti := NewTextInput("say something", 10)
	for _, r := range "  hi  " {
		ti, _ = ti.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if got := ti.Value(); got != "hi" {
		t.Errorf("Value = %q, want %q", got, "hi")
	}
	ti.Reset()
	if ti.Value() != "" {
		t.Error("Reset should clear the input")
	}
}
