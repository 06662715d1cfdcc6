package summary

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizbank/internal/quizbank"
	"github.com/abhisek/quizbank/internal/router"
	"github.com/abhisek/quizbank/internal/store"
)

func testResult() Result {
	return Result{
		BankID:        7,
		Difficulty:    0.5,
		Score:         quizbank.Score{Correct: 3, Total: 4, Percentage: 75},
		MasteryChange: 0.12,
		Source:        quizbank.SourceCreated,
		Generation:    store.SourceTemplate,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testResult())
	if s.Title() != "Quiz Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Quiz Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	view := New(testResult()).View(80, 24)
	for _, want := range []string{"3/4", "75%", "+0.12", "Excellent progress", "template"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_ShowsSaveError(t *testing.T) {
	r := testResult()
	r.Err = errors.New("ledger locked")
	view := New(r).View(80, 24)
	if !strings.Contains(view, "ledger locked") {
		t.Error("expected the save error in the view")
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{
		{Code: tea.KeyEnter},
		{Code: tea.KeyEscape},
	} {
		s := New(testResult())
		_, cmd := s.Update(key)
		if cmd == nil {
			t.Fatalf("expected a command on %s", key.String())
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("%s: expected PopScreenMsg", key.String())
		}
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	if hints := New(testResult()).KeyHints(); len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
