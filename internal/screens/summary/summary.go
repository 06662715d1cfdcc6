package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbank/internal/quizbank"
	"github.com/abhisek/quizbank/internal/router"
	"github.com/abhisek/quizbank/internal/screen"
	"github.com/abhisek/quizbank/internal/store"
	"github.com/abhisek/quizbank/internal/ui/layout"
	"github.com/abhisek/quizbank/internal/ui/theme"
)

// Result is what the quiz screen hands over once a quiz is recorded.
type Result struct {
	BankID        int
	Difficulty    float64
	Score         quizbank.Score
	MasteryChange float64
	Source        quizbank.Source
	Generation    store.GenerationSource

	// Err is set when the outcome could not be written to the ledger.
	Err error
}

// SummaryScreen shows the score of a finished quiz.
type SummaryScreen struct {
	result Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

func New(result Result) *SummaryScreen {
	return &SummaryScreen{result: result}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
		{Key: "Esc", Description: "Done"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.result
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString(center(theme.Title.Render("Quiz complete!")))
	b.WriteString("\n\n")

	b.WriteString(center(theme.Body.Render(fmt.Sprintf(
		"Correct: %d/%d        Score: %.0f%%",
		r.Score.Correct, r.Score.Total, r.Score.Percentage))))
	b.WriteString("\n\n")

	change := fmt.Sprintf("Mastery change: %+.2f", r.MasteryChange)
	if r.MasteryChange > 0 {
		change = theme.Correct.Render(change)
	} else {
		change = theme.Muted.Render(change)
	}
	b.WriteString(center(change))
	b.WriteString("\n")
	b.WriteString(center(theme.Hint.Render(quizbank.ImprovementMessage(r.MasteryChange))))
	b.WriteString("\n\n")

	b.WriteString(center(theme.Muted.Render(fmt.Sprintf(
		"Bank #%d  difficulty %.2f  %s", r.BankID, r.Difficulty, bankOrigin(r)))))

	if r.Err != nil {
		b.WriteString("\n\n")
		b.WriteString(center(theme.Incorrect.Render("Result not saved: " + r.Err.Error())))
	}

	return layout.Centered(b.String(), width, height)
}

func bankOrigin(r Result) string {
	if r.Source == quizbank.SourceReused {
		return "reused bank"
	}
	if r.Generation == store.SourceTemplate {
		return "new bank (template questions)"
	}
	return "new bank"
}
