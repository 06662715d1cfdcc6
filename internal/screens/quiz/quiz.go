package quiz

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizbank/internal/quizbank"
	"github.com/abhisek/quizbank/internal/router"
	"github.com/abhisek/quizbank/internal/screen"
	"github.com/abhisek/quizbank/internal/screens/summary"
	"github.com/abhisek/quizbank/internal/store"
	"github.com/abhisek/quizbank/internal/ui/components"
	"github.com/abhisek/quizbank/internal/ui/layout"
	"github.com/abhisek/quizbank/internal/ui/theme"
)

// Allocator hands out a bank for a quiz request.
type Allocator interface {
	Allocate(ctx context.Context, req quizbank.Request) (*quizbank.Allocation, error)
}

// Recorder grades answers and writes the outcome to the ledger.
type Recorder interface {
	Complete(ctx context.Context, studentID, bankID int, answers map[int]store.Option, masteryChange float64) (quizbank.Score, error)
}

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseFeedback
	phaseSaving
	phaseFailed
)

// QuizScreen allocates a bank, walks the student through its questions
// and records the result.
type QuizScreen struct {
	ctx      context.Context
	alloc    Allocator
	recorder Recorder
	req      quizbank.Request
	mastery  float64

	phase      phase
	allocation *quizbank.Allocation
	current    int
	choice     components.MultiChoice
	answers    map[int]store.Option
	err        error
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a quiz for req. mastery is the student's mastery of the
// objective before the quiz and feeds the recorded mastery change.
func New(ctx context.Context, alloc Allocator, recorder Recorder, req quizbank.Request, mastery float64) *QuizScreen {
	return &QuizScreen{
		ctx:      ctx,
		alloc:    alloc,
		recorder: recorder,
		req:      req,
		mastery:  mastery,
		answers:  make(map[int]store.Option),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.allocate()
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAnswering:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "A-D/Enter", Description: "Answer"},
			{Key: "Esc", Description: "Quit"},
		}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case phaseFailed:
		return []layout.KeyHint{{Key: "any key", Description: "Exit"}}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (s *QuizScreen) allocate() tea.Cmd {
	ctx, alloc, req := s.ctx, s.alloc, s.req
	return func() tea.Msg {
		a, err := alloc.Allocate(ctx, req)
		return allocatedMsg{Alloc: a, Err: err}
	}
}

func (s *QuizScreen) complete() tea.Cmd {
	ctx, rec := s.ctx, s.recorder
	studentID, bankID := s.req.StudentID, s.allocation.BankID
	answers := make(map[int]store.Option, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	change := s.masteryChange()
	return func() tea.Msg {
		score, err := rec.Complete(ctx, studentID, bankID, answers, change)
		return completedMsg{Score: score, Err: err}
	}
}

func (s *QuizScreen) masteryChange() float64 {
	score := quizbank.Grade(s.allocation.Questions, s.answers)
	return quizbank.MasteryChange(s.mastery, score.Percentage, s.allocation.Difficulty)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case allocatedMsg:
		if msg.Err != nil {
			s.phase, s.err = phaseFailed, msg.Err
			return s, nil
		}
		s.allocation = msg.Alloc
		if len(msg.Alloc.Questions) == 0 {
			s.phase, s.err = phaseFailed, fmt.Errorf("bank %d has no questions", msg.Alloc.BankID)
			return s, nil
		}
		s.phase = phaseAnswering
		s.choice = components.NewMultiChoice(msg.Alloc.Questions[0])
		return s, nil

	case completedMsg:
		res := summary.Result{
			BankID:        s.allocation.BankID,
			Difficulty:    s.allocation.Difficulty,
			Score:         msg.Score,
			MasteryChange: s.masteryChange(),
			Source:        s.allocation.Source,
			Generation:    s.allocation.Generation,
			Err:           msg.Err,
		}
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: summary.New(res)} }

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch s.phase {
	case phaseFailed:
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case phaseAnswering:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		s.choice, _ = s.choice.Update(msg)
		if s.choice.Submitted {
			q := s.allocation.Questions[s.current]
			s.answers[q.ID] = s.choice.Chosen
			s.phase = phaseFeedback
		}
		return s, nil

	case phaseFeedback:
		s.current++
		if s.current < len(s.allocation.Questions) {
			s.choice = components.NewMultiChoice(s.allocation.Questions[s.current])
			s.phase = phaseAnswering
			return s, nil
		}
		s.phase = phaseSaving
		return s, s.complete()
	}
	return s, nil
}

func (s *QuizScreen) View(width, height int) string {
	switch s.phase {
	case phaseLoading:
		return layout.Centered(theme.Hint.Render("Preparing your quiz..."), width, height)
	case phaseSaving:
		return layout.Centered(theme.Hint.Render("Saving your result..."), width, height)
	case phaseFailed:
		return layout.Centered(theme.Incorrect.Render("Could not start the quiz: "+s.err.Error()), width, height)
	}

	cardWidth := min(width-4, 76)
	total := len(s.allocation.Questions)

	var b strings.Builder
	b.WriteString(components.NewProgressBar(s.current, total, cardWidth).View())
	b.WriteString("\n\n")
	b.WriteString(s.choice.View())

	if s.phase == phaseFeedback {
		q := s.allocation.Questions[s.current]
		b.WriteString("\n")
		if s.choice.IsCorrect() {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Not quite. The answer is %s.", q.Correct)))
		}
		if q.Explanation != "" {
			b.WriteString("\n\n")
			b.WriteString(theme.Hint.Render(q.Explanation))
		}
	}

	card := theme.Card.Width(cardWidth).Render(b.String())
	return layout.Centered(card, width, height)
}
