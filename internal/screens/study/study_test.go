package study

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizbank/internal/router"
	"github.com/abhisek/quizbank/internal/tutor"
)

type stubResponder struct {
	turns []tutor.Turn
}

func (r *stubResponder) Respond(_ context.Context, turn tutor.Turn) tutor.Reply {
	r.turns = append(r.turns, turn)
	return tutor.Reply{
		Message:       "What do you already know about fractions?",
		Technique:     tutor.TechniqueSocratic,
		Comprehension: 0.4,
		Source:        tutor.SourceAI,
	}
}

func typeText(s *StudyScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestStudy_SendAndReply(t *testing.T) {
	resp := &stubResponder{}
	s := New(context.Background(), resp, "Add fractions with like denominators")
	s.Init()

	typeText(s, "hi")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, s.waiting)
	assert.Contains(t, s.View(80, 24), "thinking")

	s.Update(cmd())
	require.Len(t, resp.turns, 1)
	assert.Equal(t, "hi", resp.turns[0].StudentMessage)
	assert.Equal(t, "Add fractions with like denominators", resp.turns[0].ObjectiveText)
	assert.Empty(t, resp.turns[0].History)

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, tutor.SpeakerStudent, hist[0].Speaker)
	assert.Equal(t, tutor.SpeakerTutor, hist[1].Speaker)
	assert.False(t, s.waiting)

	view := s.View(80, 24)
	assert.Contains(t, view, "fractions")
	assert.Contains(t, view, "socratic questioning")
}

func TestStudy_HistoryPassedOnNextTurn(t *testing.T) {
	resp := &stubResponder{}
	s := New(context.Background(), resp, "Objective")

	typeText(s, "one")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())

	typeText(s, "two")
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())

	require.Len(t, resp.turns, 2)
	assert.Len(t, resp.turns[1].History, 2)
	assert.Len(t, s.History(), 4)
}

func TestStudy_EmptyInputIgnored(t *testing.T) {
	s := New(context.Background(), &stubResponder{}, "Objective")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, s.History())
}

func TestStudy_EscFinishes(t *testing.T) {
	s := New(context.Background(), &stubResponder{}, "Objective")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
