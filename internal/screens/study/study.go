package study

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbank/internal/router"
	"github.com/abhisek/quizbank/internal/screen"
	"github.com/abhisek/quizbank/internal/tutor"
	"github.com/abhisek/quizbank/internal/ui/components"
	"github.com/abhisek/quizbank/internal/ui/layout"
	"github.com/abhisek/quizbank/internal/ui/theme"
)

const inputLimit = 500

// Responder produces the tutor's side of the conversation.
type Responder interface {
	Respond(ctx context.Context, turn tutor.Turn) tutor.Reply
}

// replyMsg carries the tutor's answer to the last student message.
type replyMsg struct {
	Reply tutor.Reply
}

// StudyScreen is a chat with the tutor about one objective.
type StudyScreen struct {
	ctx       context.Context
	responder Responder
	objective string

	history []tutor.Message
	input   components.TextInput
	waiting bool
	last    *tutor.Reply
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)

func New(ctx context.Context, responder Responder, objectiveText string) *StudyScreen {
	return &StudyScreen{
		ctx:       ctx,
		responder: responder,
		objective: objectiveText,
		input:     components.NewTextInput("Ask a question or answer the tutor...", inputLimit),
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *StudyScreen) Title() string {
	return "Study"
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Esc", Description: "Finish"},
	}
}

// History returns the conversation so far.
func (s *StudyScreen) History() []tutor.Message {
	return s.history
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.waiting = false
		s.last = &msg.Reply
		s.history = append(s.history, tutor.Message{Speaker: tutor.SpeakerTutor, Content: msg.Reply.Message})
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			return s, s.send()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *StudyScreen) send() tea.Cmd {
	text := s.input.Value()
	if text == "" || s.waiting {
		return nil
	}
	turn := tutor.Turn{
		ObjectiveText:  s.objective,
		StudentMessage: text,
		History:        append([]tutor.Message(nil), s.history...),
	}
	s.history = append(s.history, tutor.Message{Speaker: tutor.SpeakerStudent, Content: text})
	s.input.Reset()
	s.waiting = true

	ctx, r := s.ctx, s.responder
	return func() tea.Msg {
		return replyMsg{Reply: r.Respond(ctx, turn)}
	}
}

func (s *StudyScreen) View(width, height int) string {
	innerWidth := max(width-4, 20)
	s.input.SetWidth(innerWidth - 4)

	var status string
	switch {
	case s.waiting:
		status = theme.Hint.Render("Tutor is thinking...")
	case s.last != nil:
		status = theme.Muted.Render(fmt.Sprintf("%s  comprehension %.0f%%",
			strings.ReplaceAll(string(s.last.Technique), "_", " "), s.last.Comprehension*100))
		if s.last.Source == tutor.SourceFallback {
			status += theme.Muted.Render("  (offline)")
		}
	}

	head := theme.Subtitle.Render("Objective: ") + theme.Body.Render(s.objective)
	prompt := s.input.View()

	chatHeight := max(height-lipgloss.Height(head)-lipgloss.Height(prompt)-3, 1)
	chat := s.renderChat(innerWidth, chatHeight)

	return lipgloss.NewStyle().Padding(0, 2).Render(
		strings.Join([]string{head, "", chat, status, prompt}, "\n"))
}

// renderChat renders the most recent messages that fit in height lines.
func (s *StudyScreen) renderChat(width, height int) string {
	if len(s.history) == 0 {
		return theme.Hint.Render("Say hello to start studying.")
	}

	wrap := lipgloss.NewStyle().Width(width)
	var blocks []string
	used := 0
	for i := len(s.history) - 1; i >= 0; i-- {
		m := s.history[i]
		label := theme.TutorLabel.Render("Tutor")
		if m.Speaker == tutor.SpeakerStudent {
			label = theme.StudentLabel.Render("You")
		}
		block := label + "\n" + wrap.Render(theme.Body.Render(m.Content))
		h := lipgloss.Height(block) + 1
		if used+h > height && len(blocks) > 0 {
			break
		}
		used += h
		blocks = append([]string{block}, blocks...)
	}
	return strings.Join(blocks, "\n\n")
}
