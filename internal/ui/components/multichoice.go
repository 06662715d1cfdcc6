package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizbank/internal/store"
	"github.com/abhisek/quizbank/internal/ui/theme"
)

// MultiChoice is a four-option question selector. Options can be picked with
// the arrow keys or by pressing their letter.
type MultiChoice struct {
	Question  string
	Options   [4]string
	Correct   store.Option
	Selected  int
	Submitted bool
	Chosen    store.Option
}

// NewMultiChoice creates a selector for a stored question.
func NewMultiChoice(q store.Question) MultiChoice {
	return MultiChoice{
		Question: q.Text,
		Options:  q.Options,
		Correct:  q.Correct,
	}
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.Chosen = store.Options[m.Selected]
	case "a", "b", "c", "d", "A", "B", "C", "D":
		m.Selected = store.Option(strings.ToUpper(key)).Index()
		m.Submitted = true
		m.Chosen = store.Options[m.Selected]
	}

	return m, nil
}

// View renders the question and options. After submission the correct
// option is highlighted and a wrong choice is marked.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		letter := store.Options[i]
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, letter, opt)

		switch {
		case m.Submitted && letter == m.Correct:
			line = theme.Correct.Render(line)
		case m.Submitted && letter == m.Chosen:
			line = theme.Incorrect.Render(line)
		case m.Submitted:
			line = theme.Muted.Render(line)
		case i == m.Selected:
			line = theme.Selected.Render(line)
		default:
			line = theme.Unselected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// IsCorrect returns true if the user chose the correct answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.Chosen == m.Correct
}
