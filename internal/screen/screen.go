package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizbank/internal/ui/layout"
)

// Screen is one page of the terminal UI: the quiz, its summary or the
// study chat.
type Screen interface {
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content between header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
