package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbank/internal/ui/theme"
)

// ProgressBar shows how far through a quiz the student is.
type ProgressBar struct {
	Done  int
	Total int
	Width int
}

// NewProgressBar creates a bar for done of total questions.
func NewProgressBar(done, total, width int) ProgressBar {
	return ProgressBar{Done: done, Total: total, Width: width}
}

// Fraction returns Done/Total clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	return max(0, min(1, f))
}

func (p ProgressBar) View() string {
	label := fmt.Sprintf("%d/%d", p.Done, p.Total)
	labelWidth := lipgloss.Width(label) + 2

	barWidth := max(p.Width-labelWidth, 4)
	filled := int(float64(barWidth) * p.Fraction())

	bar := lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	return bar + "  " + theme.Muted.Render(label)
}
