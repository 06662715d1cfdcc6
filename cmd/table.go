package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizbank/internal/ui/theme"
)

const ruleWidth = 72

func printSection(title string) {
	fmt.Println(theme.Title.Render(title))
	printRule()
}

func printRule() {
	fmt.Println(theme.TableRule.Render(strings.Repeat("─", ruleWidth)))
}

func printHeader(format string, cols ...any) {
	fmt.Println(theme.TableHeader.Render(fmt.Sprintf(format, cols...)))
	printRule()
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatCost(c float64) string {
	if c < 0.01 {
		return fmt.Sprintf("$%.4f", c)
	}
	return fmt.Sprintf("$%.2f", c)
}
