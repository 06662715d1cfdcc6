package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/ui/theme"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the usage ledger",
}

var ledgerHistoryCmd = &cobra.Command{
	Use:   "history <student-id>",
	Short: "List the banks a student has been given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := parseID(args[0])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.ledger().History(cmd.Context(), student)
		if err != nil {
			return fmt.Errorf("ledger history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Printf("Student %d has no assignments.\n", student)
			return nil
		}

		printHeader("%-5s  %-9s  %10s  %-16s  %6s  %7s", "Bank", "Objective", "Difficulty", "Assigned", "Score", "Mastery")
		for _, en := range entries {
			score, change := theme.Muted.Render("open"), ""
			if en.Completed() {
				score = fmt.Sprintf("%5.0f%%", *en.ScorePercent)
				change = fmt.Sprintf("%+.2f", *en.MasteryChange)
			}
			fmt.Printf("%-5d  %-9d  %10.2f  %-16s  %6s  %7s\n",
				en.BankID, en.ObjectiveID, en.Difficulty, formatTime(&en.AssignedAt), score, change)
		}
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerHistoryCmd)
}
