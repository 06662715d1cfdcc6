package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/store"
	"github.com/abhisek/quizbank/internal/ui/theme"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect and maintain quiz banks",
}

var bankShowCmd = &cobra.Command{
	Use:   "show <bank-id>",
	Short: "Print a bank with answers and explanations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		b, err := e.store.Banks().Bank(ctx, id)
		if err != nil {
			return fmt.Errorf("get bank: %w", err)
		}
		qs, err := e.store.Banks().BankQuestions(ctx, id)
		if err != nil {
			return fmt.Errorf("get questions: %w", err)
		}

		status := "active"
		if !b.IsActive {
			status = "inactive"
		}
		fmt.Printf("Bank:        %d (%s)\n", b.ID, status)
		fmt.Printf("Objective:   %d\n", b.ObjectiveID)
		fmt.Printf("Difficulty:  %.2f\n", b.Difficulty)
		fmt.Printf("Source:      %s\n", b.Source)
		fmt.Printf("Used:        %d times, last %s\n", b.UsageCount, formatTime(b.LastUsed))
		fmt.Printf("Created:     %s\n\n", formatTime(&b.CreatedAt))

		for _, q := range qs {
			fmt.Printf("%d. %s  %s\n", q.Order, q.Text, theme.Muted.Render("["+string(q.Cognitive)+"]"))
			for i, opt := range q.Options {
				line := fmt.Sprintf("   %s) %s", store.Options[i], opt)
				if store.Options[i] == q.Correct {
					line = theme.Correct.Render(line)
				}
				fmt.Println(line)
			}
			if q.Explanation != "" {
				fmt.Println(theme.Hint.Render("   " + q.Explanation))
			}
			fmt.Println()
		}
		return nil
	},
}

var bankDeactivateCmd = &cobra.Command{
	Use:   "deactivate <bank-id>",
	Short: "Stop handing out a bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.Banks().DeactivateBank(cmd.Context(), id); err != nil {
			return fmt.Errorf("deactivate bank: %w", err)
		}
		e.log.Info("bank deactivated", "bank", id)
		fmt.Printf("Bank %d deactivated.\n", id)
		return nil
	},
}

var bankVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Deactivate banks whose question links are incomplete",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ids, err := e.store.Banks().VerifyIntegrity(cmd.Context())
		if err != nil {
			return fmt.Errorf("verify banks: %w", err)
		}
		if len(ids) == 0 {
			fmt.Println("All active banks are intact.")
			return nil
		}
		e.log.Warn("deactivated inconsistent banks", "banks", ids)
		fmt.Printf("Deactivated %d bank(s): %v\n", len(ids), ids)
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankShowCmd, bankDeactivateCmd, bankVerifyCmd)
}
