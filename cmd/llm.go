package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/stats"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := stats.NewReporter(e.store).RecentLLMRequests(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}

		printHeader("%-5s  %-19s  %-12s  %-24s  %6s  %6s  %6s  %s",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		for _, ev := range events {
			if purpose != "" && ev.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !ev.Success {
				ok = "✗ " + truncate(ev.ErrorMessage, 40)
			}
			fmt.Printf("%-5d  %-19s  %-12s  %-24s  %6d  %6d  %6d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Purpose,
				truncate(ev.Model, 24),
				ev.InputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		rep := stats.NewReporter(e.store)

		byPurpose, err := rep.LLMByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		printSection("Usage by Purpose")
		printHeader("%-14s  %6s  %6s  %10s  %10s  %8s", "Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
		var calls, in, out int
		for _, u := range byPurpose {
			fmt.Printf("%-14s  %6d  %6d  %10d  %10d  %8.0f\n",
				u.Key, u.Requests, u.Failures, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			calls += u.Requests
			in += u.InputTokens
			out += u.OutputTokens
		}
		printRule()
		fmt.Printf("%-14s  %6d  %6s  %10d  %10d\n\n", "TOTAL", calls, "", in, out)

		costs, total, err := rep.LLMCosts(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		printSection("Estimated Cost (USD)")
		printHeader("%-32s  %6s  %10s  %10s  %9s", "Model", "Calls", "Input", "Output", "Cost")
		var unknown []string
		for _, c := range costs {
			cost := "?"
			if c.CostUSD != nil {
				cost = formatCost(*c.CostUSD)
			} else {
				unknown = append(unknown, c.Key)
			}
			fmt.Printf("%-32s  %6d  %10d  %10d  %9s\n",
				truncate(c.Key, 32), c.Requests, c.InputTokens, c.OutputTokens, cost)
		}
		printRule()
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n", label, "", "", "", formatCost(total))
		if len(unknown) > 0 {
			fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().Int("limit", 20, "Number of requests to show")
	llmListCmd.Flags().String("purpose", "", "Only show requests with this purpose (question-gen, tutor)")
	llmCmd.AddCommand(llmListCmd, llmStatsCmd)
}
