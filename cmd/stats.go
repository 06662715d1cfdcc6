package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/stats"
	"github.com/abhisek/quizbank/internal/store"
	"github.com/abhisek/quizbank/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz bank and usage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		objectiveID, _ := cmd.Flags().GetInt("objective")
		recent, _ := cmd.Flags().GetInt("recent")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rep := stats.NewReporter(e.store)
		if objectiveID > 0 {
			st, err := rep.GetStats(cmd.Context(), objectiveID)
			if err != nil {
				return fmt.Errorf("objective stats: %w", err)
			}
			printObjectiveStats(st)
			return nil
		}

		r, err := rep.Report(cmd.Context(), recent)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		printReport(r)
		return nil
	},
}

func printReport(r *stats.Report) {
	ov := r.Overview
	printSection("Overview")
	fmt.Printf("Active banks:        %s\n", theme.Value.Render(fmt.Sprint(ov.ActiveBanks)))
	fmt.Printf("Inactive banks:      %d\n", ov.InactiveBanks)
	fmt.Printf("Objectives covered:  %d\n", ov.ObjectivesCovered)
	fmt.Printf("Questions in banks:  %d\n", ov.TotalQuestions)
	fmt.Printf("Total usage:         %d (avg %.2f per bank)\n\n", ov.TotalUsage, ov.AvgUsage)

	printSection("Banks per Objective")
	if len(r.PerObjective) == 0 {
		fmt.Println(theme.Muted.Render("No active banks."))
	} else {
		printHeader("%-5s  %-30s  %5s  %6s  %17s", "ID", "Objective", "Banks", "Usage", "Difficulty")
		for _, o := range r.PerObjective {
			fmt.Printf("%-5d  %-30s  %5d  %6d  %.2f / %.2f / %.2f\n",
				o.ObjectiveID, truncate(o.ObjectiveText, 30), o.Banks, o.TotalUsage,
				o.MinDifficulty, o.AvgDifficulty, o.MaxDifficulty)
		}
	}
	fmt.Println()

	printSection("Recent Banks")
	if len(r.RecentBanks) == 0 {
		fmt.Println(theme.Muted.Render("No banks yet."))
	} else {
		printHeader("%-5s  %-9s  %10s  %-8s  %5s  %s", "ID", "Objective", "Difficulty", "Source", "Used", "Created")
		for _, b := range r.RecentBanks {
			fmt.Printf("%-5d  %-9d  %10.2f  %-8s  %5d  %s\n",
				b.ID, b.ObjectiveID, b.Difficulty, b.Source, b.UsageCount, formatTime(&b.CreatedAt))
		}
	}
	fmt.Println()

	st := r.Students
	printSection("Students")
	fmt.Printf("Unique students:     %d\n", st.UniqueStudents)
	fmt.Printf("Assignments:         %d\n", st.Assignments)
	fmt.Printf("Completions:         %d\n", st.Completions)
	fmt.Printf("Average score:       %s\n", avgScore(st.HasScores, st.AvgScore))
}

func printObjectiveStats(st *store.ObjectiveStats) {
	printSection(fmt.Sprintf("Objective %d", st.ObjectiveID))
	fmt.Printf("Active banks:        %s\n", theme.Value.Render(fmt.Sprint(st.Banks)))
	fmt.Printf("Total usage:         %d (avg %.2f per bank)\n", st.TotalUsage, st.AvgUsage)
	fmt.Printf("Oldest bank:         %s\n", formatTime(st.Oldest))
	fmt.Printf("Newest bank:         %s\n", formatTime(st.Newest))
	fmt.Printf("Completions:         %d\n", st.Completions)
	fmt.Printf("Average score:       %s\n", avgScore(st.HasScores, st.AvgScore))
}

func avgScore(has bool, v float64) string {
	if !has {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v)
}

func init() {
	statsCmd.Flags().Int("objective", 0, "Report a single objective")
	statsCmd.Flags().Int("recent", stats.DefaultRecent, "Number of recent banks to list")
}
