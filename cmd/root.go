package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/config"
	"github.com/abhisek/quizbank/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizbank",
	Short: "Reusable AI-generated quiz banks",
	Long: "QuizBank hands out multiple-choice quizzes per learning objective and difficulty,\n" +
		"reusing stored banks a student has not seen before generating new ones.",
	SilenceUsage: true,
}

// Execute runs the CLI. Ctrl+C cancels the command's context, which aborts
// any in-flight generation before its bank is written.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZBANK_DB env var)")

	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(objectiveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(populateCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZBANK_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
