package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/app"
	"github.com/abhisek/quizbank/internal/screens/quiz"
	"github.com/abhisek/quizbank/internal/screens/study"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz in the terminal and record the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		mastery, _ := cmd.Flags().GetFloat64("mastery")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		s := quiz.New(ctx, e.allocator(ctx), e.ledger(), req, mastery)
		return app.Run(s, fmt.Sprintf("student %d  ", req.StudentID))
	},
}

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Chat with the tutor about a learning objective",
	RunE: func(cmd *cobra.Command, args []string) error {
		objectiveID, _ := cmd.Flags().GetInt("objective")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		text, err := e.store.Objectives().ObjectiveText(ctx, objectiveID)
		if err != nil {
			return fmt.Errorf("objective %d: %w", objectiveID, err)
		}

		s := study.New(ctx, e.tutor(ctx), text)
		return app.Run(s, fmt.Sprintf("objective %d  ", objectiveID))
	},
}

func init() {
	addRequestFlags(quizCmd)

	studyCmd.Flags().Int("objective", 0, "Learning objective ID")
	_ = studyCmd.MarkFlagRequired("objective")
}
