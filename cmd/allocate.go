package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/quizbank"
	"github.com/abhisek/quizbank/internal/store"
	"github.com/abhisek/quizbank/internal/ui/theme"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Hand a student a quiz bank for an objective and difficulty",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}
		showAnswers, _ := cmd.Flags().GetBool("show-answers")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		alloc, err := e.allocator(cmd.Context()).Allocate(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("allocate: %w", err)
		}

		fmt.Printf("Bank %s  (%s, %s questions, difficulty %.2f)\n\n",
			theme.Value.Render(fmt.Sprint(alloc.BankID)), alloc.Source, alloc.Generation, alloc.Difficulty)
		for _, q := range alloc.Questions {
			fmt.Printf("%d. %s\n", q.Order, q.Text)
			for i, opt := range q.Options {
				fmt.Printf("   %s) %s\n", store.Options[i], opt)
			}
			if showAnswers {
				fmt.Println(theme.Muted.Render(fmt.Sprintf("   answer: %s  %s", q.Correct, q.Explanation)))
			}
			fmt.Println()
		}
		return nil
	},
}

// requestFromFlags builds an allocation request. Without --difficulty the
// difficulty is derived from --mastery.
func requestFromFlags(cmd *cobra.Command) (quizbank.Request, error) {
	student, _ := cmd.Flags().GetInt("student")
	enrollment, _ := cmd.Flags().GetInt("enrollment")
	objective, _ := cmd.Flags().GetInt("objective")
	count, _ := cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetFloat64("difficulty")
	mastery, _ := cmd.Flags().GetFloat64("mastery")

	if student <= 0 {
		return quizbank.Request{}, fmt.Errorf("--student is required")
	}
	if !cmd.Flags().Changed("difficulty") {
		difficulty = quizbank.AdaptiveDifficulty(mastery)
	}
	return quizbank.Request{
		StudentID:    student,
		EnrollmentID: enrollment,
		ObjectiveID:  objective,
		Difficulty:   difficulty,
		Count:        count,
	}, nil
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().Int("student", 0, "Student ID")
	cmd.Flags().Int("enrollment", 0, "Enrollment ID recorded with the assignment")
	cmd.Flags().Int("objective", 0, "Learning objective ID")
	cmd.Flags().Int("count", 10, "Number of questions")
	cmd.Flags().Float64("difficulty", 0.5, "Quiz difficulty in [0,1]")
	cmd.Flags().Float64("mastery", 0, "Current mastery in [0,1]; picks the difficulty when --difficulty is not set")
}

var completeCmd = &cobra.Command{
	Use:     "complete",
	Short:   "Grade a student's answers for a bank and record the result",
	Example: "  quizbank complete --student 4 --bank 12 --answers A,C,B,D,A",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, _ := cmd.Flags().GetInt("student")
		bankID, _ := cmd.Flags().GetInt("bank")
		raw, _ := cmd.Flags().GetString("answers")
		mastery, _ := cmd.Flags().GetFloat64("mastery")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		bank, err := e.store.Banks().Bank(ctx, bankID)
		if err != nil {
			return fmt.Errorf("load bank: %w", err)
		}
		qs, err := e.store.Banks().BankQuestions(ctx, bankID)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		answers, err := parseAnswers(raw, qs)
		if err != nil {
			return err
		}

		// The change depends on the score, so grade once up front.
		change := quizbank.MasteryChange(mastery, quizbank.Grade(qs, answers).Percentage, bank.Difficulty)
		score, err := e.ledger().Complete(ctx, student, bankID, answers, change)
		if err != nil {
			return fmt.Errorf("record completion: %w", err)
		}

		fmt.Printf("Score: %d/%d (%.0f%%)\n", score.Correct, score.Total, score.Percentage)
		fmt.Printf("Mastery change: %+.2f\n", change)
		fmt.Println(theme.Hint.Render(quizbank.ImprovementMessage(change)))
		return nil
	},
}

// parseAnswers maps a comma-separated list of letters onto the bank's
// questions in order. Blank entries leave a question unanswered.
func parseAnswers(raw string, qs []store.Question) (map[int]store.Option, error) {
	parts := strings.Split(raw, ",")
	if len(parts) > len(qs) {
		return nil, fmt.Errorf("%d answers given for %d questions", len(parts), len(qs))
	}
	answers := make(map[int]store.Option, len(parts))
	for i, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		opt := store.Option(p)
		if opt.Index() < 0 {
			return nil, fmt.Errorf("answer %d: %q is not one of A-D", i+1, p)
		}
		answers[qs[i].ID] = opt
	}
	return answers, nil
}

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Pre-generate banks for objectives at standard difficulty levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, _ := cmd.Flags().GetIntSlice("objective")
		levels, _ := cmd.Flags().GetFloat64Slice("levels")
		count, _ := cmd.Flags().GetInt("count")
		parallel, _ := cmd.Flags().GetInt("parallel")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if len(ids) == 0 {
			objs, err := e.store.Objectives().ListObjectives(ctx, 0)
			if err != nil {
				return fmt.Errorf("list objectives: %w", err)
			}
			for _, o := range objs {
				ids = append(ids, o.ID)
			}
		}
		if len(ids) == 0 {
			fmt.Println("No objectives to populate.")
			return nil
		}

		results, err := e.allocator(ctx).Populate(ctx, ids, levels, count, parallel)
		if err != nil {
			return err
		}

		var created, skipped, failed int
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				fmt.Printf("objective %-4d  %.1f  %s\n", r.ObjectiveID, r.Difficulty, theme.Incorrect.Render("failed: "+r.Err.Error()))
			case r.BankID == 0:
				skipped++
				fmt.Printf("objective %-4d  %.1f  %s\n", r.ObjectiveID, r.Difficulty, theme.Muted.Render("already covered"))
			default:
				created++
				fmt.Printf("objective %-4d  %.1f  %s\n", r.ObjectiveID, r.Difficulty, theme.Correct.Render(fmt.Sprintf("created bank %d", r.BankID)))
			}
		}
		fmt.Printf("\n%d created, %d already covered, %d failed\n", created, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d banks failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	addRequestFlags(allocateCmd)
	allocateCmd.Flags().Bool("show-answers", false, "Print the correct option and explanation")

	completeCmd.Flags().Int("student", 0, "Student ID")
	completeCmd.Flags().Int("bank", 0, "Bank ID")
	completeCmd.Flags().String("answers", "", "Comma-separated answers in question order, e.g. A,C,B")
	completeCmd.Flags().Float64("mastery", 0, "Mastery before the quiz in [0,1]")
	_ = completeCmd.MarkFlagRequired("student")
	_ = completeCmd.MarkFlagRequired("bank")

	populateCmd.Flags().IntSlice("objective", nil, "Objective IDs (default: all)")
	populateCmd.Flags().Float64Slice("levels", quizbank.DefaultLevels, "Difficulty levels")
	populateCmd.Flags().Int("count", 10, "Questions per bank")
	populateCmd.Flags().Int("parallel", 2, "Banks generated at once")
}
