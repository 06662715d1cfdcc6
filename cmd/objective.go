package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/ui/theme"
)

var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Manage units",
}

var unitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := e.store.Objectives().CreateUnit(cmd.Context(), args[0], desc)
		if err != nil {
			return fmt.Errorf("create unit: %w", err)
		}
		fmt.Printf("Created unit %d: %s\n", u.ID, u.Name)
		return nil
	},
}

var unitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List units",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		units, err := e.store.Objectives().ListUnits(cmd.Context())
		if err != nil {
			return fmt.Errorf("list units: %w", err)
		}
		if len(units) == 0 {
			fmt.Println("No units yet. Run `quizbank seed` to add a sample unit.")
			return nil
		}
		for _, u := range units {
			fmt.Printf("%-5d  %s\n", u.ID, u.Name)
		}
		return nil
	},
}

var objectiveCmd = &cobra.Command{
	Use:   "objective",
	Short: "Manage learning objectives",
}

var objectiveAddCmd = &cobra.Command{
	Use:   "add <unit-id> <text>",
	Short: "Add a learning objective to a unit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID, err := parseID(args[0])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		o, err := e.store.Objectives().CreateObjective(cmd.Context(), unitID, args[1])
		if err != nil {
			return fmt.Errorf("create objective: %w", err)
		}
		fmt.Printf("Created objective %d: %s\n", o.ID, o.Text)
		return nil
	},
}

var objectiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learning objectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID, _ := cmd.Flags().GetInt("unit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		objs, err := e.store.Objectives().ListObjectives(cmd.Context(), unitID)
		if err != nil {
			return fmt.Errorf("list objectives: %w", err)
		}
		if len(objs) == 0 {
			fmt.Println("No objectives found.")
			return nil
		}

		fmt.Println(theme.TableHeader.Render(fmt.Sprintf("%-5s  %-5s  %s", "ID", "Unit", "Objective")))
		fmt.Println(theme.TableRule.Render(strings.Repeat("─", 72)))
		for _, o := range objs {
			fmt.Printf("%-5d  %-5d  %s\n", o.ID, o.UnitID, o.Text)
		}
		return nil
	},
}

// Sample content for trying the tool out on an empty database.
var (
	seedUnitName   = "Introduction to Algebra"
	seedUnitDesc   = "Learn the fundamentals of algebraic thinking and problem solving"
	seedObjectives = []string{
		"Understand variables and expressions",
		"Solve linear equations with one variable",
		"Graph linear functions on a coordinate plane",
		"Apply algebraic methods to real-world problems",
		"Simplify and manipulate algebraic expressions",
	}
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add a sample algebra unit with five objectives",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		repo := e.store.Objectives()

		units, err := repo.ListUnits(ctx)
		if err != nil {
			return fmt.Errorf("list units: %w", err)
		}
		for _, u := range units {
			if u.Name == seedUnitName {
				fmt.Printf("Sample unit already exists (id %d).\n", u.ID)
				return nil
			}
		}

		u, err := repo.CreateUnit(ctx, seedUnitName, seedUnitDesc)
		if err != nil {
			return fmt.Errorf("create unit: %w", err)
		}
		fmt.Printf("Added unit %d: %s\n", u.ID, u.Name)
		for _, text := range seedObjectives {
			o, err := repo.CreateObjective(ctx, u.ID, text)
			if err != nil {
				return fmt.Errorf("create objective: %w", err)
			}
			fmt.Printf("  objective %d: %s\n", o.ID, o.Text)
		}
		return nil
	},
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func init() {
	unitAddCmd.Flags().String("description", "", "Unit description")
	unitCmd.AddCommand(unitAddCmd, unitListCmd)

	objectiveListCmd.Flags().Int("unit", 0, "Only list objectives of this unit")
	objectiveCmd.AddCommand(objectiveAddCmd, objectiveListCmd)
}
