package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

var (
	goalAt   string
	goalJSON bool
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage nutrition goals",
	Long: `Goals are versioned: setting or updating a goal stores a new version and
keeps every earlier one, so past days are always judged against the goal
that applied to them.`,
}

var goalSetCmd = &cobra.Command{
	Use:   "set nutrient=amount...",
	Short: "Replace the active goal",
	Long: `Replace the active goal with the given targets. Nutrients not named are
dropped from the goal.

Example:
  nutrisense goal set calories=2000 protein=120 carbs=250 fat=70`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGoalSet,
}

var goalUpdateCmd = &cobra.Command{
	Use:   "update nutrient=amount...",
	Short: "Change some targets of the active goal",
	Long: `Merge the given targets over the active goal and store the result as a
new version. Without an active goal this behaves like "goal set".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGoalUpdate,
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active goal",
	Args:  cobra.NoArgs,
	RunE:  runGoalShow,
}

var goalHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every goal version, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runGoalHistory,
}

func init() {
	goalShowCmd.Flags().StringVar(&goalAt, "at", "", "show the goal active at this RFC 3339 instant")
	for _, c := range []*cobra.Command{goalSetCmd, goalUpdateCmd, goalShowCmd, goalHistoryCmd} {
		c.Flags().BoolVar(&goalJSON, "json", false, "output as JSON")
		goalCmd.AddCommand(c)
	}
	rootCmd.AddCommand(goalCmd)
}

func runGoalSet(cmd *cobra.Command, args []string) error {
	if goalService == nil {
		return fmt.Errorf("goal %w", errNotConfigured)
	}
	targets, err := parseNutrients(args)
	if err != nil {
		return err
	}
	goal, err := goalService.SetGoal(cmd.Context(), userID, targets)
	if err != nil {
		return err
	}
	return outputGoal(cmd, goal)
}

func runGoalUpdate(cmd *cobra.Command, args []string) error {
	if goalService == nil {
		return fmt.Errorf("goal %w", errNotConfigured)
	}
	partial, err := parseNutrients(args)
	if err != nil {
		return err
	}
	goal, err := goalService.UpdateGoal(cmd.Context(), userID, partial)
	if err != nil {
		return err
	}
	return outputGoal(cmd, goal)
}

func runGoalShow(cmd *cobra.Command, _ []string) error {
	if goalService == nil {
		return fmt.Errorf("goal %w", errNotConfigured)
	}
	at, err := present.ParseTime("at", goalAt)
	if err != nil {
		return err
	}
	if at.IsZero() {
		at = nowFunc()
	}
	goal, err := goalService.ActiveGoal(cmd.Context(), userID, at)
	if err != nil {
		return err
	}
	return outputGoal(cmd, goal)
}

func runGoalHistory(cmd *cobra.Command, _ []string) error {
	if goalService == nil {
		return fmt.Errorf("goal %w", errNotConfigured)
	}
	goals, err := goalService.History(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if goalJSON {
		return printJSON(cmd, present.FromGoals(goals))
	}

	out := cmd.OutOrStdout()
	if len(goals) == 0 {
		fmt.Fprintln(out, "No goals set.")
		return nil
	}
	for i := range goals {
		writeGoal(out, &goals[i])
		fmt.Fprintln(out)
	}
	return nil
}

func outputGoal(cmd *cobra.Command, goal *domain.Goal) error {
	if goalJSON {
		return printJSON(cmd, present.FromGoal(goal))
	}
	writeGoal(cmd.OutOrStdout(), goal)
	return nil
}

func writeGoal(out io.Writer, goal *domain.Goal) {
	state := "superseded"
	if goal.Active {
		state = "active"
	}
	fmt.Fprintf(out, "Goal %s (%s, set %s)\n", goal.ID, state, goal.CreatedAt.Format(present.TimeFormat))
	for _, n := range goal.Targets.Keys() {
		fmt.Fprintf(out, "  %-14s %s\n", n, present.FormatAmount(goal.Targets[n]))
	}
}
