package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
)

var (
	logMeal   string
	logAt     string
	logSource string
	logReason string
	logFrom   string
	logTo     string
	logLimit  int
	logJSON   bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record and review food intake",
	Long: `The food log is append-only. Mistakes are fixed with "log correct", which
records a replacement, or "log void", which withdraws an entry. Neither
rewrites history.`,
}

var logAddCmd = &cobra.Command{
	Use:   "add nutrient=amount...",
	Short: "Log food that was eaten",
	Long: `Log food with its nutrient amounts.

Example:
  nutrisense log add calories=520 protein=32 carbs=48 fat=18 --meal lunch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLogAdd,
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged entries",
	Long: `List the most recent entries, newest first, or every raw entry (including
corrections and voids) logged in [--from, --to).`,
	Args: cobra.NoArgs,
	RunE: runLogList,
}

var logCorrectCmd = &cobra.Command{
	Use:   "correct entry-id [nutrient=amount...]",
	Short: "Replace a logged entry",
	Long: `Record a replacement for an entry. Nutrients, when given, replace the
entry's nutrients entirely; omitted flags keep the entry's values.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLogCorrect,
}

var logVoidCmd = &cobra.Command{
	Use:   "void entry-id",
	Short: "Withdraw a logged entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogVoid,
}

func init() {
	for _, c := range []*cobra.Command{logAddCmd, logCorrectCmd} {
		c.Flags().StringVarP(&logMeal, "meal", "m", "", "meal label, e.g. breakfast")
		c.Flags().StringVar(&logAt, "at", "", "when the food was eaten (RFC 3339, default now)")
		c.Flags().StringVar(&logSource, "source", "", "free-text description of the food")
	}
	logVoidCmd.Flags().StringVar(&logReason, "reason", "", "why the entry is withdrawn")
	logListCmd.Flags().StringVar(&logFrom, "from", "", "start of the range (RFC 3339, inclusive)")
	logListCmd.Flags().StringVar(&logTo, "to", "", "end of the range (RFC 3339, exclusive)")
	logListCmd.Flags().IntVarP(&logLimit, "limit", "n", 0, "maximum number of recent entries (default 50)")

	for _, c := range []*cobra.Command{logAddCmd, logListCmd, logCorrectCmd, logVoidCmd} {
		c.Flags().BoolVar(&logJSON, "json", false, "output as JSON")
		logCmd.AddCommand(c)
	}
	rootCmd.AddCommand(logCmd)
}

func runLogAdd(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return fmt.Errorf("intake %w", errNotConfigured)
	}
	nutrients, err := parseNutrients(args)
	if err != nil {
		return err
	}
	at, err := present.ParseTime("at", logAt)
	if err != nil {
		return err
	}

	entry, err := intakeService.LogFood(cmd.Context(), driving.LogFoodRequest{
		UserID:            userID,
		Nutrients:         nutrients,
		MealLabel:         logMeal,
		LoggedAt:          at,
		SourceDescription: logSource,
	})
	if err != nil {
		return err
	}
	return outputEntry(cmd, "Logged", entry)
}

func runLogList(cmd *cobra.Command, _ []string) error {
	if intakeService == nil {
		return fmt.Errorf("intake %w", errNotConfigured)
	}

	var (
		entries []domain.FoodLogEntry
		err     error
	)
	if logFrom != "" || logTo != "" {
		from, perr := present.ParseTime("from", logFrom)
		if perr != nil {
			return perr
		}
		to, perr := present.ParseTime("to", logTo)
		if perr != nil {
			return perr
		}
		if from.IsZero() || to.IsZero() {
			return domain.NewValidationError("from", "--from and --to must be given together")
		}
		entries, err = intakeService.QueryRange(cmd.Context(), userID, from, to)
	} else {
		entries, err = intakeService.Recent(cmd.Context(), userID, logLimit)
	}
	if err != nil {
		return err
	}

	if logJSON {
		return printJSON(cmd, present.FromEntries(entries))
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries.")
		return nil
	}
	for i := range entries {
		writeEntryLine(out, &entries[i])
	}
	return nil
}

func runLogCorrect(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return fmt.Errorf("intake %w", errNotConfigured)
	}

	req := driving.CorrectionRequest{UserID: userID, EntryID: args[0]}
	if len(args) > 1 {
		nutrients, err := parseNutrients(args[1:])
		if err != nil {
			return err
		}
		req.Nutrients = nutrients
	}
	at, err := present.ParseTime("at", logAt)
	if err != nil {
		return err
	}
	req.LoggedAt = at
	if cmd.Flags().Changed("meal") {
		req.MealLabel = &logMeal
	}
	if cmd.Flags().Changed("source") {
		req.SourceDescription = &logSource
	}

	entry, err := intakeService.Correct(cmd.Context(), req)
	if err != nil {
		return err
	}
	return outputEntry(cmd, "Corrected", entry)
}

func runLogVoid(cmd *cobra.Command, args []string) error {
	if intakeService == nil {
		return fmt.Errorf("intake %w", errNotConfigured)
	}
	entry, err := intakeService.Void(cmd.Context(), userID, args[0], logReason)
	if err != nil {
		return err
	}
	return outputEntry(cmd, "Voided", entry)
}

func outputEntry(cmd *cobra.Command, verb string, entry *domain.FoodLogEntry) error {
	if logJSON {
		return printJSON(cmd, present.FromEntry(entry))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s entry %s\n", verb, entry.ID)
	writeEntryLine(out, entry)
	return nil
}

// writeEntryLine prints one ledger entry: time, meal, nutrients and what it
// supersedes.
func writeEntryLine(out io.Writer, e *domain.FoodLogEntry) {
	at := e.LoggedAt.Format(present.TimeFormat)
	if e.IsVoid() {
		line := fmt.Sprintf("  %s  %s  void of %s", e.ID, at, e.Supersedes)
		if e.SourceDescription != "" {
			line += " (" + e.SourceDescription + ")"
		}
		fmt.Fprintln(out, line)
		return
	}

	meal := e.MealLabel
	if meal == "" {
		meal = "-"
	}
	parts := make([]string, 0, len(e.Nutrients))
	for _, n := range e.Nutrients.Keys() {
		parts = append(parts, n+"="+present.FormatAmount(e.Nutrients[n]))
	}
	line := fmt.Sprintf("  %s  %s  %-10s %s", e.ID, at, meal, strings.Join(parts, " "))
	if e.Supersedes != "" {
		line += "  corrects " + e.Supersedes
	}
	fmt.Fprintln(out, line)
}
