package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/nutrisense/internal/core/domain"
)

var (
	progressDate string
	progressTZ   string
	progressFrom string
	progressTo   string
	progressJSON bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Compare a day's intake with its goal",
	Long: `Show how much of each target has been consumed on a day, what remains and
the percentage reached. The day runs from midnight to midnight in the
timezone given by --tz, the profile's timezone, or progress.timezone.

With --from, one summary per day from --from to --to (default today) is
shown instead.`,
	Args: cobra.NoArgs,
	RunE: runProgress,
}

func init() {
	progressCmd.Flags().StringVarP(&progressDate, "date", "d", "", "day to report (YYYY-MM-DD, default today)")
	progressCmd.Flags().StringVar(&progressTZ, "tz", "", "IANA timezone for the day window")
	progressCmd.Flags().StringVar(&progressFrom, "from", "", "first day of a history (YYYY-MM-DD)")
	progressCmd.Flags().StringVar(&progressTo, "to", "", "last day of a history (YYYY-MM-DD, default today)")
	progressCmd.Flags().BoolVar(&progressJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, _ []string) error {
	if progressService == nil {
		return fmt.Errorf("progress %w", errNotConfigured)
	}
	ctx := cmd.Context()

	loc, err := locations.Resolve(ctx, userID, progressTZ)
	if err != nil {
		return err
	}

	if progressFrom != "" {
		from, err := domain.ParseDate(progressFrom)
		if err != nil {
			return err
		}
		to, err := present.ParseDate(progressTo, nowFunc(), loc)
		if err != nil {
			return err
		}
		days, err := progressService.History(ctx, userID, from, to, loc)
		if err != nil {
			return err
		}
		return outputHistory(cmd, days)
	}

	day, err := present.ParseDate(progressDate, nowFunc(), loc)
	if err != nil {
		return err
	}

	snapshot, err := progressService.ComputeProgress(ctx, userID, day, loc)
	if errors.Is(err, domain.ErrNoGoalSet) {
		summary, serr := progressService.DailyIntake(ctx, userID, day, loc)
		if serr != nil {
			return serr
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "No goal set for %s; showing intake only.\n", day)
		if progressJSON {
			return printJSON(cmd, present.FromSummary(summary))
		}
		return outputSnapshot(cmd.OutOrStdout(), present.FromSummary(summary))
	}
	if err != nil {
		return err
	}

	if progressJSON {
		return printJSON(cmd, present.FromSnapshot(snapshot))
	}
	return outputSnapshot(cmd.OutOrStdout(), present.FromSnapshot(snapshot))
}

func outputHistory(cmd *cobra.Command, days []domain.ProgressSnapshot) error {
	if progressJSON {
		return printJSON(cmd, present.FromSnapshots(days))
	}
	out := cmd.OutOrStdout()
	for i := range days {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := outputSnapshot(out, present.FromSnapshot(&days[i])); err != nil {
			return err
		}
	}
	return nil
}

// outputSnapshot prints a heading and one table row per nutrient.
func outputSnapshot(out io.Writer, s present.Snapshot) error {
	st := styles.DefaultStyles()

	heading := fmt.Sprintf("%s (%s)", s.Date, s.Timezone)
	switch {
	case s.GoalID != "":
		heading += "  goal " + s.GoalID
	default:
		heading += "  no goal"
	}
	fmt.Fprintln(out, st.Title.Render(heading))

	if len(s.Nutrients) == 0 {
		fmt.Fprintln(out, st.Muted.Render("Nothing logged."))
		return nil
	}

	rows := make([][]string, len(s.Nutrients))
	percents := make([]*float64, len(s.Nutrients))
	for i, n := range s.Nutrients {
		target, remaining, percent := "-", "-", "-"
		if n.Target != nil {
			target = present.FormatAmount(*n.Target)
			remaining = present.FormatAmount(n.Remaining)
		}
		if n.Percent != nil {
			percent = present.FormatPercent(*n.Percent)
		}
		rows[i] = []string{n.Nutrient, present.FormatAmount(n.Consumed), target, remaining, percent}
		percents[i] = n.Percent
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(st.Theme().Frame)).
		Headers("Nutrient", "Consumed", "Target", "Remaining", "%").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(st.Subtitle)
			}
			if col == 4 && row >= 0 && row < len(percents) {
				p := percents[row]
				if p == nil {
					return base.Inherit(st.ForPercent(0, false))
				}
				return base.Inherit(st.ForPercent(*p, true))
			}
			return base
		})
	if width, ok := terminalWidth(out); ok && width < 80 {
		t = t.Width(width)
	}

	fmt.Fprintln(out, t.Render())
	fmt.Fprintln(out, st.Muted.Render(entryCount(s.EntryCount)))
	return nil
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
