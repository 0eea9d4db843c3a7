package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/tui"
)

var dashboardTZ string

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive progress dashboard",
	Long: `Launch a terminal dashboard showing today's progress against the active
goal, one bar per nutrient.

Controls:
  ←/h, →/l - Previous / next day
  t        - Today
  r        - Refresh
  e        - Show or hide the day's entries
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardTZ, "tz", "", "IANA timezone for day windows")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in dashboard: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newDashboard(cmd)
	if err != nil {
		return err
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

func newDashboard(cmd *cobra.Command) (*tui.App, error) {
	loc, err := locations.Resolve(cmd.Context(), userID, dashboardTZ)
	if err != nil {
		return nil, err
	}

	app, err := tui.NewApp(
		&tui.Ports{Progress: progressService, Intake: intakeService},
		tui.Options{UserID: userID, Location: loc, Now: nowFunc},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}
	return app.WithContext(cmd.Context()), nil
}
