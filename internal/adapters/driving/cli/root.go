// Package cli provides the nutrisense command line. It is the composition
// root: it loads configuration, opens storage and hands the driving ports to
// the MCP, REST and TUI adapters.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driven/config/file"
	"github.com/custodia-labs/nutrisense/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nutrisense/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/nutrisense/internal/adapters/driving/present"
	"github.com/custodia-labs/nutrisense/internal/config"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driving"
	"github.com/custodia-labs/nutrisense/internal/core/services"
	"github.com/custodia-labs/nutrisense/internal/logger"
)

// version is set at build time.
var version = "dev"

// nowFunc is the clock for default instants and dates.
var nowFunc = time.Now

// annotationNoWiring marks commands that run without storage.
const annotationNoWiring = "nutrisense/no-wiring"

// Driving ports used by the commands. They are wired in PersistentPreRunE
// unless SetServices injected them first.
var (
	goalService     driving.GoalService
	intakeService   driving.IntakeService
	progressService driving.ProgressService
	profileService  driving.ProfileService
	locations       *present.LocationResolver
	appConfig       *config.Config

	// configPath is the resolved config file.
	configPath string
	closeStore func() error
	injected   bool
)

// Persistent flags.
var (
	verbose   bool
	dataDir   string
	configDir string
	userID    string
)

var rootCmd = &cobra.Command{
	Use:   "nutrisense",
	Short: "Track nutrition goals, food intake and daily progress",
	Long: `NutriSense keeps versioned nutrition goals and an append-only food log,
and reports how each day's intake compares with the goal that applied.

Use it directly from the terminal, run the dashboard, or serve the same
operations to AI assistants over MCP and to other programs over REST.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&dataDir, "data-dir", "", "directory holding the database (overrides storage.dir)")
	flags.StringVar(&configDir, "config-dir", "", "directory holding config.toml (default ~/.nutrisense)")
	flags.StringVarP(&userID, "user", "u", "default", "user whose data is read and written")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if cerr := teardown(rootCmd, nil); err == nil {
		err = cerr
	}
	return err
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Services are the driving ports the commands use.
type Services struct {
	Goal     driving.GoalService
	Intake   driving.IntakeService
	Progress driving.ProgressService
	Profile  driving.ProfileService
	// Config defaults to the built-in configuration when nil.
	Config *config.Config
}

// SetServices injects ports instead of wiring storage from configuration.
func SetServices(s Services) {
	goalService = s.Goal
	intakeService = s.Intake
	progressService = s.Progress
	profileService = s.Profile
	appConfig = s.Config
	if appConfig == nil {
		appConfig = &config.Config{}
	}
	locations = &present.LocationResolver{Profiles: s.Profile, Default: appConfig.Location()}
	injected = true
}

// ResetServices drops injected ports so the next run wires from configuration.
func ResetServices() {
	goalService = nil
	intakeService = nil
	progressService = nil
	profileService = nil
	locations = nil
	appConfig = nil
	injected = false
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	configPath = path

	if injected || cmd.Annotations[annotationNoWiring] == "true" {
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.Log); err != nil {
		return err
	}
	logger.SetVerbose(verbose)

	return wire(cfg)
}

func teardown(_ *cobra.Command, _ []string) error {
	logger.Sync()
	if closeStore == nil {
		return nil
	}
	err := closeStore()
	closeStore = nil
	return err
}

// wire opens the configured store and builds the services over it.
func wire(cfg *config.Config) error {
	var (
		goals    driven.GoalStore
		logs     driven.FoodLogStore
		profiles driven.ProfileStore
	)

	if closeStore != nil {
		if err := closeStore(); err != nil {
			logger.Warn("closing previous store: %v", err)
		}
		closeStore = nil
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Debug("using in-memory storage")
		goals = memory.NewGoalStore()
		logs = memory.NewFoodLogStore()
		profiles = memory.NewProfileStore()
	default:
		dir := dataDir
		if dir == "" {
			d, err := cfg.DataDir()
			if err != nil {
				return err
			}
			dir = d
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		logger.Debug("opened store at %s", store.Path())
		goals = store.GoalStore()
		logs = store.FoodLogStore()
		profiles = store.ProfileStore()
		closeStore = store.Close
	}

	locks := services.NewUserLocks()
	clock := services.SystemClock{}

	goal := services.NewGoalService(goals, locks, clock)
	intake := services.NewIntakeService(logs, locks, clock)
	progress := services.NewProgressService(goals, logs, locks)
	profile := services.NewProfileService(profiles, locks, clock)

	goal.SetStorageTimeout(cfg.Storage.Timeout)
	intake.SetStorageTimeout(cfg.Storage.Timeout)
	progress.SetStorageTimeout(cfg.Storage.Timeout)
	profile.SetStorageTimeout(cfg.Storage.Timeout)

	goalService = goal
	intakeService = intake
	progressService = progress
	profileService = profile
	appConfig = cfg
	locations = &present.LocationResolver{Profiles: profile, Default: cfg.Location()}
	return nil
}

func resolveConfigPath() (string, error) {
	if configDir != "" {
		return filepath.Join(configDir, file.FileName), nil
	}
	return config.DefaultPath()
}

// noWiring annotates cmd so that it runs without opening storage.
func noWiring(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationNoWiring] = "true"
	return cmd
}
