package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nutrisense/internal/config"
	"github.com/custodia-labs/nutrisense/internal/core/services"
)

// testNow is noon UTC on 4 May 2024.
var testNow = time.Date(2024, time.May, 4, 12, 0, 0, 0, time.UTC)

// setupTestServices injects services over memory stores with a fixed clock
// and a UTC default timezone.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	locks := services.NewUserLocks()
	clock := services.FixedClock{T: testNow}
	goals := memory.NewGoalStore()
	logs := memory.NewFoodLogStore()

	SetServices(Services{
		Goal:     services.NewGoalService(goals, locks, clock),
		Intake:   services.NewIntakeService(logs, locks, clock),
		Progress: services.NewProgressService(goals, logs, locks),
		Profile:  services.NewProfileService(memory.NewProfileStore(), locks, clock),
		Config: &config.Config{
			Progress: config.ProgressConfig{Timezone: "UTC"},
			MCP:      config.MCPConfig{RateLimit: 10, Burst: 10},
			HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0"},
		},
	})
	nowFunc = func() time.Time { return testNow }

	return func() {
		ResetServices()
		nowFunc = time.Now
	}
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns everything written.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{"verbose", "data-dir", "config-dir", "user"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "default", flags.Lookup("user").DefValue)
	assert.Equal(t, "u", flags.Lookup("user").Shorthand)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"goal", "log", "progress", "profile", "dashboard", "mcp", "serve", "config", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestSetup_ConfigDirResolvesPath(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--config-dir", dir, "version")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), configPath)
}

func TestSetup_WiresMemoryStorage(t *testing.T) {
	ResetServices()
	defer ResetServices()

	dir := t.TempDir()
	cfg := "[storage]\ndriver = \"memory\"\n\n[progress]\ntimezone = \"UTC\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0600))

	out, err := execute(t, "--config-dir", dir, "goal", "set", "calories=2000")

	require.NoError(t, err)
	assert.Contains(t, out, "calories")
	assert.NotNil(t, goalService)
	assert.Equal(t, config.DriverMemory, appConfig.Storage.Driver)
	assert.Equal(t, time.UTC, locations.Default)
}

func TestSetup_SQLitePersistsAcrossRuns(t *testing.T) {
	ResetServices()
	defer ResetServices()

	configDir := t.TempDir()
	dataDir := t.TempDir()

	_, err := execute(t, "--config-dir", configDir, "--data-dir", dataDir, "goal", "set", "calories=1800", "protein=90")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "nutrisense.db"))

	out, err := execute(t, "--config-dir", configDir, "--data-dir", dataDir, "goal", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "1800")
	assert.Contains(t, out, "active")
}

func TestSetup_InvalidConfig(t *testing.T) {
	ResetServices()
	defer ResetServices()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[storage]\ndriver = \"floppy\"\n"), 0600))

	_, err := execute(t, "--config-dir", dir, "goal", "show")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}

func TestParseNutrients(t *testing.T) {
	v, err := parseNutrients([]string{"calories=2000", "protein = 120.5"})
	require.NoError(t, err)
	assert.InDelta(t, 2000, v["calories"], 1e-9)
	assert.InDelta(t, 120.5, v["protein"], 1e-9)

	_, err = parseNutrients([]string{"calories"})
	assert.Error(t, err)

	_, err = parseNutrients([]string{"calories=lots"})
	assert.Error(t, err)

	_, err = parseNutrients([]string{"=5"})
	assert.Error(t, err)
}

func TestTerminalWidth_NotATerminal(t *testing.T) {
	_, ok := terminalWidth(new(bytes.Buffer))
	assert.False(t, ok)
}
