package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driven/config/file"
	"github.com/custodia-labs/nutrisense/internal/config"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

var configJSON bool

// openConfigStore opens the editable config file in dir.
var openConfigStore = func(dir string) (driven.ConfigStore, error) {
	return file.NewConfigStore(dir)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
	Long: `Configuration is layered: built-in defaults, then config.toml, then
NUTRISENSE_* environment variables. "config show" prints the effective
result; "config set" and "config unset" edit config.toml only.

Keys:
  ` + strings.Join(config.Keys, "\n  "),
}

var configShowCmd = noWiring(&cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
})

var configSetCmd = noWiring(&cobra.Command{
	Use:   "set key value",
	Short: "Set a key in config.toml",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
})

var configUnsetCmd = noWiring(&cobra.Command{
	Use:   "unset key",
	Short: "Remove a key from config.toml",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
})

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "output as JSON")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(noWiring(configCmd))
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	values, err := config.Effective(configPath)
	if err != nil {
		return err
	}
	if configJSON {
		return printJSON(cmd, values)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", configPath)
	for _, k := range keys {
		fmt.Fprintf(out, "%s = %v\n", k, values[k])
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if !config.IsKey(key) {
		return fmt.Errorf("unknown key %q (see nutrisense config --help)", key)
	}
	value, err := parseConfigValue(key, raw)
	if err != nil {
		return err
	}

	store, err := openConfigStore(filepath.Dir(configPath))
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	previous, hadPrevious := store.Get(key)
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	// Reject values that leave the configuration unloadable.
	if _, err := config.Load(configPath); err != nil {
		if hadPrevious {
			_ = store.Set(key, previous)
		} else {
			_ = store.Unset(key)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !config.IsKey(key) {
		return fmt.Errorf("unknown key %q (see nutrisense config --help)", key)
	}
	store, err := openConfigStore(filepath.Dir(configPath))
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	if err := store.Unset(key); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "unset %s\n", key)
	return nil
}

// parseConfigValue stores numbers as numbers so the TOML stays typed.
func parseConfigValue(key, raw string) (any, error) {
	switch key {
	case "mcp.rate_limit":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", key, raw)
		}
		return v, nil
	case "mcp.burst":
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}
