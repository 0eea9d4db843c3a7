package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nutrisense/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/nutrisense/internal/core/ports/driven"
)

func TestConfigShow_Defaults(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--config-dir", dir, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config.toml"))
	assert.Contains(t, out, "storage.driver = sqlite")
	assert.Contains(t, out, "mcp.burst = 40")
}

func TestConfigSet_WritesFile(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--config-dir", dir, "config", "set", "progress.timezone", "Europe/Berlin")
	require.NoError(t, err)
	assert.Contains(t, out, "progress.timezone = Europe/Berlin")

	_, err = execute(t, "--config-dir", dir, "config", "set", "mcp.rate_limit", "2.5")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Europe/Berlin")

	out, err = execute(t, "--config-dir", dir, "config", "show", "--json")
	require.NoError(t, err)

	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &values))
	assert.Equal(t, "Europe/Berlin", values["progress.timezone"])
	assert.InDelta(t, 2.5, values["mcp.rate_limit"], 1e-9)
}

func TestConfigSet_UnknownKey(t *testing.T) {
	_, err := execute(t, "--config-dir", t.TempDir(), "config", "set", "storage.colour", "blue")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

func TestConfigSet_RejectsInvalidValueAndRestores(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--config-dir", dir, "config", "set", "storage.driver", "memory")
	require.NoError(t, err)

	_, err = execute(t, "--config-dir", dir, "config", "set", "storage.driver", "floppy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")

	out, err := execute(t, "--config-dir", dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "storage.driver = memory")
}

func TestConfigSet_RejectsNonNumeric(t *testing.T) {
	_, err := execute(t, "--config-dir", t.TempDir(), "config", "set", "mcp.burst", "many")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an integer")
}

func TestConfigUnset(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--config-dir", dir, "config", "set", "log.level", "debug")
	require.NoError(t, err)

	out, err := execute(t, "--config-dir", dir, "config", "unset", "log.level")
	require.NoError(t, err)
	assert.Contains(t, out, "unset log.level")

	out, err = execute(t, "--config-dir", dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "log.level = warn")
}

func TestConfigUnset_UsesConfigStore(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("progress.timezone", "Asia/Tokyo"))

	var openedDir string
	original := openConfigStore
	openConfigStore = func(dir string) (driven.ConfigStore, error) {
		openedDir = dir
		return store, nil
	}
	defer func() { openConfigStore = original }()

	dir := t.TempDir()
	out, err := execute(t, "--config-dir", dir, "config", "unset", "progress.timezone")

	require.NoError(t, err)
	assert.Contains(t, out, "unset progress.timezone")
	assert.Equal(t, dir, openedDir)
	_, ok := store.Get("progress.timezone")
	assert.False(t, ok)
}
