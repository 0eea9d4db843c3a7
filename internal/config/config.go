// Package config loads NutriSense runtime configuration.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (NUTRISENSE_STORAGE_DIR, NUTRISENSE_LOG_LEVEL, ...)
//  2. TOML config file (~/.nutrisense/config.toml)
//  3. Built-in defaults
//
// Environment variables drop the NUTRISENSE_ prefix and split on the first
// underscore: NUTRISENSE_MCP_RATE_LIMIT maps to mcp.rate_limit.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/custodia-labs/nutrisense/internal/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NUTRISENSE_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// defaults is the lowest configuration layer.
const defaults = `
[storage]
dir = ""
driver = "sqlite"
timeout = "5s"

[progress]
timezone = ""

[log]
level = "warn"
format = "console"

[mcp]
rate_limit = 20.0
burst = 40

[http]
addr = "127.0.0.1:8080"
`

// Config is the effective runtime configuration.
type Config struct {
	Storage  StorageConfig  `koanf:"storage"`
	Progress ProgressConfig `koanf:"progress"`
	Log      logger.Config  `koanf:"log"`
	MCP      MCPConfig      `koanf:"mcp"`
	HTTP     HTTPConfig     `koanf:"http"`
}

// StorageConfig selects and bounds the store.
type StorageConfig struct {
	// Dir holds the database. Empty means ~/.nutrisense/data.
	Dir     string        `koanf:"dir"`
	Driver  string        `koanf:"driver"`
	Timeout time.Duration `koanf:"timeout"`
}

// ProgressConfig holds progress defaults.
type ProgressConfig struct {
	// Timezone is the fallback zone when neither the request nor the
	// profile names one.
	Timezone string `koanf:"timezone"`
}

// MCPConfig throttles tool calls.
type MCPConfig struct {
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`
}

// HTTPConfig configures the REST listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// Keys lists every supported key in dot notation.
var Keys = []string{
	"http.addr",
	"log.format",
	"log.level",
	"mcp.burst",
	"mcp.rate_limit",
	"progress.timezone",
	"storage.dir",
	"storage.driver",
	"storage.timeout",
}

// IsKey reports whether key is a supported configuration key.
func IsKey(key string) bool {
	i := sort.SearchStrings(Keys, key)
	return i < len(Keys) && Keys[i] == key
}

// DefaultPath returns ~/.nutrisense/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".nutrisense", "config.toml"), nil
}

// Load reads defaults, then the TOML file at path (if it exists), then the
// environment, and validates the result. An empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	k, err := load(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Effective returns the merged key/value view of all layers, flattened to
// dot-notation keys.
func Effective(path string) (map[string]any, error) {
	k, err := load(path)
	if err != nil {
		return nil, err
	}
	return k.All(), nil
}

func load(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	parser := TOML()

	if err := k.Load(rawbytes.Provider([]byte(defaults)), parser); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), parser); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}
	return k, nil
}

// envKey maps NUTRISENSE_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// readConfigFile returns nil content when the file does not exist.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0022 != 0 {
		return nil, fmt.Errorf("insecure config file permissions: %v (must not be group or world writable)", info.Mode().Perm())
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return content, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q (want sqlite or memory)", c.Storage.Driver)
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("storage.timeout: must be positive")
	}
	if c.Progress.Timezone != "" {
		if _, err := time.LoadLocation(c.Progress.Timezone); err != nil {
			return fmt.Errorf("progress.timezone: unknown timezone %q", c.Progress.Timezone)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.MCP.RateLimit <= 0 {
		return fmt.Errorf("mcp.rate_limit: must be positive")
	}
	if c.MCP.Burst < 1 {
		return fmt.Errorf("mcp.burst: must be at least 1")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr: must not be empty")
	}
	return nil
}

// Location returns the fallback progress timezone, or nil when unset.
func (c *Config) Location() *time.Location {
	if c.Progress.Timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(c.Progress.Timezone)
	if err != nil {
		return nil
	}
	return loc
}

// DataDir resolves Storage.Dir, defaulting to ~/.nutrisense/data.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".nutrisense", "data"), nil
}
