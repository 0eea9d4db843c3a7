// Package logger provides process-wide logging for NutriSense on top of zap.
//
// The package-level functions keep call sites terse (logger.Debug("...", args)).
// Verbose mode (--verbose) lowers the level to debug. Servers that want
// structured fields use L() directly.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the level and encoding.
type Config struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var (
	mu      sync.RWMutex
	verbose bool
	level   = zapcore.WarnLevel
	format  = FormatConsole
	output  io.Writer = os.Stderr
	base    = build()
)

// Configure applies a level and format. Unknown values are rejected and
// leave the current settings untouched.
func Configure(cfg Config) error {
	lvl := zapcore.WarnLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		lvl = parsed
	}
	f := strings.ToLower(cfg.Format)
	switch f {
	case "":
		f = FormatConsole
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("log format %q: must be console or json", cfg.Format)
	}

	mu.Lock()
	defer mu.Unlock()
	level = lvl
	format = f
	base = build()
	return nil
}

// SetVerbose enables or disables verbose (debug) logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// UseCore routes all logging through core until the returned function is
// called. Tests pass a zaptest/observer core.
func UseCore(core zapcore.Core) (restore func()) {
	mu.Lock()
	prev := base
	base = zap.New(core)
	mu.Unlock()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		base = prev
	}
}

// L returns the current structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Named returns a child logger for a component, e.g. "mcp".
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	L().Sugar().Debugf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	L().Debug("=== " + name + " ===")
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	L().Sugar().Infof(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	L().Sugar().Warnf(format, args...)
}

// Error logs a formatted message at error level.
func Error(format string, args ...any) {
	L().Sugar().Errorf(format, args...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

// build assembles the logger from the current settings (caller holds mu,
// or is the package initialiser).
func build() *zap.Logger {
	lvl := level
	if verbose {
		lvl = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderCfg.TimeKey = ""
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), zap.NewAtomicLevelAt(lvl))
	return zap.New(core)
}
