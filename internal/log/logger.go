// Package log holds the process-wide leveled logger used for diagnostics.
// User-facing pipeline output (progress lines, summaries) goes through the
// cmd layer instead.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Verbosity levels selected with repeated -v flags.
const (
	LevelQuiet = iota // errors and warnings only
	LevelInfo         // -v: counts, phase transitions
	LevelDebug        // -vv: API calls, per-row writes
)

var (
	verbosity int
	logger    *slog.Logger
)

// Initialize sets up the global logger at the given verbosity.
func Initialize(level int, w io.Writer) {
	verbosity = level

	slogLevel := slog.LevelWarn
	switch {
	case level >= LevelDebug:
		slogLevel = slog.LevelDebug
	case level >= LevelInfo:
		slogLevel = slog.LevelInfo
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel}))
}

// Info logs at info level (-v).
func Info(msg string, args ...any) {
	if verbosity >= LevelInfo {
		logger.Info(msg, args...)
	}
}

// Debug logs at debug level (-vv).
func Debug(msg string, args ...any) {
	if verbosity >= LevelDebug {
		logger.Debug(msg, args...)
	}
}

// Warn logs at warn level (always visible).
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at error level (always visible).
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// IsDebug returns true if debug-level logging is enabled.
func IsDebug() bool {
	return verbosity >= LevelDebug
}

func init() {
	Initialize(LevelQuiet, os.Stderr)
}
