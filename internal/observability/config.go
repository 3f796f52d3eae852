// Package observability configures structured logging and in-process metrics
// for the CLI. Library packages stay quiet: they take a meter or nothing, and
// never touch global state.
package observability

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config selects logging and metrics behavior for one process.
type Config struct {
	// ServiceName is attached to every log record.
	ServiceName string
	// LogLevel is the minimum level to emit.
	LogLevel slog.Level
	// LogJSON switches log output from text to JSON.
	LogJSON bool
	// Metrics enables in-process metric collection.
	Metrics bool
}

// ParseLogLevel maps a config string ("debug", "info", "warn", "error") to a
// slog level.
func ParseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}
