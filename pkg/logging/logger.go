// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelTrace logs everything, including quota bookkeeping.
	LevelTrace LogLevel = "trace"

	// LevelDebug logs debug messages and above, including buffered responses.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelError,
		Pretty: false,
		Output: os.Stderr,
	}
}

// LevelFromVerbosity maps a repeated -v count onto a level:
// 0 error, 1 warn, 2 info, 3 debug, 4 and above trace.
func LevelFromVerbosity(verbosity int) LogLevel {
	switch {
	case verbosity <= 0:
		return LevelError
	case verbosity == 1:
		return LevelWarn
	case verbosity == 2:
		return LevelInfo
	case verbosity == 3:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	log.Logger = logger

	logger.Debug().Str("level", level.String()).Msg("Logger configured")

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Trace: Per-response bookkeeping
//   - Quota header updates
//
// Debug: Detailed information for debugging
//   - Buffered response snapshots (method, url, status, headers, body)
//   - Per-branch fan-out completion
//
// Info: Normal operation events
//   - Fan-out start, progress and completion
//   - Export results
//
// Warn: Warning conditions that don't prevent operation
//   - Canvas quota running low
//   - Failed requests (server errors, undecodable bodies)
//   - Failed fan-out branches
//
// Error: Error conditions requiring attention
//   - Transport failures
//   - Failed fan-out operations
//
// Context Fields:
//   - component: emitting package
//   - method, url: request line
//   - status: HTTP status code
//   - kind: error kind (request_failed, deserialize_failed, server_error)
//   - run_id: fan-out run identifier
//   - remaining: Canvas quota remaining
