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
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled turns logging off.
	LevelDisabled LogLevel = "disabled"
)

// Component names used for child loggers.
const (
	ComponentEgress     = "egress-pool"
	ComponentClient     = "rbx-client"
	ComponentRoblox     = "roblox"
	ComponentPagination = "pagination"
	ComponentCooldown   = "cooldown"
	ComponentGateway    = "rbx-gateway"
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
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to zerolog.Level. Unknown names map to
// info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
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
// Debug: Detailed information for debugging
//   - Each request attempt (egress, attempt, max_attempts)
//   - Collection cache fills (cache, key, items)
//   - Best-effort lookups that degraded to a zero value
//   - Cooldown rejections
//
// Info: Normal operation events
//   - Egress pool configured
//   - Request succeeded after failover
//   - Gateway startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Egress path failed, rotating to the next one
//   - Non-2xx API responses and malformed bodies
//   - Cooldown store errors (request allowed)
//
// Error: Error conditions requiring attention
//   - Request failed on every attempted egress path
//   - Configuration errors
//
// Context Fields:
//   - endpoint: API path
//   - egress: redacted egress descriptor or "direct"
//   - attempt, max_attempts: position in the failover loop
//   - status_code / status: HTTP status code
//   - error_class: not_found, rate_limited, http_status, proxy_unavailable,
//     timeout, network, unclassified
//   - cache, key: collection cache name and key
//   - caller: cooldown caller id
