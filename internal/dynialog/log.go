// Package dynialog is the control plane's structured logger: a thin
// zerolog wrapper, configured once by the CLI entry point and used
// everywhere else as a package-level instance with component/cluster/node
// scoping helpers.
package dynialog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance, configured by Init.
var Logger zerolog.Logger

func init() {
	// Usable before Init runs (e.g. in tests that never call it).
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Level is a parsed log level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logger configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init configures the global logger. Safe to call more than once.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// WithComponent returns a child logger tagged with the given component.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithCluster returns a child logger tagged with a cluster name.
func WithCluster(name string) zerolog.Logger {
	return Logger.With().Str("cluster", name).Logger()
}

// WithNode returns a child logger tagged with a cluster node's two-word id.
func WithNode(twoWordID string) zerolog.Logger {
	return Logger.With().Str("node", twoWordID).Logger()
}
