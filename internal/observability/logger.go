// ABOUTME: Structured logging setup
// ABOUTME: Configures the global zerolog logger and run-scoped child loggers
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitLogger sets the global level and points the global logger at out.
// A nil out means stdout. Pretty selects the human console format.
func InitLogger(level string, pretty bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	zerolog.SetGlobalLevel(ParseLevel(level))

	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    out != os.Stdout,
		}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// NewRunID generates an id for one briefing generation run
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID returns a child of the global logger tagged with runID
func WithRunID(runID string) zerolog.Logger {
	if runID == "" {
		runID = NewRunID()
	}
	return log.Logger.With().Str("run_id", runID).Logger()
}
