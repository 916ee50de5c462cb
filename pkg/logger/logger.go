// Package logger builds the zerolog loggers shared by the settlement
// process, its workers and the migration tool.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "settlement-core"

// New returns the process logger. pretty switches to console output for
// local runs; otherwise every event is one JSON line on stdout.
func New(level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return base(out, level).With().
		Caller().
		Str("service", serviceName).
		Logger()
}

// NewWithWriter is New without caller or service fields, for tests that
// decode the output.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return base(w, level)
}

// Component derives a child logger tagged with the owning subsystem
// (settlement, scheduler, aml, feed, ...).
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func base(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// parseLevel accepts any zerolog level name in any case. Empty or unknown
// names mean info.
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
