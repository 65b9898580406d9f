// Package logging builds the zerolog logger shared by the server, the job
// coordinator and the model gateway.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log entry.
const ServiceName = "kwclassify"

// New creates a logger writing to out (os.Stdout when nil). Development
// builds get human-readable console output, everything else JSON.
func New(level string, dev bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	if dev {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service_name", ServiceName).
		Logger()
}

// parseLevel converts a level name to zerolog.Level, defaulting to info.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
