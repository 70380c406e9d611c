package obs

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger. LOG_FORMAT=console switches to the
// human-readable writer for local runs; LOG_LEVEL follows zerolog names.
func NewLogger(serviceName string) zerolog.Logger {
	var writer io.Writer = os.Stderr
	if getenv("LOG_FORMAT", "json") == "console" {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
